package logs

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// FormatType определяет формат вывода логов.
type FormatType string

// LevelType определяет уровень логирования.
type LevelType string

// FormatTypeText Форматирование для консоли.
// FormatTypeJSON Форматирование в JSON.
const (
	FormatTypeText FormatType = "text"
	FormatTypeJSON FormatType = "json"
)

// LevelTypeDebug Отладочный уровень.
// LevelTypeInfo Информационный уровень.
// LevelTypeWarning Уровень предупреждений.
// LevelTypeError Уровень ошибок.
// LevelTypeFatal Фатальный уровень.
// LevelTypePanic Уровень паники.
const (
	LevelTypeDebug   LevelType = "debug"
	LevelTypeInfo    LevelType = "info"
	LevelTypeWarning LevelType = "warning"
	LevelTypeError   LevelType = "error"
	LevelTypeFatal   LevelType = "fatal"
	LevelTypePanic   LevelType = "panic"
)

// LoggerOptions настройки логгера.
type LoggerOptions struct {
	Level         LevelType     // Уровень логирования
	Format        FormatType    // Формат вывода
	Output        io.Writer     // Куда писать логи
	InitialFields logrus.Fields // Начальные поля для каждой записи
}

// New создает новый логгер с указанными настройками.
// В release режиме gin (GIN_MODE=release) по умолчанию JSON и уровень info, иначе текст и debug.
//
// Параметры:
//   - opts: функции для настройки логгера
//
// Возвращает:
//   - *logrus.Logger: настроенный логгер
//   - error: ошибка создания логгера
func New(opts ...func(*LoggerOptions)) (*logrus.Logger, error) {
	isProduction := os.Getenv("GIN_MODE") == "release"

	var format = FormatTypeText
	var level = LevelTypeDebug
	if isProduction {
		format = FormatTypeJSON
		level = LevelTypeInfo
	}

	options := LoggerOptions{
		Level:  level,
		Format: format,
		Output: os.Stdout,
	}

	for _, opt := range opts {
		opt(&options)
	}

	lvl, errLvl := logrus.ParseLevel(string(options.Level))
	if errLvl != nil {
		return nil, fmt.Errorf("parse level: %s", errLvl.Error())
	}

	logger := logrus.New()
	logger.SetLevel(lvl)
	logger.SetOutput(options.Output)

	switch options.Format {
	case FormatTypeJSON:
		logger.SetFormatter(new(logrus.JSONFormatter))
	case FormatTypeText:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unknown log format `%s`", options.Format)
	}

	if len(options.InitialFields) > 0 {
		logger.AddHook(&fieldsHook{fields: options.InitialFields})
	}
	return logger, nil
}

// MustNew создает новый логгер с указанными настройками.
// В случае ошибки вызывает panic.
//
// Параметры:
//   - opts: функции для настройки логгера
//
// Возвращает:
//   - *logrus.Logger: настроенный логгер
func MustNew(opts ...func(*LoggerOptions)) *logrus.Logger {
	log, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return log
}

// fieldsHook добавляет постоянные поля в каждую запись, не перетирая поля записи.
type fieldsHook struct {
	fields logrus.Fields
}

func (h *fieldsHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *fieldsHook) Fire(entry *logrus.Entry) error {
	for k, v := range h.fields {
		if _, ok := entry.Data[k]; !ok {
			entry.Data[k] = v
		}
	}
	return nil
}
