package config

import (
	"flag"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type DBType string

const (
	DBTypePostgres DBType = "postgres"
	DBTypeSQLite   DBType = "sqlite"
	DBTypeInMemory DBType = "inMemory"
)

// Значения по умолчанию.
const (
	DefaultServerAddress   = "localhost:8080"
	DefaultBaseURL         = "https://lnkz.my"
	DefaultRateLimitWindow = time.Minute
	DefaultRateLimitMax    = 5
	DefaultMaxURLsPerIP    = 100
	DefaultGenerateRetries = 5
	DefaultStoreTimeout    = 3 * time.Second
	DefaultClickQueueSize  = 1024
	DefaultLogLevel        = "info"
)

type Config struct {
	// Адрес, на котором запустится сервер
	ServerAddress string `env:"SERVER_ADDRESS"`
	// Базовый адрес коротких ссылок, его домен запрещен к сокращению
	BaseURL string `env:"BASE_URL"`
	// Тип хранилища. Если не задан, выбирается по DatabaseDSN и SQLiteDBPath
	DBType DBType `env:"DB"`
	// Строка подключения к postgres
	DatabaseDSN string `env:"DATABASE_DSN"`
	// Путь к файлу sqlite или адрес libsql://
	SQLiteDBPath string `env:"SQLITE_DB_PATH"`
	// Токен авторизации Turso для libsql
	TursoToken string `env:"TURSO_TOKEN"`

	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW"`
	RateLimitMax    int           `env:"RATE_LIMIT_MAX"`
	// Адрес redis. Если задан, лимит запросов считается в redis и общий для всех реплик
	RateLimitRedisAddr string `env:"RATE_LIMIT_REDIS_ADDR"`

	MaxURLsPerIP    int64         `env:"MAX_URLS_PER_IP"`
	GenerateRetries int           `env:"GENERATE_RETRIES"`
	StoreTimeout    time.Duration `env:"STORE_TIMEOUT"`
	ClickQueueSize  int           `env:"CLICK_QUEUE_SIZE"`

	VisitorJWTSecret string `env:"VISITOR_JWT_SECRET"`
	LogLevel         string `env:"LOG_LEVEL"`
}

// LoadConfig читает .env (если есть), переменные окружения и флаги командной строки.
// Переменные окружения имеют приоритет над флагами.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // .env нужен только для локального запуска

	return Load(os.Args[1:], env.ToMap(os.Environ()))
}

// MustLoadConfig вызывает панику если конфигурацию загрузить не удалось.
func MustLoadConfig() *Config {
	conf, err := LoadConfig()
	if err != nil {
		panic(err)
	}
	return conf
}

// Load собирает конфигурацию из аргументов и окружения.
func Load(args []string, environ map[string]string) (*Config, error) {
	var flagsConfig, envConfig Config

	if err := env.ParseWithOptions(&envConfig, env.Options{Environment: environ}); err != nil {
		return nil, errors.Wrapf(err, "parse ENV config error")
	}

	if err := loadFlags(&flagsConfig, args); err != nil {
		return nil, errors.Wrap(err, "parse flags error")
	}

	conf := mergeConfig(&envConfig, &flagsConfig)
	if conf.DBType == "" {
		conf.DBType = detectDBType(conf)
	}

	if err := conf.validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// ParsedBaseURL базовый адрес коротких ссылок без пути и параметров.
func (c *Config) ParsedBaseURL() (*url.URL, error) {
	parsedURL, err := url.ParseRequestURI(c.BaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse base url")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, errors.Errorf("base url `%s` must have http or https scheme", c.BaseURL)
	}
	if parsedURL.Host == "" {
		return nil, errors.Errorf("base url `%s` must have a host", c.BaseURL)
	}

	// создаем новый инстанс, отсекая тем самым Path и Query если они заданы в базовом урле.
	return &url.URL{
		Scheme: parsedURL.Scheme,
		Host:   parsedURL.Host,
	}, nil
}

// loadFlags парсит флаги командной строки.
func loadFlags(flagsConfig *Config, args []string) error {
	fs := flag.NewFlagSet("lnkz", flag.ContinueOnError)

	fs.StringVar(&flagsConfig.ServerAddress, "a", DefaultServerAddress, "Адрес сервера")
	fs.StringVar(&flagsConfig.BaseURL, "b", DefaultBaseURL, "Базовый адрес результирующего сокращенного URL")
	fs.StringVar(&flagsConfig.DatabaseDSN, "d", "", "Строка подключения к postgres")
	fs.StringVar(&flagsConfig.SQLiteDBPath, "s", "", "Путь к базе sqlite или адрес libsql://")
	fs.DurationVar(&flagsConfig.RateLimitWindow, "rate-window", DefaultRateLimitWindow, "Окно лимита запросов")
	fs.IntVar(&flagsConfig.RateLimitMax, "rate-max", DefaultRateLimitMax, "Запросов на сокращение в окне")
	fs.StringVar(&flagsConfig.RateLimitRedisAddr, "redis", "", "Адрес redis для общего лимита запросов")
	fs.Int64Var(&flagsConfig.MaxURLsPerIP, "quota", DefaultMaxURLsPerIP, "Ссылок на один адрес, 0 отключает квоту")
	fs.IntVar(&flagsConfig.GenerateRetries, "retries", DefaultGenerateRetries, "Попыток выдать код при коллизиях")
	fs.DurationVar(&flagsConfig.StoreTimeout, "store-timeout", DefaultStoreTimeout, "Таймаут обращения к хранилищу")
	fs.IntVar(&flagsConfig.ClickQueueSize, "click-queue", DefaultClickQueueSize, "Размер очереди учета переходов")
	fs.StringVar(&flagsConfig.LogLevel, "l", DefaultLogLevel, "Уровень логирования")

	return fs.Parse(args) //nolint:wrapcheck
}

// mergeConfig сливает структуры для env и флагов.
func mergeConfig(envConfig, flagsConfig *Config) *Config {
	return &Config{
		ServerAddress:      defaultIfBlank(envConfig.ServerAddress, flagsConfig.ServerAddress),
		BaseURL:            defaultIfBlank(envConfig.BaseURL, flagsConfig.BaseURL),
		DBType:             defaultIfBlank(envConfig.DBType, flagsConfig.DBType),
		DatabaseDSN:        defaultIfBlank(envConfig.DatabaseDSN, flagsConfig.DatabaseDSN),
		SQLiteDBPath:       defaultIfBlank(envConfig.SQLiteDBPath, flagsConfig.SQLiteDBPath),
		TursoToken:         envConfig.TursoToken, // токены через флаги не передаем
		RateLimitWindow:    defaultIfBlank(envConfig.RateLimitWindow, flagsConfig.RateLimitWindow),
		RateLimitMax:       defaultIfBlank(envConfig.RateLimitMax, flagsConfig.RateLimitMax),
		RateLimitRedisAddr: defaultIfBlank(envConfig.RateLimitRedisAddr, flagsConfig.RateLimitRedisAddr),
		MaxURLsPerIP:       defaultIfBlank(envConfig.MaxURLsPerIP, flagsConfig.MaxURLsPerIP),
		GenerateRetries:    defaultIfBlank(envConfig.GenerateRetries, flagsConfig.GenerateRetries),
		StoreTimeout:       defaultIfBlank(envConfig.StoreTimeout, flagsConfig.StoreTimeout),
		ClickQueueSize:     defaultIfBlank(envConfig.ClickQueueSize, flagsConfig.ClickQueueSize),
		VisitorJWTSecret:   envConfig.VisitorJWTSecret,
		LogLevel:           defaultIfBlank(envConfig.LogLevel, flagsConfig.LogLevel),
	}
}

func defaultIfBlank[T comparable](value T, defaultValue T) T {
	var zero T
	if value == zero {
		return defaultValue
	}
	return value
}

// detectDBType выбирает хранилище по заданным параметрам подключения.
func detectDBType(c *Config) DBType {
	switch {
	case c.DatabaseDSN != "":
		return DBTypePostgres
	case c.SQLiteDBPath != "":
		return DBTypeSQLite
	default:
		return DBTypeInMemory
	}
}

func (c *Config) validate() error {
	if _, err := c.ParsedBaseURL(); err != nil {
		return err
	}
	switch c.DBType {
	case DBTypePostgres, DBTypeSQLite, DBTypeInMemory:
	default:
		return errors.Errorf("unknown storage type `%s`", c.DBType)
	}
	if c.RateLimitWindow <= 0 {
		return errors.New("rate limit window must be positive")
	}
	if c.RateLimitMax <= 0 {
		return errors.New("rate limit max must be positive")
	}
	if c.MaxURLsPerIP < 0 {
		return errors.New("max urls per ip must not be negative")
	}
	return nil
}
