// Package ratelimit ограничивает количество запросов от одного клиента в фиксированном окне времени.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Значения по умолчанию.
const (
	DefaultWindow      = 60 * time.Second
	DefaultMaxRequests = 5
	sweepFactor        = 5 // Очистка устаревших записей раз в sweepFactor окон
)

// record состояние окна одного клиента.
type record struct {
	windowStart time.Time
	count       int
}

// FixedWindow in-memory ограничитель с фиксированным окном. Все операции над картой записей
// выполняются под одним мьютексом, включая фоновую очистку.
type FixedWindow struct {
	mu      sync.Mutex
	records map[string]*record

	window time.Duration
	limit  int
	clock  Clock
	logger *logrus.Entry
}

// Option настройка FixedWindow.
type Option func(*FixedWindow)

// WithClock подменяет источник времени.
func WithClock(c Clock) Option {
	return func(l *FixedWindow) {
		l.clock = c
	}
}

// NewFixedWindow создает ограничитель: не более limit запросов за window от одного клиента.
// Непозитивные значения заменяются значениями по умолчанию.
func NewFixedWindow(window time.Duration, limit int, logger *logrus.Logger, opts ...Option) *FixedWindow {
	if window <= 0 {
		window = DefaultWindow
	}
	if limit <= 0 {
		limit = DefaultMaxRequests
	}
	l := &FixedWindow{
		records: make(map[string]*record),
		window:  window,
		limit:   limit,
		clock:   realClock{},
		logger:  logger.WithField("module", "ratelimit/fixed_window"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CheckAndRecord учитывает запрос клиента и сообщает, разрешен ли он.
// Отклоненный запрос счетчик не увеличивает.
func (l *FixedWindow) CheckAndRecord(clientID string) bool {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[clientID]
	if !ok || now.Sub(rec.windowStart) > l.window {
		l.records[clientID] = &record{windowStart: now, count: 1}
		return true
	}
	if rec.count >= l.limit {
		return false
	}
	rec.count++
	return true
}

// Allow реализует общий интерфейс ограничителя. In-memory реализация не возвращает ошибок.
func (l *FixedWindow) Allow(_ context.Context, clientID string) (bool, error) {
	return l.CheckAndRecord(clientID), nil
}

// Window длина окна.
func (l *FixedWindow) Window() time.Duration {
	return l.window
}

// Len количество отслеживаемых клиентов.
func (l *FixedWindow) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.records)
}

// Sweep удаляет записи с истекшим окном и возвращает их количество.
func (l *FixedWindow) Sweep() int {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	var removed int
	for id, rec := range l.records {
		if now.Sub(rec.windowStart) > l.window {
			delete(l.records, id)
			removed++
		}
	}
	return removed
}

// Run периодически очищает устаревшие записи до отмены контекста.
func (l *FixedWindow) Run(ctx context.Context) {
	ticker := time.NewTicker(sweepFactor * l.window)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := l.Sweep(); removed > 0 {
				l.logger.WithField("removed", removed).Debug("expired rate limit records swept")
			}
		}
	}
}
