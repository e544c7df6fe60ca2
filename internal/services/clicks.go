package services

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/lnkz/internal/models"
	"github.com/fsdevblog/lnkz/internal/repositories"
)

// ClickStore часть хранилища, нужная для учета переходов.
type ClickStore interface {
	IncrementClicks(ctx context.Context, slug string) error
	CreateVisit(ctx context.Context, visit *models.Visit) error
}

// Значения по умолчанию для ClickRecorderOptions.
const (
	DefaultClickQueueSize = 1024
	DefaultClickWorkers   = 2
	DefaultClickAttempts  = 3
	DefaultClickBackoff   = 100 * time.Millisecond
)

// ClickRecorderOptions настройки фонового учета переходов.
type ClickRecorderOptions struct {
	QueueSize    int           // Размер очереди переходов
	Workers      int           // Количество обработчиков очереди
	Attempts     int           // Попыток увеличить счетчик
	Backoff      time.Duration // Пауза перед повтором, растет линейно с номером попытки
	StoreTimeout time.Duration // Ограничение времени одного обращения к хранилищу
}

// ClickRecorder учитывает переходы в фоне: увеличивает счетчик ссылки и сохраняет Visit.
// Переход ставится в очередь без ожидания, поэтому редирект не зависит от хранилища.
// Ошибки только логируются. При закрытии очередь обрабатывается до конца.
type ClickRecorder struct {
	store  ClickStore
	opts   ClickRecorderOptions
	logger *logrus.Entry

	queue  chan models.Visit
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	once   sync.Once
}

// NewClickRecorder создает обработчик переходов. Обработка начинается после Start.
func NewClickRecorder(store ClickStore, logger *logrus.Logger, opts ...func(*ClickRecorderOptions)) *ClickRecorder {
	options := ClickRecorderOptions{
		QueueSize:    DefaultClickQueueSize,
		Workers:      DefaultClickWorkers,
		Attempts:     DefaultClickAttempts,
		Backoff:      DefaultClickBackoff,
		StoreTimeout: DefaultStoreTimeout,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.QueueSize <= 0 {
		options.QueueSize = DefaultClickQueueSize
	}
	if options.Workers <= 0 {
		options.Workers = DefaultClickWorkers
	}
	if options.Attempts <= 0 {
		options.Attempts = DefaultClickAttempts
	}
	if options.StoreTimeout <= 0 {
		options.StoreTimeout = DefaultStoreTimeout
	}

	return &ClickRecorder{
		store:  store,
		opts:   options,
		logger: logger.WithField("module", "services/clicks"),
		queue:  make(chan models.Visit, options.QueueSize),
	}
}

// Start запускает обработчики очереди.
func (r *ClickRecorder) Start() {
	r.once.Do(func() {
		r.wg.Add(r.opts.Workers)
		for range r.opts.Workers {
			go r.worker()
		}
	})
}

// Record ставит переход в очередь. Возвращает false, если очередь переполнена или закрыта.
func (r *ClickRecorder) Record(visit models.Visit) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.logger.WithFields(logrus.Fields{"slug": visit.Slug, "kind": kindStoreError}).
			Warn("click recorder closed, click dropped")
		return false
	}
	select {
	case r.queue <- visit:
		return true
	default:
		r.logger.WithFields(logrus.Fields{"slug": visit.Slug, "kind": kindStoreError}).
			Warn("click queue is full, click dropped")
		return false
	}
}

// Close прекращает прием переходов и ждет обработки очереди либо отмены ctx.
func (r *ClickRecorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	// Если обработчики не запускались, разбираем очередь сами.
	r.once.Do(func() {
		r.wg.Add(1)
		go r.worker()
	})

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "wait click queue drain")
	}
}

func (r *ClickRecorder) worker() {
	defer r.wg.Done()
	for visit := range r.queue {
		r.process(visit)
	}
}

func (r *ClickRecorder) process(visit models.Visit) {
	log := r.logger.WithField("slug", visit.Slug)

	if err := r.increment(visit.Slug); err != nil {
		log.WithError(err).WithField("kind", kindStoreError).Error("click increment lost")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.opts.StoreTimeout)
	defer cancel()
	if err := r.store.CreateVisit(ctx, &visit); err != nil {
		log.WithError(err).WithField("kind", kindStoreError).Warn("visit not recorded")
	}
}

// increment увеличивает счетчик с повторами. Отсутствующая ссылка не повторяется.
func (r *ClickRecorder) increment(slug string) error {
	var err error
	for attempt := 1; attempt <= r.opts.Attempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), r.opts.StoreTimeout)
		err = r.store.IncrementClicks(ctx, slug)
		cancel()

		if err == nil {
			return nil
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return err //nolint:wrapcheck
		}
		if attempt < r.opts.Attempts {
			r.logger.WithError(err).WithFields(logrus.Fields{"slug": slug, "attempt": attempt}).
				Debug("click increment failed, retrying")
			time.Sleep(r.opts.Backoff * time.Duration(attempt))
		}
	}
	return errors.Wrapf(err, "increment clicks after %d attempts", r.opts.Attempts)
}
