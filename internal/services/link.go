package services

import (
	"context"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/lnkz/internal/models"
	"github.com/fsdevblog/lnkz/internal/repositories"
	"github.com/fsdevblog/lnkz/internal/shortcode"
)

// Значения по умолчанию для LinkServiceOptions.
const (
	DefaultMaxURLsPerIP    = 100
	DefaultGenerateRetries = 5
	DefaultStoreTimeout    = 3 * time.Second
)

// LinkServiceOptions настройки сервиса ссылок.
type LinkServiceOptions struct {
	BaseURL         *url.URL      // Базовый адрес коротких ссылок, его хост запрещен к сокращению
	MaxURLsPerIP    int64         // Квота ссылок на один адрес, 0 отключает проверку
	GenerateRetries int           // Количество попыток вставки при коллизиях кода
	StoreTimeout    time.Duration // Ограничение времени одного обращения к хранилищу
	// QuotaBeforeRateLimit меняет порядок проверок: сначала квота, затем лимит запросов.
	QuotaBeforeRateLimit bool
}

// ShortenRequest запрос на сокращение ссылки.
type ShortenRequest struct {
	RawURL      string
	ShortCode   *string // Код, запрошенный клиентом
	ClientIP    string
	VisitorUUID *string
}

// ShortenResult результат сокращения.
type ShortenResult struct {
	Link     *models.Link
	ShortURL string
}

// ResolveRequest запрос на переход по короткой ссылке.
type ResolveRequest struct {
	Slug      string
	ClientIP  string
	UserAgent string
	Language  string
	Referrer  string
}

// ClickSink принимает переходы для фоновой обработки.
type ClickSink interface {
	Record(visit models.Visit) bool
}

// LinkService выдает короткие коды и разрешает их обратно в ссылки.
type LinkService struct {
	repo    LinkRepository
	limiter RateLimiter
	gen     CodeGenerator
	clicks  ClickSink
	opts    LinkServiceOptions
	logger  *logrus.Entry
	now     func() time.Time
}

// NewLinkService создает сервис ссылок.
//
// Параметры:
//   - repo: шлюз к хранилищу
//   - limiter: ограничитель частоты запросов
//   - gen: генератор коротких кодов
//   - clicks: приемник переходов
//   - logger: логгер
//   - opts: функции настройки
func NewLinkService(
	repo LinkRepository,
	limiter RateLimiter,
	gen CodeGenerator,
	clicks ClickSink,
	logger *logrus.Logger,
	opts ...func(*LinkServiceOptions),
) *LinkService {
	options := LinkServiceOptions{
		BaseURL:         &url.URL{Scheme: "https", Host: "lnkz.my"},
		MaxURLsPerIP:    DefaultMaxURLsPerIP,
		GenerateRetries: DefaultGenerateRetries,
		StoreTimeout:    DefaultStoreTimeout,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.GenerateRetries <= 0 {
		options.GenerateRetries = DefaultGenerateRetries
	}
	if options.StoreTimeout <= 0 {
		options.StoreTimeout = DefaultStoreTimeout
	}

	return &LinkService{
		repo:    repo,
		limiter: limiter,
		gen:     gen,
		clicks:  clicks,
		opts:    options,
		logger:  logger.WithField("module", "services/link"),
		now:     time.Now,
	}
}

// Shorten проверяет ссылку и клиента, выдает код и сохраняет ссылку.
// Ответ возвращается только после того, как запись сохранена в хранилище.
func (s *LinkService) Shorten(ctx context.Context, req ShortenRequest) (*ShortenResult, error) {
	log := s.logger.WithField("client_ip", req.ClientIP)

	longURL, err := ValidateURL(req.RawURL, s.opts.BaseURL.Hostname())
	if err != nil {
		log.WithError(err).WithField("kind", kindInvalidInput).Info("shorten rejected")
		return nil, err
	}

	gates := []func(context.Context, string) error{s.checkRateLimit, s.checkQuota}
	if s.opts.QuotaBeforeRateLimit {
		gates[0], gates[1] = gates[1], gates[0]
	}
	for _, gate := range gates {
		if gateErr := gate(ctx, req.ClientIP); gateErr != nil {
			return nil, gateErr
		}
	}

	link, err := s.assignCode(ctx, longURL, req)
	if err != nil {
		return nil, err
	}

	log.WithField("slug", link.Slug).Info("short link created")
	return &ShortenResult{
		Link:     link,
		ShortURL: s.ShortURL(link.Slug),
	}, nil
}

// ShortURL собирает короткую ссылку из базового адреса и кода.
func (s *LinkService) ShortURL(slug string) string {
	return s.opts.BaseURL.JoinPath(slug).String()
}

// RetryAfter рекомендуемая пауза после отказа по лимиту запросов.
func (s *LinkService) RetryAfter() time.Duration {
	return s.limiter.Window()
}

func (s *LinkService) checkRateLimit(ctx context.Context, clientIP string) error {
	allowed, err := s.limiter.Allow(ctx, clientIP)
	if err != nil {
		// Недоступный ограничитель не должен останавливать сервис.
		s.logger.WithError(err).WithField("client_ip", clientIP).Warn("rate limiter failed, request allowed")
		return nil
	}
	if !allowed {
		s.logger.WithFields(logrus.Fields{"client_ip": clientIP, "kind": kindRateLimited}).Info("shorten rejected")
		return &RateLimitedError{RetryAfter: s.limiter.Window()}
	}
	return nil
}

func (s *LinkService) checkQuota(ctx context.Context, clientIP string) error {
	if s.opts.MaxURLsPerIP <= 0 {
		return nil
	}
	log := s.logger.WithField("client_ip", clientIP)

	countCtx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	n, err := s.repo.CountByIP(countCtx, clientIP)
	if err != nil {
		log.WithError(err).WithField("kind", kindStoreError).Error("count links by ip failed")
		return errors.Wrap(ErrStore, err.Error())
	}
	if n >= s.opts.MaxURLsPerIP {
		log.WithFields(logrus.Fields{"kind": kindQuotaExceeded, "count": n}).Info("shorten rejected")
		return ErrQuotaExceeded
	}
	return nil
}

// assignCode выдает код и вставляет ссылку. Случайный код при коллизии или ошибке хранилища
// генерируется заново, пока не исчерпаны попытки. Запрошенный клиентом код вставляется один раз.
func (s *LinkService) assignCode(ctx context.Context, rawURL string, req ShortenRequest) (*models.Link, error) {
	log := s.logger.WithField("client_ip", req.ClientIP)

	var lastErr error
	for attempt := 1; attempt <= s.opts.GenerateRetries; attempt++ {
		code, genErr := s.gen.Generate(req.ShortCode)
		if genErr != nil {
			if errors.Is(genErr, shortcode.ErrInvalidCode) {
				log.WithError(genErr).WithField("kind", kindInvalidInput).Info("shorten rejected")
				return nil, newValidationError(genErr.Error())
			}
			log.WithError(genErr).Error("short code generation failed")
			return nil, errors.Wrap(genErr, "generate short code")
		}

		link := &models.Link{
			Slug:        code,
			URL:         rawURL,
			CreatedAt:   s.now().UTC(),
			IPAddress:   req.ClientIP,
			VisitorUUID: req.VisitorUUID,
		}
		lastErr = s.create(ctx, link)
		if lastErr == nil {
			return link, nil
		}

		entry := log.WithFields(logrus.Fields{"slug": code, "attempt": attempt})
		if repositories.IsDuplicateKey(lastErr) {
			if req.ShortCode != nil {
				entry.WithField("kind", kindSlugTaken).Info("shorten rejected")
				return nil, ErrSlugTaken
			}
			entry.Debug("short code collision, regenerating")
			continue
		}

		entry.WithError(lastErr).WithField("kind", kindStoreError).Warn("insert link failed")
		if req.ShortCode != nil {
			// Повтор запрошенного кода после таймаута мог бы вернуть ложный SlugTaken.
			return nil, errors.Wrap(ErrStore, lastErr.Error())
		}
	}

	if repositories.IsDuplicateKey(lastErr) {
		log.WithField("kind", kindCodeSpaceExhausted).Error("no free short code found")
		return nil, ErrCodeSpaceExhausted
	}
	log.WithError(lastErr).WithField("kind", kindStoreError).Error("insert link failed after retries")
	return nil, errors.Wrap(ErrStore, lastErr.Error())
}

// create вставляет ссылку. Запись не прерывается отключением клиента, только таймаутом.
func (s *LinkService) create(ctx context.Context, link *models.Link) error {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.StoreTimeout)
	defer cancel()

	return s.repo.Create(writeCtx, link) //nolint:wrapcheck
}

// Resolve находит ссылку по коду и передает переход на фоновый учет.
// Ошибки учета перехода на ответ не влияют.
func (s *LinkService) Resolve(ctx context.Context, req ResolveRequest) (*models.Link, error) {
	log := s.logger.WithFields(logrus.Fields{"slug": req.Slug, "client_ip": req.ClientIP})

	if !shortcode.IsValidSlug(req.Slug, models.SlugMaxLength) {
		log.WithField("kind", kindNotFound).Debug("malformed slug")
		return nil, ErrNotFound
	}

	readCtx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	link, err := s.repo.GetBySlug(readCtx, req.Slug)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			log.WithField("kind", kindNotFound).Debug("slug not found")
			return nil, ErrNotFound
		}
		log.WithError(err).WithField("kind", kindStoreError).Error("get link by slug failed")
		return nil, errors.Wrap(ErrStore, err.Error())
	}

	s.clicks.Record(models.Visit{
		Slug:      link.Slug,
		UserAgent: req.UserAgent,
		IPAddress: req.ClientIP,
		Language:  req.Language,
		Referrer:  req.Referrer,
		CreatedAt: s.now().UTC(),
	})
	return link, nil
}
