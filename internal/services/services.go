package services

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/fsdevblog/lnkz/internal/db"
	"github.com/fsdevblog/lnkz/internal/repositories/memstore"
	"github.com/fsdevblog/lnkz/internal/repositories/pgsql"
	"github.com/fsdevblog/lnkz/internal/repositories/sql"
	"github.com/fsdevblog/lnkz/internal/shortcode"
)

// Services сервисный слой приложения.
type Services struct {
	LinkService   *LinkService
	PingService   *PingService
	ClickRecorder *ClickRecorder
}

// FactoryParams зависимости сервисного слоя.
type FactoryParams struct {
	Conn         any // *gorm.DB, *pgxpool.Pool или *db.MemoryStorage
	Limiter      RateLimiter
	Logger       *logrus.Logger
	LinkOptions  []func(*LinkServiceOptions)
	ClickOptions []func(*ClickRecorderOptions)
}

// Factory выбирает реализацию репозитория по типу подключения и собирает сервисы.
func Factory(params FactoryParams) (*Services, error) {
	repo, err := newLinkRepository(params.Conn, params.Logger)
	if err != nil {
		return nil, err
	}

	var linkOpts LinkServiceOptions
	for _, opt := range params.LinkOptions {
		opt(&linkOpts)
	}

	recorder := NewClickRecorder(repo, params.Logger, params.ClickOptions...)
	return &Services{
		LinkService: NewLinkService(
			repo,
			params.Limiter,
			shortcode.NewGenerator(),
			recorder,
			params.Logger,
			params.LinkOptions...,
		),
		PingService:   NewPingService(repo, linkOpts.StoreTimeout),
		ClickRecorder: recorder,
	}, nil
}

func newLinkRepository(conn any, logger *logrus.Logger) (LinkRepository, error) {
	switch c := conn.(type) {
	case *gorm.DB:
		return sql.NewLinkRepo(c, logger), nil
	case *pgxpool.Pool:
		return pgsql.NewLinkRepo(c, logger), nil
	case *db.MemoryStorage:
		return memstore.NewLinkRepo(c), nil
	default:
		return nil, fmt.Errorf("unknown connection type %T", conn)
	}
}
