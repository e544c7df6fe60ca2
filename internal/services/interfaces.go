package services

import (
	"context"
	"time"

	"github.com/fsdevblog/lnkz/internal/models"
)

// LinkRepository шлюз к хранилищу коротких ссылок.
type LinkRepository interface {
	// Create сохраняет ссылку целиком или не сохраняет ничего. Занятый slug -> repositories.ErrDuplicateKey.
	Create(ctx context.Context, link *models.Link) error
	// GetBySlug находит ссылку по короткому коду. Нет записи -> repositories.ErrNotFound.
	GetBySlug(ctx context.Context, slug string) (*models.Link, error)
	// IncrementClicks атомарно увеличивает счетчик переходов на стороне хранилища.
	IncrementClicks(ctx context.Context, slug string) error
	// CountByIP количество ссылок, созданных с адреса.
	CountByIP(ctx context.Context, ip string) (int64, error)
	// CreateVisit сохраняет запись о переходе.
	CreateVisit(ctx context.Context, visit *models.Visit) error
	Ping(ctx context.Context) error
}

// RateLimiter ограничитель частоты запросов клиента.
type RateLimiter interface {
	Allow(ctx context.Context, clientID string) (bool, error)
	Window() time.Duration
}

// CodeGenerator выдает кандидатов в короткие коды.
type CodeGenerator interface {
	Generate(requested *string) (string, error)
}
