package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/lnkz/internal/models"
	"github.com/fsdevblog/lnkz/internal/repositories"
)

// LinkRepo репозиторий коротких ссылок в PostgreSQL.
type LinkRepo struct {
	pool   *pgxpool.Pool
	logger *logrus.Entry
}

// NewLinkRepo создает новый экземпляр репозитория.
//
// Параметры:
//   - pool: пул подключений к PostgreSQL
//   - logger: логгер
//
// Возвращает:
//   - *LinkRepo: инициализированный репозиторий
func NewLinkRepo(pool *pgxpool.Pool, logger *logrus.Logger) *LinkRepo {
	return &LinkRepo{
		pool:   pool,
		logger: logger.WithField("module", "repository/pgsql/link"),
	}
}

// Create вставляет ссылку одним запросом. Уникальный индекс по slug гарантирует,
// что из конкурирующих вставок успешной будет только одна.
func (r *LinkRepo) Create(ctx context.Context, link *models.Link) error {
	const query = `
		INSERT INTO links (slug, url, created_at, clicks, ip_address, visitor_uuid)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		link.Slug, link.URL, link.CreatedAt, link.Clicks, link.IPAddress, link.VisitorUUID,
	).Scan(&link.ID)
	if err != nil {
		return fmt.Errorf("create link `%s`: %w", link.Slug, convertErrorType(err))
	}
	return nil
}

// GetBySlug находит ссылку по короткому коду.
func (r *LinkRepo) GetBySlug(ctx context.Context, slug string) (*models.Link, error) {
	const query = `
		SELECT id, slug, url, created_at, clicks, ip_address, visitor_uuid
		FROM links
		WHERE slug = $1`

	var link models.Link
	err := r.pool.QueryRow(ctx, query, slug).Scan(
		&link.ID, &link.Slug, &link.URL, &link.CreatedAt, &link.Clicks, &link.IPAddress, &link.VisitorUUID,
	)
	if err != nil {
		return nil, fmt.Errorf("get link by slug `%s`: %w", slug, convertErrorType(err))
	}
	return &link, nil
}

// IncrementClicks атомарно увеличивает счетчик на стороне базы.
func (r *LinkRepo) IncrementClicks(ctx context.Context, slug string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE links SET clicks = clicks + 1 WHERE slug = $1`, slug)
	if err != nil {
		r.logger.WithError(err).Errorf("failed to increment clicks for `%s`", slug)
		return fmt.Errorf("increment clicks `%s`: %w", slug, convertErrorType(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("increment clicks `%s`: %w", slug, repositories.ErrNotFound)
	}
	return nil
}

// CountByIP возвращает количество ссылок, созданных с указанного адреса.
func (r *LinkRepo) CountByIP(ctx context.Context, ip string) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM links WHERE ip_address = $1`, ip).Scan(&n); err != nil {
		return 0, fmt.Errorf("count links by ip `%s`: %w", ip, convertErrorType(err))
	}
	return n, nil
}

// CreateVisit сохраняет запись о переходе.
func (r *LinkRepo) CreateVisit(ctx context.Context, visit *models.Visit) error {
	const query = `
		INSERT INTO visits (slug, user_agent, ip_address, language, referrer, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		visit.Slug, visit.UserAgent, visit.IPAddress, visit.Language, visit.Referrer, visit.CreatedAt,
	).Scan(&visit.ID)
	if err != nil {
		return fmt.Errorf("create visit `%s`: %w", visit.Slug, convertErrorType(err))
	}
	return nil
}

// Ping проверяет соединение с базой.
func (r *LinkRepo) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", convertErrorType(err))
	}
	return nil
}
