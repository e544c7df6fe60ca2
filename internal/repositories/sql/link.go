package sql

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/fsdevblog/lnkz/internal/models"
	"github.com/fsdevblog/lnkz/internal/repositories"
)

type LinkRepo struct {
	db     *gorm.DB
	logger *logrus.Entry
}

func NewLinkRepo(db *gorm.DB, logger *logrus.Logger) *LinkRepo {
	return &LinkRepo{
		db:     db,
		logger: logger.WithField("module", "repository/sql/link"),
	}
}

func (r *LinkRepo) Create(ctx context.Context, link *models.Link) error {
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		convErr := convertErrorType(err)
		if !errors.Is(convErr, repositories.ErrDuplicateKey) {
			r.logger.WithError(err).Errorf("failed to create link `%s`", link.Slug)
		}
		return errors.Wrapf(convErr, "create link `%s`", link.Slug)
	}
	return nil
}

func (r *LinkRepo) GetBySlug(ctx context.Context, slug string) (*models.Link, error) {
	var link models.Link
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&link).Error; err != nil {
		convErr := convertErrorType(err)
		if !errors.Is(convErr, repositories.ErrNotFound) {
			r.logger.WithError(err).Errorf("failed to get link by slug `%s`", slug)
		}
		return nil, errors.Wrapf(convErr, "get link by slug `%s`", slug)
	}
	return &link, nil
}

// IncrementClicks выполняет `clicks = clicks + 1` одним запросом, без чтения текущего значения.
func (r *LinkRepo) IncrementClicks(ctx context.Context, slug string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Link{}).
		Where("slug = ?", slug).
		UpdateColumn("clicks", gorm.Expr("clicks + ?", 1))
	if res.Error != nil {
		r.logger.WithError(res.Error).Errorf("failed to increment clicks for `%s`", slug)
		return errors.Wrapf(convertErrorType(res.Error), "increment clicks `%s`", slug)
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(repositories.ErrNotFound, "increment clicks `%s`", slug)
	}
	return nil
}

func (r *LinkRepo) CountByIP(ctx context.Context, ip string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Link{}).Where("ip_address = ?", ip).Count(&n).Error; err != nil {
		r.logger.WithError(err).Errorf("failed to count links by ip `%s`", ip)
		return 0, errors.Wrapf(convertErrorType(err), "count links by ip `%s`", ip)
	}
	return n, nil
}

func (r *LinkRepo) CreateVisit(ctx context.Context, visit *models.Visit) error {
	if err := r.db.WithContext(ctx).Create(visit).Error; err != nil {
		r.logger.WithError(err).Errorf("failed to create visit for `%s`", visit.Slug)
		return errors.Wrapf(convertErrorType(err), "create visit `%s`", visit.Slug)
	}
	return nil
}

func (r *LinkRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return errors.Wrap(convertErrorType(err), "get sql db")
	}
	if pingErr := sqlDB.PingContext(ctx); pingErr != nil {
		return errors.Wrap(convertErrorType(pingErr), "ping")
	}
	return nil
}
