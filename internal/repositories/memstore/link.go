package memstore

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/fsdevblog/lnkz/internal/db"
	"github.com/fsdevblog/lnkz/internal/db/memory"
	"github.com/fsdevblog/lnkz/internal/models"
)

// LinkRepo репозиторий коротких ссылок в памяти. Ключом записи служит slug,
// поэтому уникальность обеспечивается самим хранилищем.
type LinkRepo struct {
	s     *db.MemoryStorage
	idSeq atomic.Uint64
}

// NewLinkRepo создает новый экземпляр репозитория.
func NewLinkRepo(store *db.MemoryStorage) *LinkRepo {
	return &LinkRepo{
		s: store,
	}
}

// Create сохраняет ссылку. При занятом slug возвращает repositories.ErrDuplicateKey.
func (r *LinkRepo) Create(ctx context.Context, link *models.Link) error {
	toSave := *link
	toSave.ID = uint(r.idSeq.Add(1))
	if err := memory.Set[models.Link](ctx, link.Slug, &toSave, r.s.Links); err != nil {
		return fmt.Errorf("failed to create link `%s`: %w", link.Slug, convertErrorType(err))
	}
	link.ID = toSave.ID
	return nil
}

// GetBySlug находит ссылку по короткому коду.
func (r *LinkRepo) GetBySlug(ctx context.Context, slug string) (*models.Link, error) {
	link, err := memory.Get[models.Link](ctx, slug, r.s.Links)
	if err != nil {
		return nil, fmt.Errorf("failed to get link by slug `%s`: %w", slug, convertErrorType(err))
	}
	return link, nil
}

// IncrementClicks атомарно увеличивает счетчик переходов.
func (r *LinkRepo) IncrementClicks(ctx context.Context, slug string) error {
	err := memory.Update[models.Link](ctx, slug, r.s.Links, func(l *models.Link) error {
		l.Clicks++
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to increment clicks for `%s`: %w", slug, convertErrorType(err))
	}
	return nil
}

// CountByIP возвращает количество ссылок, созданных с указанного адреса.
func (r *LinkRepo) CountByIP(ctx context.Context, ip string) (int64, error) {
	n, err := memory.Count[models.Link](ctx, r.s.Links, func(l models.Link) bool {
		return l.IPAddress == ip
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count links by ip `%s`: %w", ip, convertErrorType(err))
	}
	return n, nil
}

// CreateVisit сохраняет запись о переходе.
func (r *LinkRepo) CreateVisit(ctx context.Context, visit *models.Visit) error {
	if err := memory.Set[models.Visit](ctx, uuid.NewString(), visit, r.s.Visits); err != nil {
		return fmt.Errorf("failed to create visit for `%s`: %w", visit.Slug, convertErrorType(err))
	}
	return nil
}

// Ping проверяет доступность хранилища.
func (r *LinkRepo) Ping(ctx context.Context) error {
	return convertErrorType(r.s.Ping(ctx))
}
