package db

import (
	"context"

	"github.com/fsdevblog/lnkz/internal/db/memory"
)

// MemoryStorage in-memory хранилище: отдельные коллекции для ссылок и переходов.
type MemoryStorage struct {
	Links  *memory.MStorage
	Visits *memory.MStorage
}

func NewMemStorage() *MemoryStorage {
	return &MemoryStorage{
		Links:  memory.NewMemStorage(),
		Visits: memory.NewMemStorage(),
	}
}

// Ping хранилище в памяти всегда доступно.
func (s *MemoryStorage) Ping(ctx context.Context) error {
	return ctx.Err() //nolint:wrapcheck
}
