package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"

	"github.com/fsdevblog/lnkz/internal/db/migrations"
)

type StorageType string

const (
	StorageTypePostgres StorageType = "postgres"
	StorageTypeSQLite   StorageType = "sqlite"
	StorageTypeInMemory StorageType = "inMemory"
)

type FactoryConfig struct {
	StorageType  StorageType
	PostgresDSN  *string
	SqliteDBPath *string
	TursoToken   string
}

// NewConnectionFactory открывает подключение к хранилищу заданного типа и применяет схему.
// Возвращает *pgxpool.Pool, *gorm.DB или *MemoryStorage.
func NewConnectionFactory(ctx context.Context, config FactoryConfig) (any, error) {
	switch config.StorageType {
	case StorageTypePostgres:
		if config.PostgresDSN == nil || *config.PostgresDSN == "" {
			return nil, errors.New("postgres dsn is empty")
		}
		if migrateErr := migrations.Up(*config.PostgresDSN); migrateErr != nil {
			return nil, fmt.Errorf("failed to migrate schema: %w", migrateErr)
		}
		pool, err := NewPostgresConnection(ctx, *config.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres connection: %w", err)
		}
		return pool, nil
	case StorageTypeSQLite:
		if config.SqliteDBPath == nil || *config.SqliteDBPath == "" {
			return nil, errors.New("sqlite db path is empty")
		}
		conn, err := NewSQLite(*config.SqliteDBPath, config.TursoToken)
		if err != nil {
			return nil, fmt.Errorf("failed to create sqlite connection: %w", err)
		}
		return conn, nil
	case StorageTypeInMemory:
		return NewMemStorage(), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", config.StorageType)
	}
}

// CloseConnection закрывает подключение, созданное NewConnectionFactory.
func CloseConnection(conn any) error {
	switch c := conn.(type) {
	case *pgxpool.Pool:
		c.Close()
		return nil
	case *gorm.DB:
		sqlDB, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get sql db: %w", err)
		}
		if err = sqlDB.Close(); err != nil {
			return fmt.Errorf("failed to close sql db: %w", err)
		}
		return nil
	case *MemoryStorage:
		return nil
	default:
		return fmt.Errorf("unknown connection type %T", conn)
	}
}
