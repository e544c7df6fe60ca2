package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/fsdevblog/lnkz/internal/models"
	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso/libsql драйвер
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqliteBusyTimeoutMs = 5000

// NewSQLite открывает базу SQLite и применяет миграции. dsn может быть путем к локальному файлу
// либо адресом libsql (`libsql://`, `https://`, `wss://`), тогда authToken передается серверу Turso.
func NewSQLite(dsn string, authToken string) (*gorm.DB, error) {
	conn, connErr := connectSQLite(dsn, authToken)
	if connErr != nil {
		return nil, fmt.Errorf("init database error: %w", connErr)
	}
	if migrateErr := migrateSQLite(conn); migrateErr != nil {
		return nil, fmt.Errorf("migrate database error: %w", migrateErr)
	}
	return conn, nil
}

func isLibSQL(dsn string) bool {
	for _, prefix := range []string{"libsql://", "https://", "wss://"} {
		if strings.HasPrefix(dsn, prefix) {
			return true
		}
	}
	return false
}

func connectSQLite(dsn string, authToken string) (*gorm.DB, error) {
	gormConf := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	}

	if isLibSQL(dsn) {
		remoteDSN, dsnErr := libSQLDSN(dsn, authToken)
		if dsnErr != nil {
			return nil, dsnErr
		}
		sqlDB, err := sql.Open("libsql", remoteDSN)
		if err != nil {
			return nil, fmt.Errorf("open libsql database error: %w", err)
		}
		db, err := gorm.Open(sqlite.New(sqlite.Config{Conn: sqlDB}), gormConf)
		if err != nil {
			return nil, fmt.Errorf("connect libsql database error: %w", err)
		}
		return db, nil
	}

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("%s?_busy_timeout=%d", dsn, sqliteBusyTimeoutMs)), gormConf)
	if err != nil {
		return nil, fmt.Errorf("connect database with path %s error: %w", dsn, err)
	}

	// SQLite допускает только одного писателя, а `:memory:` существует в рамках одного соединения.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func libSQLDSN(dsn string, authToken string) (string, error) {
	if authToken == "" {
		return dsn, nil
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse libsql dsn: %w", err)
	}
	q := u.Query()
	q.Set("authToken", authToken)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func migrateSQLite(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Link{}, &models.Visit{}); err != nil {
		return fmt.Errorf("migrating sql: %w", err)
	}
	return nil
}
