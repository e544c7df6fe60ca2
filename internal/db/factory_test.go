package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNewConnectionFactory(t *testing.T) {
	t.Run("in memory", func(t *testing.T) {
		conn, err := NewConnectionFactory(t.Context(), FactoryConfig{StorageType: StorageTypeInMemory})
		require.NoError(t, err)
		assert.IsType(t, new(MemoryStorage), conn)
		assert.NoError(t, CloseConnection(conn))
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "lnkz.db")
		conn, err := NewConnectionFactory(t.Context(), FactoryConfig{StorageType: StorageTypeSQLite, SqliteDBPath: &path})
		require.NoError(t, err)
		assert.IsType(t, new(gorm.DB), conn)
		assert.NoError(t, CloseConnection(conn))
	})

	t.Run("sqlite without path", func(t *testing.T) {
		_, err := NewConnectionFactory(t.Context(), FactoryConfig{StorageType: StorageTypeSQLite})
		assert.Error(t, err)
	})

	t.Run("postgres without dsn", func(t *testing.T) {
		empty := ""
		_, err := NewConnectionFactory(t.Context(), FactoryConfig{StorageType: StorageTypePostgres, PostgresDSN: &empty})
		assert.Error(t, err)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := NewConnectionFactory(t.Context(), FactoryConfig{StorageType: "mongo"})
		assert.Error(t, err)
	})
}

func TestCloseConnection_Unknown(t *testing.T) {
	assert.Error(t, CloseConnection("nope"))
}
