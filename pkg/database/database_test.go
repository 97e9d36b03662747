//go:build !integration

package database

import (
	"path/filepath"
	"testing"

	"cartCompanion/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Memory(t *testing.T) {
	db, err := Open(&config.Config{Database: config.DatabaseConfig{Driver: config.EventLogMemory}})
	require.NoError(t, err)
	assert.Nil(t, db)
	assert.NoError(t, Close(db))
}

func TestOpen_SQLiteCreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "events.db")
	db, err := Open(&config.Config{
		App:      config.AppConfig{Environment: "production"},
		Database: config.DatabaseConfig{Driver: config.EventLogSQLite, SQLitePath: path},
	})
	require.NoError(t, err)
	require.NotNil(t, db)
	require.NoError(t, db.Exec("CREATE TABLE probe (id INTEGER)").Error)
	assert.NoError(t, Close(db))
	assert.FileExists(t, path)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(&config.Config{Database: config.DatabaseConfig{Driver: "mysql"}})
	assert.Error(t, err)
}
