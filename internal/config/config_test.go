package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/fintrack/internal/store"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store)
	assert.Equal(t, "fintrack.db", cfg.SQLitePath)
	assert.Equal(t, 5, cfg.DBConnectAttempts)

	opts := cfg.StoreOptions()
	assert.Equal(t, store.DialectSQLite, opts.Dialect)
	assert.Equal(t, 500*time.Millisecond, opts.ConnectBackoff)
	assert.Equal(t, 10*time.Second, cfg.RatesOptions().Timeout)
}

func TestLoad_Postgres(t *testing.T) {
	t.Setenv("FINTRACK_STORE", "postgres")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("RATES_ATTEMPTS", "5")

	cfg, err := Load()
	require.NoError(t, err)

	opts := cfg.StoreOptions()
	assert.Equal(t, store.DialectPostgres, opts.Dialect)
	assert.Equal(t, "db.internal", opts.Host)
	assert.Equal(t, "app", opts.Username)
	assert.Equal(t, 5, cfg.RatesOptions().Attempts)
}

func TestLoad_RejectsUnknownStore(t *testing.T) {
	t.Setenv("FINTRACK_STORE", "mssql")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsMalformedNumber(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-port")

	_, err := Load()
	assert.Error(t, err)
}
