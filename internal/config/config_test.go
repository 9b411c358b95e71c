package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.Equal(t, 30*time.Second, cfg.Database.ConnMaxIdleTime)
	assert.Equal(t, 5*time.Second, cfg.Database.ConnectTimeout)
	assert.Equal(t, "X-API-Key", cfg.Auth.Header)
	assert.Equal(t, []string{"/healthz", "/metrics"}, cfg.Auth.SkipPathList())
	assert.False(t, cfg.Database.RequireTLS)
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("API_KEY", "")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_KEY")
}

func TestDecodeSkipsValidation(t *testing.T) {
	t.Setenv("API_KEY", "")
	cfg, err := Decode()
	require.NoError(t, err)
	assert.Empty(t, cfg.Auth.APIKey)
	assert.Error(t, cfg.Validate())
}

func TestSkipPathsOverride(t *testing.T) {
	t.Setenv("API_KEY", "secret")
	t.Setenv("API_KEY_SKIP_PATHS", "/healthz")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"/healthz"}, cfg.Auth.SkipPathList())
}

func TestLoadRejectsUnknownStore(t *testing.T) {
	t.Setenv("API_KEY", "secret")
	t.Setenv("STORE", "mongo")
	_, err := Load()
	require.Error(t, err)
}

func TestProductionRequiresTLS(t *testing.T) {
	t.Setenv("API_KEY", "secret")
	t.Setenv("NODE_ENV", "production")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_USER", "lib")
	t.Setenv("DB_PASS", "p@ss word")
	t.Setenv("DB_NAME", "library")

	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, cfg.Database.RequireTLS)

	dsn := cfg.Database.DSN()
	assert.True(t, strings.HasPrefix(dsn, "postgres://lib:"), dsn)
	assert.Contains(t, dsn, "@db.internal:5432/library")
	assert.Contains(t, dsn, "sslmode=require")
	assert.Contains(t, dsn, "connect_timeout=5")
}

func TestDatabaseURLWins(t *testing.T) {
	d := DatabaseConfig{
		URL:            "postgres://u:p@render.example:5432/lib",
		Host:           "ignored",
		ConnectTimeout: 5 * time.Second,
	}
	dsn := d.DSN()
	assert.Contains(t, dsn, "render.example")
	assert.NotContains(t, dsn, "ignored")
	assert.Contains(t, dsn, "sslmode=require")

	d.URL = "postgres://u:p@h/lib?sslmode=verify-full"
	assert.Contains(t, d.DSN(), "sslmode=verify-full")
}

func TestServerAddr(t *testing.T) {
	assert.Equal(t, ":3000", ServerConfig{Port: 3000}.Addr())
	assert.Equal(t, "127.0.0.1:8080", ServerConfig{Host: "127.0.0.1", Port: 8080}.Addr())
}
