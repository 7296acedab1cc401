package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("APP_PORT", "")
	t.Setenv("MEDIA_ROOT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Empty(t, cfg.Postgres.DSN)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, "media", cfg.Storage.MediaRoot)
	assert.Equal(t, "migrations", cfg.Postgres.MigrationsDir)
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("AUTH_BCRYPT_COST", "4")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "15")
	t.Setenv("UPLOAD_MAX_BYTES", "1024")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "false")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, 4, cfg.Auth.BcryptCost)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL())
	assert.Equal(t, int64(1024), cfg.Storage.MaxUploadBytes)
	assert.False(t, cfg.Postgres.RunMigrations)
	assert.Zero(t, cfg.App.RequestTimeout())
}

func TestLoad_InvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "abc")
	_, err := Load()
	assert.ErrorContains(t, err, "invalid REDIS_DB")
}

func TestLoad_BadIntFallsBack(t *testing.T) {
	t.Setenv("AUTH_BCRYPT_COST", "not-a-number")
	t.Setenv("REDIS_DB", "0")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
}
