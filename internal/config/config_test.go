package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost/complains")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, time.UTC, cfg.App.Location)
	assert.True(t, cfg.Postgres.RunMigrations)
	assert.Equal(t, "migrations", cfg.Postgres.MigrationsDir)
	assert.Equal(t, time.Hour, cfg.Auth.AccessTokenTTL())
	assert.Equal(t, "complaint_events", cfg.Notification.Queue)
	assert.Empty(t, cfg.Notification.AMQPURL)
	assert.False(t, cfg.Dashboard.AdminOnly)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://db/complains")
	t.Setenv("APP_PORT", "9000")
	t.Setenv("APP_TIMEZONE", "Asia/Jakarta")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "15")
	t.Setenv("POSTGRES_MAX_CONNS", "not-a-number")
	t.Setenv("DASHBOARD_ADMIN_ONLY", "true")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, "Asia/Jakarta", cfg.App.Location.String())
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL())
	assert.Equal(t, int32(10), cfg.Postgres.MaxConns)
	assert.True(t, cfg.Dashboard.AdminOnly)
	assert.Zero(t, cfg.App.RequestTimeout())
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing dsn", func(t *testing.T) {
		t.Setenv("POSTGRES_DSN", "")
		_, err := Load()
		assert.ErrorContains(t, err, "POSTGRES_DSN")
	})

	t.Run("bad redis db", func(t *testing.T) {
		t.Setenv("POSTGRES_DSN", "postgres://db/complains")
		t.Setenv("REDIS_DB", "primary")
		_, err := Load()
		assert.ErrorContains(t, err, "REDIS_DB")
	})

	t.Run("unknown timezone", func(t *testing.T) {
		t.Setenv("POSTGRES_DSN", "postgres://db/complains")
		t.Setenv("APP_TIMEZONE", "Mars/Olympus")
		_, err := Load()
		assert.ErrorContains(t, err, "APP_TIMEZONE")
	})
}
