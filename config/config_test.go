package config

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, 120*time.Hour, cfg.InvitationValidity)
	assert.Equal(t, time.Minute, cfg.ExpirySweepInterval)
	assert.Equal(t, "noop", cfg.Email.Provider)
	assert.Len(t, cfg.CORSAllowedOrigins, 2)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("INVITATION_VALIDITY", "48h")
	t.Setenv("EXPIRY_SWEEP_INTERVAL", "30s")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 48*time.Hour, cfg.InvitationValidity)
	assert.Equal(t, 30*time.Second, cfg.ExpirySweepInterval)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_RejectsNonPositiveValidity(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("INVITATION_VALIDITY", "0s")

	_, err := Load()
	require.Error(t, err)
}

func TestNewLogger_Level(t *testing.T) {
	logger := NewLogger("development", "warn")
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))

	logger = NewLogger("production", "bogus")
	assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo))
}
