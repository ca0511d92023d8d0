package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		assert.ErrorIs(t, (&Config{}).Validate(), errMissingSecret)
	})

	t.Run("short secret", func(t *testing.T) {
		assert.ErrorIs(t, (&Config{JWTSecret: "short"}).Validate(), errShortSecret)
	})

	t.Run("wildcard origin with credentialed cookies", func(t *testing.T) {
		c := &Config{JWTSecret: "0123456789abcdef0123456789abcdef", CORSOrigins: "*"}
		assert.ErrorIs(t, c.Validate(), errWildcardOrigin)
	})

	t.Run("fills zero sizes", func(t *testing.T) {
		c := &Config{JWTSecret: "0123456789abcdef0123456789abcdef"}
		require.NoError(t, c.Validate())
		assert.Equal(t, 256, c.QRSize)
		assert.Equal(t, 1024, c.UsernameCacheSize)
	})
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("HTTP_PORT", "8088")
	t.Setenv("STRICT_ROLES", "true")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("QR_SIZE", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8088", cfg.HTTPPort)
	assert.True(t, cfg.StrictRoles)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 256, cfg.QRSize)
	assert.True(t, cfg.CookieSecure)
}

func TestLoadRejectsMissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestOrigins(t *testing.T) {
	c := &Config{CORSOrigins: " http://a.test , ,http://b.test"}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, c.Origins())
}
