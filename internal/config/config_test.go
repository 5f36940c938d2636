package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("PORT", "")
	t.Setenv("PRESENCE_TTL", "")
	t.Setenv("TYPING_TTL", "")
	t.Setenv("DEFAULT_MAX_MEMBERS", "")
	t.Setenv("INVITE_BASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 60*time.Second, cfg.PresenceTTL)
	assert.Equal(t, 5*time.Second, cfg.TypingTTL)
	assert.Equal(t, 50, cfg.DefaultMaxMembers)
	assert.Equal(t, "https://codm.social", cfg.InviteBaseURL)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "9000")
	t.Setenv("PRESENCE_TTL", "90s")
	t.Setenv("DEFAULT_MAX_MEMBERS", "120")
	t.Setenv("ALLOW_CROSS_SITE_DEV", "TRUE")
	t.Setenv("INVITE_BASE_URL", "https://app.example.com/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 90*time.Second, cfg.PresenceTTL)
	assert.Equal(t, 120, cfg.DefaultMaxMembers)
	assert.True(t, cfg.AllowCrossSiteDev)
	assert.Equal(t, "https://app.example.com", cfg.InviteBaseURL)
}
