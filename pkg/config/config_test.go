package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "127.0.0.1:3000", cfg.ListenAddr())
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "file", cfg.TokenStore)
	assert.Equal(t, "token", cfg.TokenKey)
	assert.Equal(t, 30*time.Second, cfg.RefreshIntervalDuration())
	assert.Equal(t, 10*time.Second, cfg.APITimeoutDuration())
	assert.NotEmpty(t, cfg.TokenFile)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://bachelorgolf.golf/api")
	t.Setenv("ENV", "production")
	t.Setenv("REFRESH_INTERVAL", "45s")
	t.Setenv("TOKEN_STORE", "redis")
	t.Setenv("API_RATE_LIMIT", "3")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://bachelorgolf.golf/api", cfg.APIBaseURL)
	assert.Equal(t, "production", cfg.Env)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 45*time.Second, cfg.RefreshIntervalDuration())
	assert.Equal(t, "redis", cfg.TokenStore)
	assert.Equal(t, 3, cfg.APIRateLimit)
}

func TestLoadConfig_RejectsUnknownTokenStore(t *testing.T) {
	t.Setenv("TOKEN_STORE", "cookie-jar")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOKEN_STORE")
}

func TestDurationFallbacks(t *testing.T) {
	cfg := &Config{
		APITimeout:            "soon",
		CircuitBreakerTimeout: "-5s",
		RefreshInterval:       "",
	}

	assert.Equal(t, defaultAPITimeout, cfg.APITimeoutDuration())
	assert.Equal(t, defaultBreakerTimeout, cfg.CircuitBreakerTimeoutDuration())
	assert.Equal(t, defaultRefreshInterval, cfg.RefreshIntervalDuration())
}
