package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ratewall/ratewall/internal/core/domain"
)

func TestLoad_Defaults(t *testing.T) {
	clearLimiterEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, BackendMemory, cfg.Limiter.Backend)
	require.Equal(t, time.Minute, cfg.Limiter.Limit.Window)
	require.Equal(t, 100, cfg.Limiter.Limit.MaxRequests)
}

func TestLoad_OverridesFromEnv(t *testing.T) {
	clearLimiterEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LIMITER_BACKEND", "redis")
	t.Setenv("RATE_LIMIT_WINDOW_MS", "1500")
	t.Setenv("RATE_LIMIT_MAX_REQUESTS", "7")
	t.Setenv("REDIS_HOST", "cache.internal")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "9090", cfg.Server.Port)
	require.Equal(t, BackendRedis, cfg.Limiter.Backend)
	require.Equal(t, 1500*time.Millisecond, cfg.Limiter.Limit.Window)
	require.Equal(t, 7, cfg.Limiter.Limit.MaxRequests)
	require.Equal(t, "cache.internal", cfg.Limiter.Redis.Host)
	require.Equal(t, 6380, cfg.Limiter.Redis.Port)
}

func TestLoad_RejectsNonPositiveLimits(t *testing.T) {
	cases := []struct {
		name     string
		windowMs string
		max      string
	}{
		{"zero window", "0", "10"},
		{"negative window", "-1", "10"},
		{"zero max", "60000", "0"},
		{"both invalid", "0", "-5"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearLimiterEnv(t)
			t.Setenv("RATE_LIMIT_WINDOW_MS", tc.windowMs)
			t.Setenv("RATE_LIMIT_MAX_REQUESTS", tc.max)

			_, err := Load()
			require.ErrorIs(t, err, domain.ErrInvalidConfig)
		})
	}
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	clearLimiterEnv(t)
	t.Setenv("LIMITER_BACKEND", "memcached")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported LIMITER_BACKEND")
}

func TestLoad_RejectsMalformedNumbers(t *testing.T) {
	clearLimiterEnv(t)
	t.Setenv("RATE_LIMIT_WINDOW_MS", "soon")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "RATE_LIMIT_WINDOW_MS")
}

// clearLimiterEnv resets every variable Load reads so tests do not leak
// state into each other through the host environment.
func clearLimiterEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SERVER_PORT", "LOG_LEVEL", "LIMITER_BACKEND",
		"RATE_LIMIT_WINDOW_MS", "RATE_LIMIT_MAX_REQUESTS",
		"REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "REDIS_DB",
	} {
		t.Setenv(key, "")
	}
}
