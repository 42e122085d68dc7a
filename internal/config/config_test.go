package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearAuthEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("AUTH_ACCESS_TOKEN_SECRET", "")
	t.Setenv("AUTH_REFRESH_TOKEN_SECRET", "")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "")
	t.Setenv("AUTH_REFRESH_TOKEN_TTL_HOURS", "")
	t.Setenv("CACHE_BACKEND", "")
	t.Setenv("RATE_LIMIT_BACKEND", "")
}

func TestLoad_FailsWithoutSigningSecret(t *testing.T) {
	clearAuthEnv(t)

	cfg, err := Load()
	require.ErrorIs(t, err, ErrMissingSigningSecret)
	require.Nil(t, cfg)
}

func TestLoad_SharedSecretFallback(t *testing.T) {
	clearAuthEnv(t)
	t.Setenv("AUTH_JWT_SECRET", "shared")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "shared", cfg.Auth.AccessTokenSecret)
	require.Equal(t, "shared", cfg.Auth.RefreshTokenSecret)
	require.True(t, cfg.Auth.SharedSecret())
}

func TestLoad_DistinctSecretsAndDefaults(t *testing.T) {
	clearAuthEnv(t)
	t.Setenv("AUTH_ACCESS_TOKEN_SECRET", "access")
	t.Setenv("AUTH_REFRESH_TOKEN_SECRET", "refresh")

	cfg, err := Load()
	require.NoError(t, err)
	require.False(t, cfg.Auth.SharedSecret())
	require.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL())
	require.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTokenTTL())
	require.Equal(t, 10, cfg.Auth.BcryptCost)
	require.Equal(t, BackendMemory, cfg.Cache.Backend)
	require.Equal(t, time.Minute, cfg.RateLimit.Window())
	require.Equal(t, 100, cfg.RateLimit.Max)
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	clearAuthEnv(t)
	t.Setenv("AUTH_JWT_SECRET", "shared")
	t.Setenv("CACHE_BACKEND", "memcached")

	_, err := Load()
	require.Error(t, err)
}

func TestAppConfig_RequestTimeout(t *testing.T) {
	require.Equal(t, time.Duration(0), AppConfig{}.RequestTimeout())
	require.Equal(t, 5*time.Second, AppConfig{RequestTimeoutSeconds: 5}.RequestTimeout())
	require.Equal(t, "0.0.0.0:8080", AppConfig{Host: "0.0.0.0", Port: "8080"}.Addr())
}
