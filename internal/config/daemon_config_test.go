package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultServiceConfig(t *testing.T) {
	cfg := DefaultServiceConfig()
	assert.Equal(t, "sqlite", cfg.Cache.Backend)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, 8*time.Second, cfg.Provider.GeocodeTimeout)
}

func TestLoadFromEnvOverlaysDefaults(t *testing.T) {
	t.Setenv("TOURENPLANER_PROVIDER_API_KEY", "test-key")
	t.Setenv("TOURENPLANER_CACHE_BACKEND", "postgres")
	t.Setenv("TOURENPLANER_CACHE_POSTGRES_DSN", "postgres://localhost/test")
	t.Setenv("TOURENPLANER_LOG_LEVEL", "DEBUG")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "test-key", cfg.Provider.APIKey)
	assert.Equal(t, "postgres", cfg.Cache.Backend)
	assert.Equal(t, "postgres://localhost/test", cfg.Cache.PostgresDSN)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
}

func TestLoadFromEnvRejectsUnsupportedBackend(t *testing.T) {
	t.Setenv("TOURENPLANER_CACHE_BACKEND", "oracle")

	_, err := LoadFromEnv()
	assert.Error(t, err)
}

func TestLoadFromEnvRejectsInvalidGeocodeTimeout(t *testing.T) {
	t.Setenv("TOURENPLANER_GEOCODE_TIMEOUT_SECONDS", "not-a-number")

	_, err := LoadFromEnv()
	assert.Error(t, err)
}

func TestLoadFromEnvParsesGeocodeTimeout(t *testing.T) {
	t.Setenv("TOURENPLANER_GEOCODE_TIMEOUT_SECONDS", "20")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 20*time.Second, cfg.Provider.GeocodeTimeout)
}

func TestLoadFromEnvLeavesDefaultsWhenUnset(t *testing.T) {
	for _, key := range []string{
		"TOURENPLANER_PROVIDER_API_KEY",
		"TOURENPLANER_PROVIDER_BASE_URL",
		"TOURENPLANER_CACHE_BACKEND",
		"TOURENPLANER_CACHE_SQLITE_PATH",
		"TOURENPLANER_CACHE_POSTGRES_DSN",
		"TOURENPLANER_LOG_LEVEL",
		"TOURENPLANER_GEOCODE_TIMEOUT_SECONDS",
	} {
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, DefaultServiceConfig(), cfg)
}
