package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ServiceConfig collects the environment-driven settings a planning run
// needs: provider credentials/timeouts and the cache backend to use. There
// is no HTTP server, backup, or health-check configuration here — this
// service has no network-facing surface of its own.
type ServiceConfig struct {
	Provider ProviderConfig
	Cache    CacheConfig
	LogLevel string
}

// ProviderConfig configures the external GeoProvider adapter.
type ProviderConfig struct {
	APIKey         string
	BaseURL        string
	GeocodeTimeout time.Duration
	DistanceMinTimeout time.Duration
	DistanceMaxTimeout time.Duration
}

// CacheConfig selects and configures the CacheStore backend.
type CacheConfig struct {
	Backend    string // "sqlite" or "postgres"
	SQLitePath string
	PostgresDSN string
	GeocodeTTL time.Duration // 90 days
	DistanceTTL time.Duration // 30 days
}

// DefaultServiceConfig returns sensible defaults, overridden by LoadFromEnv.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Provider: ProviderConfig{
			BaseURL:            "https://maps.example.invalid",
			GeocodeTimeout:     8 * time.Second,
			DistanceMinTimeout: 4 * time.Second,
			DistanceMaxTimeout: 15 * time.Second,
		},
		Cache: CacheConfig{
			Backend:     "sqlite",
			SQLitePath:  "./tourenplaner-cache.db",
			GeocodeTTL:  90 * 24 * time.Hour,
			DistanceTTL: 30 * 24 * time.Hour,
		},
		LogLevel: "INFO",
	}
}

// LoadFromEnv overlays environment variables onto the defaults.
func LoadFromEnv() (ServiceConfig, error) {
	cfg := DefaultServiceConfig()

	if v := os.Getenv("TOURENPLANER_PROVIDER_API_KEY"); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("TOURENPLANER_PROVIDER_BASE_URL"); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := os.Getenv("TOURENPLANER_CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("TOURENPLANER_CACHE_SQLITE_PATH"); v != "" {
		cfg.Cache.SQLitePath = v
	}
	if v := os.Getenv("TOURENPLANER_CACHE_POSTGRES_DSN"); v != "" {
		cfg.Cache.PostgresDSN = v
	}
	if v := os.Getenv("TOURENPLANER_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TOURENPLANER_GEOCODE_TIMEOUT_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid TOURENPLANER_GEOCODE_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Provider.GeocodeTimeout = time.Duration(secs) * time.Second
	}

	if cfg.Cache.Backend != "sqlite" && cfg.Cache.Backend != "postgres" {
		return cfg, fmt.Errorf("unsupported cache backend %q", cfg.Cache.Backend)
	}

	return cfg, nil
}
