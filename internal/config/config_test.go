// Package config provides configuration management for the professor search service.
package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// Clear any existing env vars that might interfere
	clearEnvVars(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Server defaults
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 240*time.Second, cfg.Server.RequestTimeout)

	// Logging defaults
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	// Metrics defaults
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, "profsearch", cfg.Metrics.Namespace)

	// Source defaults
	assert.True(t, cfg.Sources.SemanticScholar.Enabled)
	assert.Equal(t, "https://api.semanticscholar.org/graph/v1", cfg.Sources.SemanticScholar.BaseURL)
	assert.Equal(t, 1.0, cfg.Sources.SemanticScholar.RateLimit)
	assert.True(t, cfg.Sources.OpenAlex.Enabled)
	assert.Equal(t, 10.0, cfg.Sources.OpenAlex.RateLimit)
	assert.True(t, cfg.Sources.DBLP.Enabled)
	assert.Equal(t, "https://dblp.org", cfg.Sources.DBLP.BaseURL)

	// Aggregation defaults
	assert.Equal(t, 0.90, cfg.Aggregation.TitleSimilarityThreshold)
	assert.Equal(t, 20, cfg.Aggregation.MaxPagesPerSource)

	// Cache defaults
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 256, cfg.Cache.MaxEntries)

	// Scraper defaults
	assert.True(t, cfg.Scraper.Enabled)
	assert.Equal(t, 2*time.Second, cfg.Scraper.RequestDelay)
	assert.Equal(t, 30, cfg.Scraper.MaxStudents)
	assert.Equal(t, int64(3), cfg.Scraper.MaxConcurrent)
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	clearEnvVars(t)

	// Set environment variables with PROFSEARCH prefix
	t.Setenv("PROFSEARCH_SERVER_HTTP_PORT", "8888")
	t.Setenv("PROFSEARCH_LOGGING_LEVEL", "debug")
	t.Setenv("PROFSEARCH_SOURCES_OPENALEX_EMAIL", "ops@example.edu")
	t.Setenv("PROFSEARCH_SOURCES_DBLP_ENABLED", "false")
	t.Setenv("PROFSEARCH_CACHE_TTL", "30m")
	t.Setenv("PROFSEARCH_AGGREGATION_TITLE_SIMILARITY_THRESHOLD", "0.85")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8888, cfg.Server.HTTPPort)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "ops@example.edu", cfg.Sources.OpenAlex.Email)
	assert.False(t, cfg.Sources.DBLP.Enabled)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 0.85, cfg.Aggregation.TitleSimilarityThreshold)
}

func TestLoad_APIKeysFromEnvOnly(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("PROFSEARCH_SOURCES_SEMANTIC_SCHOLAR_API_KEY", "ss-key-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ss-key-test", cfg.Sources.SemanticScholar.APIKey)

	// Unset keys should be empty.
	assert.Empty(t, cfg.Sources.OpenAlex.APIKey)
	assert.Empty(t, cfg.Sources.DBLP.APIKey)
}

func TestValidate_InvalidPort(t *testing.T) {
	tests := []struct {
		name        string
		modifyFunc  func(*Config)
		expectedErr string
	}{
		{
			name: "HTTP port zero",
			modifyFunc: func(c *Config) {
				c.Server.HTTPPort = 0
			},
			expectedErr: "invalid HTTP port: 0",
		},
		{
			name: "HTTP port negative",
			modifyFunc: func(c *Config) {
				c.Server.HTTPPort = -1
			},
			expectedErr: "invalid HTTP port: -1",
		},
		{
			name: "HTTP port too high",
			modifyFunc: func(c *Config) {
				c.Server.HTTPPort = 70000
			},
			expectedErr: "invalid HTTP port: 70000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modifyFunc(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedErr)
		})
	}
}

func TestValidate_LogLevel(t *testing.T) {
	validLevels := []string{"trace", "debug", "info", "warn", "error", "fatal", "panic"}
	for _, level := range validLevels {
		t.Run("valid_"+level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Logging.Level = level
			err := cfg.Validate()
			assert.NoError(t, err)
		})
	}

	t.Run("invalid log level", func(t *testing.T) {
		cfg := validConfig()
		cfg.Logging.Level = "invalid"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level: invalid")
	})
}

func TestValidate_Sources(t *testing.T) {
	t.Run("all sources disabled", func(t *testing.T) {
		cfg := validConfig()
		cfg.Sources.SemanticScholar.Enabled = false
		cfg.Sources.OpenAlex.Enabled = false
		cfg.Sources.DBLP.Enabled = false
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one source must be enabled")
	})

	t.Run("enabled source with zero rate limit", func(t *testing.T) {
		cfg := validConfig()
		cfg.Sources.OpenAlex.RateLimit = 0
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limit must be positive")
	})

	t.Run("disabled source skips validation", func(t *testing.T) {
		cfg := validConfig()
		cfg.Sources.DBLP.Enabled = false
		cfg.Sources.DBLP.RateLimit = 0
		err := cfg.Validate()
		assert.NoError(t, err)
	})
}

func TestValidate_Aggregation(t *testing.T) {
	t.Run("threshold above one", func(t *testing.T) {
		cfg := validConfig()
		cfg.Aggregation.TitleSimilarityThreshold = 1.5
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "title similarity threshold must be between 0 and 1")
	})

	t.Run("zero page cap", func(t *testing.T) {
		cfg := validConfig()
		cfg.Aggregation.MaxPagesPerSource = 0
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_pages_per_source must be positive")
	})
}

func TestValidate_Cache(t *testing.T) {
	t.Run("enabled cache with zero TTL", func(t *testing.T) {
		cfg := validConfig()
		cfg.Cache.Enabled = true
		cfg.Cache.TTL = 0
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cache TTL must be positive")
	})

	t.Run("disabled cache skips validation", func(t *testing.T) {
		cfg := validConfig()
		cfg.Cache.Enabled = false
		cfg.Cache.TTL = 0
		err := cfg.Validate()
		assert.NoError(t, err)
	})
}

func TestValidate_Scraper(t *testing.T) {
	t.Run("zero concurrency", func(t *testing.T) {
		cfg := validConfig()
		cfg.Scraper.MaxConcurrent = 0
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "scraper max_concurrent must be positive")
	})
}

func TestServerConfig_HTTPAddress(t *testing.T) {
	cfg := ServerConfig{
		Host:     "0.0.0.0",
		HTTPPort: 8080,
	}
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddress())
}

// clearEnvVars removes all PROFSEARCH_ prefixed environment variables
func clearEnvVars(t *testing.T) {
	t.Helper()
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "PROFSEARCH_") {
			key, _, _ := strings.Cut(env, "=")
			os.Unsetenv(key)
		}
	}
}

// validConfig returns a valid configuration for testing
func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			HTTPPort:       8080,
			RequestTimeout: 240 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Sources: SourcesConfig{
			SemanticScholar: SourceConfig{Enabled: true, RateLimit: 1.0, MaxResults: 100},
			OpenAlex:        SourceConfig{Enabled: true, RateLimit: 10.0, MaxResults: 50},
			DBLP:            SourceConfig{Enabled: true, RateLimit: 1.0, MaxResults: 100},
		},
		Aggregation: AggregationConfig{
			TitleSimilarityThreshold: 0.90,
			MaxPagesPerSource:        20,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        time.Hour,
			MaxEntries: 256,
		},
		Scraper: ScraperConfig{
			Enabled:       true,
			Timeout:       15 * time.Second,
			RequestDelay:  2 * time.Second,
			MaxStudents:   30,
			MaxConcurrent: 3,
		},
	}
}
