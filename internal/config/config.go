// Package config provides configuration management for the professor search service.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the professor search service.
type Config struct {
	// Server contains HTTP server settings.
	Server ServerConfig `mapstructure:"server"`
	// Logging contains structured logging settings.
	Logging LoggingConfig `mapstructure:"logging"`
	// Metrics contains Prometheus metrics exposure settings.
	Metrics MetricsConfig `mapstructure:"metrics"`
	// Sources contains publication source API configurations.
	Sources SourcesConfig `mapstructure:"sources"`
	// Aggregation contains dedup and pagination settings.
	Aggregation AggregationConfig `mapstructure:"aggregation"`
	// Cache contains result cache settings.
	Cache CacheConfig `mapstructure:"cache"`
	// Scraper contains lab-page scraper settings.
	Scraper ScraperConfig `mapstructure:"scraper"`
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	// Host is the address to bind the server to (default: 0.0.0.0).
	Host string `mapstructure:"host"`
	// HTTPPort is the HTTP server port (default: 8080).
	HTTPPort int `mapstructure:"http_port"`
	// ReadTimeout is the maximum duration for reading request body.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the maximum duration for writing response. Aggregation
	// runs page through rate-limited APIs, so this must cover a full run.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// RequestTimeout bounds a single search request end to end.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level (trace, debug, info, warn, error, fatal, panic).
	Level string `mapstructure:"level"`
	// Format is the log format (json, console).
	Format string `mapstructure:"format"`
	// Output is the log output destination (stdout, stderr).
	Output string `mapstructure:"output"`
	// AddSource adds source file and line to log output.
	AddSource bool `mapstructure:"add_source"`
	// TimeFormat is the timestamp format.
	TimeFormat string `mapstructure:"time_format"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	// Enabled enables metrics collection and exposure.
	Enabled bool `mapstructure:"enabled"`
	// Path is the HTTP path for the metrics endpoint.
	Path string `mapstructure:"path"`
	// Namespace is the prefix applied to every metric name.
	Namespace string `mapstructure:"namespace"`
}

// SourcesConfig holds configuration for all publication source APIs.
type SourcesConfig struct {
	// SemanticScholar contains Semantic Scholar API settings.
	SemanticScholar SourceConfig `mapstructure:"semantic_scholar"`
	// OpenAlex contains OpenAlex API settings.
	OpenAlex SourceConfig `mapstructure:"openalex"`
	// DBLP contains DBLP API settings.
	DBLP SourceConfig `mapstructure:"dblp"`
}

// SourceConfig holds configuration for a single publication source API.
type SourceConfig struct {
	// Enabled controls whether this source is queried.
	Enabled bool `mapstructure:"enabled"`
	// APIKey is the API key (loaded from environment variable, e.g.
	// PROFSEARCH_SOURCES_SEMANTIC_SCHOLAR_API_KEY).
	APIKey string `mapstructure:"-"`
	// BaseURL is the API base URL.
	BaseURL string `mapstructure:"base_url"`
	// Email is the contact address sent to APIs that reward identified
	// callers with higher rate limits (OpenAlex polite pool).
	Email string `mapstructure:"email"`
	// Timeout is the timeout for API calls.
	Timeout time.Duration `mapstructure:"timeout"`
	// RateLimit is the maximum requests per second.
	RateLimit float64 `mapstructure:"rate_limit"`
	// MaxResults is the maximum results per page.
	MaxResults int `mapstructure:"max_results"`
}

// AggregationConfig holds dedup and pagination settings.
type AggregationConfig struct {
	// TitleSimilarityThreshold is the minimum normalized-title similarity
	// (0.0-1.0) for merging records without a shared identifier.
	TitleSimilarityThreshold float64 `mapstructure:"title_similarity_threshold"`
	// MaxPagesPerSource bounds pagination per source per run.
	MaxPagesPerSource int `mapstructure:"max_pages_per_source"`
	// MaxResultsPerSource caps the page size requested from each source.
	MaxResultsPerSource int `mapstructure:"max_results_per_source"`
}

// CacheConfig holds result cache settings.
type CacheConfig struct {
	// Enabled controls whether search results are cached.
	Enabled bool `mapstructure:"enabled"`
	// TTL is how long a cached result stays servable.
	TTL time.Duration `mapstructure:"ttl"`
	// MaxEntries bounds the cache size.
	MaxEntries int `mapstructure:"max_entries"`
}

// ScraperConfig holds lab-page scraper settings.
type ScraperConfig struct {
	// Enabled controls whether student enrichment is available at all.
	Enabled bool `mapstructure:"enabled"`
	// Timeout is the timeout per page fetch.
	Timeout time.Duration `mapstructure:"timeout"`
	// RequestDelay is the politeness delay between consecutive fetches.
	RequestDelay time.Duration `mapstructure:"request_delay"`
	// MaxStudents caps how many people are extracted per lab.
	MaxStudents int `mapstructure:"max_students"`
	// MaxConcurrent bounds concurrent scrape operations.
	MaxConcurrent int64 `mapstructure:"max_concurrent"`
	// UserAgent identifies the scraper to web servers.
	UserAgent string `mapstructure:"user_agent"`
}

// HTTPAddress returns the HTTP server address.
func (c *ServerConfig) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

// Load loads configuration from environment variables and config files.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix("PROFSEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if present
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/professor-search-service")

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use env vars and defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Load secrets exclusively from environment variables.
	// These fields use mapstructure:"-" to prevent loading from config files.
	loadSecrets(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadSecrets populates secret fields exclusively from environment variables.
// These fields are tagged with mapstructure:"-" to prevent loading from config files.
func loadSecrets(cfg *Config) {
	cfg.Sources.SemanticScholar.APIKey = os.Getenv("PROFSEARCH_SOURCES_SEMANTIC_SCHOLAR_API_KEY")
	cfg.Sources.OpenAlex.APIKey = os.Getenv("PROFSEARCH_SOURCES_OPENALEX_API_KEY")
	cfg.Sources.DBLP.APIKey = os.Getenv("PROFSEARCH_SOURCES_DBLP_API_KEY")
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "300s")
	v.SetDefault("server.request_timeout", "240s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "profsearch")

	// Sources defaults - Semantic Scholar
	// API keys are loaded exclusively from environment variables (see loadSecrets).
	// The unauthenticated rate limit is 1 req/sec shared across endpoints.
	v.SetDefault("sources.semantic_scholar.enabled", true)
	v.SetDefault("sources.semantic_scholar.base_url", "https://api.semanticscholar.org/graph/v1")
	v.SetDefault("sources.semantic_scholar.timeout", "30s")
	v.SetDefault("sources.semantic_scholar.rate_limit", 1.0)
	v.SetDefault("sources.semantic_scholar.max_results", 100)

	// Sources defaults - OpenAlex
	v.SetDefault("sources.openalex.enabled", true)
	v.SetDefault("sources.openalex.base_url", "https://api.openalex.org")
	v.SetDefault("sources.openalex.email", "")
	v.SetDefault("sources.openalex.timeout", "30s")
	v.SetDefault("sources.openalex.rate_limit", 10.0)
	v.SetDefault("sources.openalex.max_results", 50)

	// Sources defaults - DBLP
	v.SetDefault("sources.dblp.enabled", true)
	v.SetDefault("sources.dblp.base_url", "https://dblp.org")
	v.SetDefault("sources.dblp.timeout", "30s")
	v.SetDefault("sources.dblp.rate_limit", 1.0)
	v.SetDefault("sources.dblp.max_results", 100)

	// Aggregation defaults
	v.SetDefault("aggregation.title_similarity_threshold", 0.90)
	v.SetDefault("aggregation.max_pages_per_source", 20)
	v.SetDefault("aggregation.max_results_per_source", 0)

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("cache.max_entries", 256)

	// Scraper defaults
	v.SetDefault("scraper.enabled", true)
	v.SetDefault("scraper.timeout", "15s")
	v.SetDefault("scraper.request_delay", "2s")
	v.SetDefault("scraper.max_students", 30)
	v.SetDefault("scraper.max_concurrent", 3)
	v.SetDefault("scraper.user_agent", "ScholarScope-ProfessorSearch/1.0 (academic research tool)")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	// Validate server ports
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.Server.HTTPPort)
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	// At least one source must be enabled or every search fails immediately.
	if !c.Sources.SemanticScholar.Enabled && !c.Sources.OpenAlex.Enabled && !c.Sources.DBLP.Enabled {
		return fmt.Errorf("at least one source must be enabled")
	}

	for name, src := range map[string]SourceConfig{
		"semantic_scholar": c.Sources.SemanticScholar,
		"openalex":         c.Sources.OpenAlex,
		"dblp":             c.Sources.DBLP,
	} {
		if !src.Enabled {
			continue
		}
		if src.RateLimit <= 0 {
			return fmt.Errorf("source %s: rate limit must be positive", name)
		}
		if src.MaxResults <= 0 {
			return fmt.Errorf("source %s: max_results must be positive", name)
		}
	}

	// Validate aggregation config
	if c.Aggregation.TitleSimilarityThreshold < 0 || c.Aggregation.TitleSimilarityThreshold > 1 {
		return fmt.Errorf("title similarity threshold must be between 0 and 1")
	}
	if c.Aggregation.MaxPagesPerSource <= 0 {
		return fmt.Errorf("max_pages_per_source must be positive")
	}

	// Validate cache config
	if c.Cache.Enabled {
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache TTL must be positive")
		}
		if c.Cache.MaxEntries <= 0 {
			return fmt.Errorf("cache max_entries must be positive")
		}
	}

	// Validate scraper config
	if c.Scraper.Enabled {
		if c.Scraper.RequestDelay < 0 {
			return fmt.Errorf("scraper request_delay must not be negative")
		}
		if c.Scraper.MaxConcurrent <= 0 {
			return fmt.Errorf("scraper max_concurrent must be positive")
		}
	}

	return nil
}
