// Package main provides the entry point for the professor search service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scholarscope/professor-search-service/internal/aggregate"
	"github.com/scholarscope/professor-search-service/internal/cache"
	"github.com/scholarscope/professor-search-service/internal/config"
	"github.com/scholarscope/professor-search-service/internal/observability"
	"github.com/scholarscope/professor-search-service/internal/scraper"
	httpserver "github.com/scholarscope/professor-search-service/internal/server/http"
	"github.com/scholarscope/professor-search-service/internal/sources"
	"github.com/scholarscope/professor-search-service/internal/sources/dblp"
	"github.com/scholarscope/professor-search-service/internal/sources/openalex"
	"github.com/scholarscope/professor-search-service/internal/sources/semanticscholar"
	"github.com/scholarscope/professor-search-service/internal/universities"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Set up structured logging.
	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	logger = logger.With().Str("component", "server").Logger()
	logger.Info().Msg("professor-search-service starting")

	// Set up context with graceful shutdown via OS signals.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Set up metrics.
	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(cfg.Metrics.Namespace)
	}

	// Register the configured sources.
	registry := sources.NewRegistry(cfg.Aggregation.MaxPagesPerSource)
	if cfg.Sources.SemanticScholar.Enabled {
		registry.Register(semanticscholar.NewClient(semanticscholar.Config{
			BaseURL:    cfg.Sources.SemanticScholar.BaseURL,
			APIKey:     cfg.Sources.SemanticScholar.APIKey,
			Timeout:    cfg.Sources.SemanticScholar.Timeout,
			RateLimit:  cfg.Sources.SemanticScholar.RateLimit,
			MaxResults: cfg.Sources.SemanticScholar.MaxResults,
			Enabled:    true,
		}, nil))
	}
	if cfg.Sources.OpenAlex.Enabled {
		registry.Register(openalex.NewClient(openalex.Config{
			BaseURL:    cfg.Sources.OpenAlex.BaseURL,
			Email:      cfg.Sources.OpenAlex.Email,
			Timeout:    cfg.Sources.OpenAlex.Timeout,
			RateLimit:  cfg.Sources.OpenAlex.RateLimit,
			MaxResults: cfg.Sources.OpenAlex.MaxResults,
			Enabled:    true,
		}, nil))
	}
	if cfg.Sources.DBLP.Enabled {
		registry.Register(dblp.NewClient(dblp.Config{
			BaseURL:    cfg.Sources.DBLP.BaseURL,
			Timeout:    cfg.Sources.DBLP.Timeout,
			RateLimit:  cfg.Sources.DBLP.RateLimit,
			MaxResults: cfg.Sources.DBLP.MaxResults,
			Enabled:    true,
		}, nil))
	}

	aliases := universities.Default()

	// Lab-page scraper for student enrichment.
	var enricher aggregate.LabEnricher
	if cfg.Scraper.Enabled {
		enricher = scraper.New(scraper.Config{
			Timeout:       cfg.Scraper.Timeout,
			RequestDelay:  cfg.Scraper.RequestDelay,
			MaxStudents:   cfg.Scraper.MaxStudents,
			MaxConcurrent: cfg.Scraper.MaxConcurrent,
			UserAgent:     cfg.Scraper.UserAgent,
		}, nil, metrics, logger)
	}

	// The aggregation engine itself.
	aggregator := aggregate.New(aggregate.Config{
		TitleSimilarityThreshold: cfg.Aggregation.TitleSimilarityThreshold,
		MaxResultsPerSource:      cfg.Aggregation.MaxResultsPerSource,
	}, registry, aliases, enricher, metrics, logger)

	// Result cache in front of the engine.
	var searcher cache.Searcher = aggregator
	var resultCache *cache.SearchCache
	if cfg.Cache.Enabled {
		resultCache = cache.New(cache.Config{
			TTL:        cfg.Cache.TTL,
			MaxEntries: cfg.Cache.MaxEntries,
			Enabled:    true,
		}, aggregator, aliases, metrics, logger)
		searcher = resultCache
	}

	// HTTP server.
	httpCfg := httpserver.Config{
		Address:         cfg.Server.HTTPAddress(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     2 * time.Minute,
		RequestTimeout:  cfg.Server.RequestTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}
	if cfg.Metrics.Enabled {
		httpCfg.MetricsPath = cfg.Metrics.Path
	}

	httpSrv := httpserver.NewServer(httpCfg, searcher, resultCache, registry, metrics, logger)

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown HTTP server: %w", err)
	}

	logger.Info().Msg("professor-search-service stopped")
	return nil
}
