package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the professor search service.
// Metrics are organized by subsystem: searches, sources, cache, and scraping.
// All counters and histograms are registered via promauto for automatic
// registration with the default Prometheus registry.
type Metrics struct {
	// SearchesTotal counts aggregation runs, labeled by outcome ("ok",
	// "error").
	SearchesTotal *prometheus.CounterVec

	// SearchDuration observes the end-to-end duration of aggregation runs
	// in seconds.
	SearchDuration prometheus.Histogram

	// IncompleteRuns counts runs whose aggregate completeness check failed.
	IncompleteRuns prometheus.Counter

	// RecordsFetched counts raw records retrieved, labeled by source.
	RecordsFetched *prometheus.CounterVec

	// SourceErrors counts source fetches that ended in failure, labeled by
	// source.
	SourceErrors *prometheus.CounterVec

	// SourceRequestDuration observes per-source fetch duration in seconds.
	SourceRequestDuration *prometheus.HistogramVec

	// DuplicatesMerged counts publications folded into an existing canonical
	// record during deduplication.
	DuplicatesMerged prometheus.Counter

	// ProfessorsPromoted counts authors promoted to professor records.
	ProfessorsPromoted prometheus.Counter

	// CacheHits counts search responses served from cache.
	CacheHits prometheus.Counter

	// CacheMisses counts searches that had to run the full pipeline.
	CacheMisses prometheus.Counter

	// CacheCoalesced counts searches that piggybacked on an identical
	// in-flight run instead of starting their own.
	CacheCoalesced prometheus.Counter

	// ScrapesTotal counts lab-page scrape attempts.
	ScrapesTotal prometheus.Counter

	// ScrapeErrors counts lab-page scrapes that failed.
	ScrapeErrors prometheus.Counter

	// HTTPRequestsTotal counts HTTP requests served, labeled by method, path,
	// and status code.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration observes HTTP request handling duration in seconds,
	// labeled by method and path.
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The namespace is used as a prefix for all metric names. Call once per
// process; promauto registration panics on duplicates.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		SearchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Total number of aggregation runs by outcome",
		}, []string{"status"}),
		SearchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "End-to-end duration of aggregation runs in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		}),
		IncompleteRuns: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "incomplete_runs_total",
			Help:      "Total number of runs that returned incomplete results",
		}),

		RecordsFetched: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_fetched_total",
			Help:      "Total number of raw records fetched by source",
		}, []string{"source"}),
		SourceErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_errors_total",
			Help:      "Total number of failed source fetches by source",
		}, []string{"source"}),
		SourceRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_request_duration_seconds",
			Help:      "Duration of source fetches in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"source"}),

		DuplicatesMerged: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicates_merged_total",
			Help:      "Total number of records merged into canonical publications",
		}),
		ProfessorsPromoted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "professors_promoted_total",
			Help:      "Total number of authors promoted to professor records",
		}),

		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of searches served from cache",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of searches that ran the full pipeline",
		}),
		CacheCoalesced: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_coalesced_total",
			Help:      "Total number of searches coalesced onto an in-flight run",
		}),

		ScrapesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scrapes_total",
			Help:      "Total number of lab-page scrape attempts",
		}),
		ScrapeErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scrape_errors_total",
			Help:      "Total number of failed lab-page scrapes",
		}),

		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests served",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP request handling in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"method", "path"}),
	}
}

// RecordCacheHit records a search served from cache.
func (m *Metrics) RecordCacheHit() {
	m.CacheHits.Inc()
}

// RecordCacheMiss records a search that ran the full pipeline.
func (m *Metrics) RecordCacheMiss() {
	m.CacheMisses.Inc()
}

// RecordCacheCoalesced records a search that joined an in-flight run.
func (m *Metrics) RecordCacheCoalesced() {
	m.CacheCoalesced.Inc()
}

// RecordScrape records a lab-page scrape attempt and its outcome.
func (m *Metrics) RecordScrape(err error) {
	m.ScrapesTotal.Inc()
	if err != nil {
		m.ScrapeErrors.Inc()
	}
}

// RecordSourceFetch records one completed source fetch.
func (m *Metrics) RecordSourceFetch(source string, records int, durationSeconds float64, err error) {
	m.RecordsFetched.WithLabelValues(source).Add(float64(records))
	m.SourceRequestDuration.WithLabelValues(source).Observe(durationSeconds)
	if err != nil {
		m.SourceErrors.WithLabelValues(source).Inc()
	}
}
