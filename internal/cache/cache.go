// Package cache provides a TTL-bounded in-memory result cache for
// aggregation runs. Aggregation is expensive (minutes of rate-limited API
// paging), so identical queries within the TTL are served from memory and
// identical concurrent queries share a single in-flight run.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/scholarscope/professor-search-service/internal/aggregate"
	"github.com/scholarscope/professor-search-service/internal/observability"
	"github.com/scholarscope/professor-search-service/internal/universities"
)

const (
	// DefaultTTL is how long a cached result stays servable. Academic
	// publication data moves slowly; an hour keeps repeat queries cheap
	// without serving visibly outdated citation counts.
	DefaultTTL = time.Hour

	// DefaultMaxEntries bounds the cache size; the LRU evicts beyond it.
	DefaultMaxEntries = 256
)

// Searcher is the operation the cache wraps. Both *aggregate.Aggregator and
// *SearchCache satisfy it, so the cache layers transparently.
type Searcher interface {
	Search(ctx context.Context, q aggregate.Query) (*aggregate.Result, error)
}

// Config holds cache tunables.
type Config struct {
	// TTL after which an entry expires; zero uses DefaultTTL.
	TTL time.Duration

	// MaxEntries bounds the cache; zero uses DefaultMaxEntries.
	MaxEntries int

	// Enabled turns caching off entirely when false.
	Enabled bool
}

// Stats is a point-in-time snapshot of cache effectiveness.
type Stats struct {
	Entries   int    `json:"entries"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Coalesced uint64 `json:"coalesced"`
	TTL       string `json:"ttl"`
}

// SearchCache wraps a Searcher with an expiring LRU and single-flight
// coalescing.
type SearchCache struct {
	inner   Searcher
	aliases *universities.AliasTable
	store   *expirable.LRU[string, *aggregate.Result]
	group   singleflight.Group
	metrics *observability.Metrics
	logger  zerolog.Logger
	ttl     time.Duration
	enabled bool

	hits      atomic.Uint64
	misses    atomic.Uint64
	coalesced atomic.Uint64
}

// New creates a cache in front of inner. metrics may be nil; a nil aliases
// table falls back to the built-in one.
func New(cfg Config, inner Searcher, aliases *universities.AliasTable, metrics *observability.Metrics, logger zerolog.Logger) *SearchCache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	if aliases == nil {
		aliases = universities.Default()
	}
	return &SearchCache{
		inner:   inner,
		aliases: aliases,
		store:   expirable.NewLRU[string, *aggregate.Result](cfg.MaxEntries, nil, cfg.TTL),
		metrics: metrics,
		logger:  logger,
		ttl:     cfg.TTL,
		enabled: cfg.Enabled,
	}
}

// Search serves from cache when a fresh entry exists, otherwise runs the
// wrapped searcher. Concurrent identical queries coalesce onto one run.
//
// A run abandoned by caller cancellation never writes the cache: a partial
// result assembled under a dying context must not be served to anyone else.
func (c *SearchCache) Search(ctx context.Context, q aggregate.Query) (*aggregate.Result, error) {
	if !c.enabled {
		return c.inner.Search(ctx, q)
	}

	key := Key(c.aliases, q)
	if res, ok := c.store.Get(key); ok {
		c.hits.Add(1)
		if c.metrics != nil {
			c.metrics.RecordCacheHit()
		}
		c.logger.Debug().Str("cache_key", key).Msg("cache hit")
		return res, nil
	}

	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.RecordCacheMiss()
	}

	v, err, shared := c.group.Do(key, func() (interface{}, error) {
		res, err := c.inner.Search(ctx, q)
		if err != nil {
			return nil, err
		}
		if ctx.Err() == nil {
			c.store.Add(key, res)
		}
		return res, nil
	})
	if shared {
		c.coalesced.Add(1)
		if c.metrics != nil {
			c.metrics.RecordCacheCoalesced()
		}
	}
	if err != nil {
		return nil, err
	}
	return v.(*aggregate.Result), nil
}

// Stats returns current cache statistics.
func (c *SearchCache) Stats() Stats {
	return Stats{
		Entries:   c.store.Len(),
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Coalesced: c.coalesced.Load(),
		TTL:       c.ttl.String(),
	}
}

// Purge drops every cached entry.
func (c *SearchCache) Purge() {
	c.store.Purge()
}

// Key derives the cache key for a query: a SHA-256 over the canonical query
// form. Universities are alias-expanded and sorted and topics are lowercased
// and sorted, so "CMU, ML" and "machine learning at Carnegie Mellon" submitted
// in any order hit the same entry when they canonicalize identically.
func Key(aliases *universities.AliasTable, q aggregate.Query) string {
	unis := aliases.ExpandAll(q.Universities)

	topics := make([]string, 0, len(q.Topics))
	for _, t := range q.Topics {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			topics = append(topics, t)
		}
	}
	sort.Strings(topics)

	canonical := fmt.Sprintf("u=%s|t=%s|yf=%d|yt=%d|mc=%d|s=%t",
		strings.Join(unis, ";"),
		strings.Join(topics, ";"),
		q.YearFrom, q.YearTo, q.MinCitations, q.IncludeStudents)

	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
