package sources

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/scholarscope/professor-search-service/internal/domain"
)

// DefaultMaxPages bounds pagination per source so a pathological total
// cannot keep a run alive indefinitely. A source truncated at the page cap
// reports incomplete through its fetched-vs-total accounting.
const DefaultMaxPages = 20

// FetchResult holds everything one source produced for a run: all records
// fetched across pages, the source-reported total, and the error that ended
// pagination early, if any. Records and Err can both be set when pagination
// failed partway through.
type FetchResult struct {
	Source  domain.SourceType
	Name    string
	Records []RawRecord

	// TotalCount is the source-reported total, nil when unknown.
	TotalCount *int

	// Pages is the number of pages fetched.
	Pages int

	// Duration is the wall-clock time the fetch took, pagination included.
	Duration time.Duration

	Err error
}

// Registry manages the configured sources and coordinates concurrent,
// fully-paginated fetches across them. Thread-safe.
type Registry struct {
	mu       sync.RWMutex
	sources  map[domain.SourceType]Source
	maxPages int
}

// NewRegistry creates an empty registry. maxPages bounds pagination per
// source; zero uses DefaultMaxPages.
func NewRegistry(maxPages int) *Registry {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return &Registry{
		sources:  make(map[domain.SourceType]Source),
		maxPages: maxPages,
	}
}

// Register adds a source, replacing any previous source of the same type.
func (r *Registry) Register(source Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[source.SourceType()] = source
}

// Get returns a source by type, or nil.
func (r *Registry) Get(sourceType domain.SourceType) Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sources[sourceType]
}

// EnabledSources returns a snapshot of the enabled sources.
func (r *Registry) EnabledSources() []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Source, 0, len(r.sources))
	for _, s := range r.sources {
		if s.IsEnabled() {
			out = append(out, s)
		}
	}
	return out
}

// FetchAll runs a fully-paginated fetch against every enabled source
// concurrently and waits for all of them. No source failure blocks the
// others; each source's outcome, success, partial, or failure, lands in its
// own FetchResult. Results are ordered by source type so downstream
// processing is deterministic regardless of completion order.
func (r *Registry) FetchAll(ctx context.Context, params SearchParams) []FetchResult {
	enabled := r.EnabledSources()
	if len(enabled) == 0 {
		return nil
	}

	resultCh := make(chan FetchResult, len(enabled))
	var wg sync.WaitGroup

	for _, src := range enabled {
		wg.Add(1)
		go func(s Source) {
			defer wg.Done()
			resultCh <- r.fetchSource(ctx, s, params)
		}(src)
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]FetchResult, 0, len(enabled))
	for res := range resultCh {
		results = append(results, res)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Source < results[j].Source
	})
	return results
}

// fetchSource pages through one source until it reports no more results, the
// page cap is hit, or a page fails. A failure after at least one successful
// page keeps the partial records alongside the error.
func (r *Registry) fetchSource(ctx context.Context, s Source, params SearchParams) (result FetchResult) {
	start := time.Now()
	defer func() { result.Duration = time.Since(start) }()

	result = FetchResult{
		Source: s.SourceType(),
		Name:   s.Name(),
	}

	cursor := ""
	for page := 0; page < r.maxPages; page++ {
		pageParams := params
		pageParams.Cursor = cursor

		sp, err := s.Search(ctx, pageParams)
		if err != nil {
			result.Err = err
			return result
		}

		result.Records = append(result.Records, sp.Records...)
		result.Pages++
		if sp.TotalCount != nil {
			result.TotalCount = sp.TotalCount
		}

		if !sp.HasMore || sp.NextCursor == "" {
			return result
		}
		cursor = sp.NextCursor
	}

	return result
}
