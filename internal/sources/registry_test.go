package sources

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarscope/professor-search-service/internal/domain"
)

// pagedSource serves a fixed set of pages keyed by cursor. An empty cursor
// serves page 0.
type pagedSource struct {
	sourceType domain.SourceType
	name       string
	pages      []SearchPage
	failAtPage int
	failErr    error
	enabled    bool
}

func (p *pagedSource) Search(_ context.Context, params SearchParams) (*SearchPage, error) {
	idx := 0
	if params.Cursor != "" {
		var err error
		idx, err = strconv.Atoi(params.Cursor)
		if err != nil {
			return nil, err
		}
	}
	if p.failErr != nil && idx == p.failAtPage {
		return nil, p.failErr
	}
	if idx >= len(p.pages) {
		return nil, fmt.Errorf("no such page %d", idx)
	}

	page := p.pages[idx]
	if idx < len(p.pages)-1 {
		page.HasMore = true
		page.NextCursor = strconv.Itoa(idx + 1)
	}
	return &page, nil
}

func (p *pagedSource) SourceType() domain.SourceType { return p.sourceType }
func (p *pagedSource) Name() string                  { return p.name }
func (p *pagedSource) IsEnabled() bool               { return p.enabled }

func makePages(perPage, pageCount, total int) []SearchPage {
	pages := make([]SearchPage, pageCount)
	for i := range pages {
		records := make([]RawRecord, perPage)
		for j := range records {
			records[j] = RawRecord{Title: fmt.Sprintf("Paper %d-%d", i, j)}
		}
		pages[i] = SearchPage{Records: records, TotalCount: &total}
	}
	return pages
}

func TestRegistry_Register(t *testing.T) {
	t.Parallel()

	r := NewRegistry(0)
	src := &pagedSource{sourceType: domain.SourceTypeDBLP, name: "DBLP", enabled: true}
	r.Register(src)

	assert.Equal(t, src, r.Get(domain.SourceTypeDBLP))
	assert.Nil(t, r.Get(domain.SourceTypeOpenAlex))
	assert.Len(t, r.EnabledSources(), 1)
}

func TestRegistry_DisabledSourcesExcluded(t *testing.T) {
	t.Parallel()

	r := NewRegistry(0)
	r.Register(&pagedSource{sourceType: domain.SourceTypeDBLP, name: "DBLP", enabled: false})

	assert.Empty(t, r.EnabledSources())
	assert.Nil(t, r.FetchAll(context.Background(), SearchParams{}))
}

func TestRegistry_FetchAll(t *testing.T) {
	t.Parallel()

	r := NewRegistry(0)
	r.Register(&pagedSource{
		sourceType: domain.SourceTypeSemanticScholar,
		name:       "Semantic Scholar",
		pages:      makePages(10, 3, 30),
		enabled:    true,
	})
	r.Register(&pagedSource{
		sourceType: domain.SourceTypeDBLP,
		name:       "DBLP",
		pages:      makePages(5, 1, 5),
		enabled:    true,
	})

	results := r.FetchAll(context.Background(), SearchParams{Topics: []string{"ml"}})
	require.Len(t, results, 2)

	byType := make(map[domain.SourceType]FetchResult, len(results))
	for _, res := range results {
		byType[res.Source] = res
	}

	s2 := byType[domain.SourceTypeSemanticScholar]
	require.NoError(t, s2.Err)
	assert.Len(t, s2.Records, 30, "pagination drains every page")
	assert.Equal(t, 3, s2.Pages)
	require.NotNil(t, s2.TotalCount)
	assert.Equal(t, 30, *s2.TotalCount)

	dblp := byType[domain.SourceTypeDBLP]
	require.NoError(t, dblp.Err)
	assert.Len(t, dblp.Records, 5)
	assert.Equal(t, 1, dblp.Pages)
}

func TestRegistry_ResultsOrderedBySourceType(t *testing.T) {
	t.Parallel()

	r := NewRegistry(0)
	r.Register(&pagedSource{sourceType: domain.SourceTypeSemanticScholar, name: "Semantic Scholar", pages: makePages(1, 1, 1), enabled: true})
	r.Register(&pagedSource{sourceType: domain.SourceTypeOpenAlex, name: "OpenAlex", pages: makePages(1, 1, 1), enabled: true})
	r.Register(&pagedSource{sourceType: domain.SourceTypeDBLP, name: "DBLP", pages: makePages(1, 1, 1), enabled: true})

	for i := 0; i < 5; i++ {
		results := r.FetchAll(context.Background(), SearchParams{})
		require.Len(t, results, 3)
		for j := 1; j < len(results); j++ {
			assert.LessOrEqual(t, string(results[j-1].Source), string(results[j].Source))
		}
	}
}

func TestRegistry_PartialFailureKeepsRecords(t *testing.T) {
	t.Parallel()

	r := NewRegistry(0)
	r.Register(&pagedSource{
		sourceType: domain.SourceTypeOpenAlex,
		name:       "OpenAlex",
		pages:      makePages(10, 3, 30),
		failAtPage: 2,
		failErr:    errors.New("upstream hiccup"),
		enabled:    true,
	})

	results := r.FetchAll(context.Background(), SearchParams{})
	require.Len(t, results, 1)

	res := results[0]
	require.Error(t, res.Err)
	assert.Len(t, res.Records, 20, "pages fetched before the failure survive")
	assert.Equal(t, 2, res.Pages)
}

func TestRegistry_PageCap(t *testing.T) {
	t.Parallel()

	r := NewRegistry(2)
	r.Register(&pagedSource{
		sourceType: domain.SourceTypeOpenAlex,
		name:       "OpenAlex",
		pages:      makePages(10, 5, 50),
		enabled:    true,
	})

	results := r.FetchAll(context.Background(), SearchParams{})
	require.Len(t, results, 1)

	res := results[0]
	require.NoError(t, res.Err)
	assert.Equal(t, 2, res.Pages, "pagination stops at the configured cap")
	assert.Len(t, res.Records, 20)
	require.NotNil(t, res.TotalCount)
	assert.Equal(t, 50, *res.TotalCount, "the shortfall stays visible for completeness accounting")
}

func TestRegistry_OneSourceFailureDoesNotBlockOthers(t *testing.T) {
	t.Parallel()

	r := NewRegistry(0)
	r.Register(&pagedSource{
		sourceType: domain.SourceTypeSemanticScholar,
		name:       "Semantic Scholar",
		failAtPage: 0,
		failErr:    errors.New("down"),
		enabled:    true,
	})
	r.Register(&pagedSource{
		sourceType: domain.SourceTypeDBLP,
		name:       "DBLP",
		pages:      makePages(3, 1, 3),
		enabled:    true,
	})

	results := r.FetchAll(context.Background(), SearchParams{})
	require.Len(t, results, 2)

	var failed, succeeded int
	for _, res := range results {
		if res.Err != nil {
			failed++
		} else {
			succeeded++
			assert.Len(t, res.Records, 3)
		}
	}
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, succeeded)
}
