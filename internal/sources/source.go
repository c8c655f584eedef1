// Package sources defines the adapter contract for external academic data
// providers and the registry that fans a query out across them.
//
// Each provider (Semantic Scholar, OpenAlex, DBLP) implements the Source
// interface. Adapters own their provider's auth, pagination, and rate-limit
// compliance, and surface failures as SourceUnavailableError so the
// aggregator can treat any one source as a partial failure instead of
// aborting the run.
package sources

import (
	"context"
	"time"

	"github.com/scholarscope/professor-search-service/internal/domain"
)

// SearchParams defines one page request against a source.
type SearchParams struct {
	// Topics are the requested research topics. Adapters build their own
	// provider-specific query syntax from them.
	Topics []string

	// Universities are the queried institutions, already alias-expanded to
	// official names. Adapters that support affiliation filtering apply
	// them server-side; DBLP ignores them.
	Universities []string

	// Cursor is the opaque pagination cursor from a previous page, empty
	// for the first page. Its format is source-specific.
	Cursor string

	// MaxResults limits the page size. Zero uses the source default.
	MaxResults int

	// YearFrom and YearTo bound the publication year when non-zero.
	YearFrom int
	YearTo   int

	// MinCitations filters to records with at least this many citations.
	// Zero applies no filter.
	MinCitations int
}

// RawAuthor is an author mention as reported by a source, before
// normalization.
type RawAuthor struct {
	Name        string
	Affiliation string

	// ExternalID is a persistent author identifier when the source provides
	// one (ORCID, or a prefixed source ID such as "s2:1741101").
	ExternalID string

	URL string
}

// RawRecord is one source record mapped to a uniform raw shape. It is
// ephemeral: only the normalizer consumes it, and it is discarded after
// normalization. Numeric fields use pointers so that a missing value is
// distinguishable from a legitimate zero.
type RawRecord struct {
	Source        domain.SourceType
	Title         string
	Authors       []RawAuthor
	Year          *int
	Venue         string
	URL           string
	Abstract      string
	CitationCount *int
	Identifiers   domain.PublicationIdentifiers
}

// SearchPage is one page of results from a source.
type SearchPage struct {
	Records []RawRecord

	// NextCursor fetches the following page. Only meaningful when HasMore.
	NextCursor string

	// HasMore indicates additional results are available.
	HasMore bool

	// TotalCount is the source-reported total matching record count.
	// Nil when the source does not expose one; completeness accounting
	// then treats this source as unknown.
	TotalCount *int

	Source domain.SourceType

	// SearchDuration covers network latency and response parsing.
	SearchDuration time.Duration
}

// Source is the adapter contract every provider client implements.
//
// Implementations must respect context cancellation, self-enforce their
// provider's rate limit, and wrap total failures in SourceUnavailableError
// rather than returning raw transport faults.
type Source interface {
	// Search fetches one page of records matching the parameters.
	Search(ctx context.Context, params SearchParams) (*SearchPage, error)

	// SourceType returns the identifier used for attribution and merging.
	SourceType() domain.SourceType

	// Name returns a human-readable name for logs and warnings.
	Name() string

	// IsEnabled reports whether the source participates in searches. A
	// source may be disabled by configuration or a missing API key.
	IsEnabled() bool
}
