package openalex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/scholarscope/professor-search-service/internal/domain"
	"github.com/scholarscope/professor-search-service/internal/sources"
)

const (
	// DefaultBaseURL is the OpenAlex API base URL.
	DefaultBaseURL = "https://api.openalex.org"

	// DefaultRateLimit is the polite-pool rate (requires a contact email).
	DefaultRateLimit = 10.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 10

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxResults is the default page size. OpenAlex allows up to 200.
	DefaultMaxResults = 50

	// doiPrefix is the URL prefix OpenAlex uses for DOIs.
	doiPrefix = "https://doi.org/"

	// openAlexIDPrefix is the URL prefix for OpenAlex IDs.
	openAlexIDPrefix = "https://openalex.org/"

	// sourceName is the human-readable name for this source.
	sourceName = "OpenAlex"
)

// Config holds configuration for the OpenAlex client.
type Config struct {
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string

	// Email is the contact address for the polite pool, which grants
	// higher rate limits.
	Email string

	// Timeout defaults to DefaultTimeout.
	Timeout time.Duration

	// RateLimit defaults to DefaultRateLimit.
	RateLimit float64

	// BurstSize defaults to DefaultBurstSize.
	BurstSize int

	// MaxResults defaults to DefaultMaxResults.
	MaxResults int

	// Enabled indicates whether this source participates in searches.
	Enabled bool
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RateLimit == 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.BurstSize == 0 {
		c.BurstSize = DefaultBurstSize
	}
	if c.MaxResults == 0 {
		c.MaxResults = DefaultMaxResults
	}
}

// Client implements the sources.Source interface for OpenAlex.
type Client struct {
	config     Config
	httpClient *sources.HTTPClient
}

// Compile-time check that Client implements sources.Source.
var _ sources.Source = (*Client)(nil)

// NewClient creates an OpenAlex client. If httpClient is nil one is created
// from the configuration.
func NewClient(cfg Config, httpClient *sources.HTTPClient) *Client {
	cfg.applyDefaults()

	if httpClient == nil {
		httpClient = sources.NewHTTPClient(sources.HTTPClientConfig{
			Source:    domain.SourceTypeOpenAlex,
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
			BurstSize: cfg.BurstSize,
		})
	}

	return &Client{config: cfg, httpClient: httpClient}
}

// Search fetches one page of works matching the topics, filtered server-side
// to the queried institutions when any are given. Uses cursor pagination so
// deep result sets do not degrade.
func (c *Client) Search(ctx context.Context, params sources.SearchParams) (*sources.SearchPage, error) {
	start := time.Now()

	searchURL, err := c.buildSearchURL(params)
	if err != nil {
		return nil, &domain.SourceUnavailableError{Source: domain.SourceTypeOpenAlex, Cause: err}
	}

	resp, err := c.httpClient.Get(ctx, searchURL)
	if err != nil {
		return nil, &domain.SourceUnavailableError{Source: domain.SourceTypeOpenAlex, Cause: err}
	}
	defer resp.Body.Close()

	if err := c.handleErrorResponse(resp); err != nil {
		return nil, &domain.SourceUnavailableError{Source: domain.SourceTypeOpenAlex, Cause: err}
	}

	// Limit body to 10MB to prevent resource exhaustion.
	var searchResp SearchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&searchResp); err != nil {
		return nil, &domain.SourceUnavailableError{
			Source: domain.SourceTypeOpenAlex,
			Cause:  fmt.Errorf("decoding response: %w", err),
		}
	}

	total := searchResp.Meta.Count
	return &sources.SearchPage{
		Records:        convertRecords(searchResp.Results),
		NextCursor:     searchResp.Meta.NextCursor,
		HasMore:        searchResp.Meta.NextCursor != "" && len(searchResp.Results) > 0,
		TotalCount:     &total,
		Source:         domain.SourceTypeOpenAlex,
		SearchDuration: time.Since(start),
	}, nil
}

// SourceType returns the source type identifier.
func (c *Client) SourceType() domain.SourceType {
	return domain.SourceTypeOpenAlex
}

// Name returns the human-readable name for this source.
func (c *Client) Name() string {
	return sourceName
}

// IsEnabled returns whether this source is currently enabled.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

// buildSearchURL constructs the works URL with search, filter, and cursor
// parameters.
func (c *Client) buildSearchURL(params sources.SearchParams) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}

	worksURL := baseURL.JoinPath("works")

	q := worksURL.Query()
	q.Set("search", strings.Join(params.Topics, " OR "))

	var filters []string
	if len(params.Universities) > 0 {
		// Institution display-name search accepts pipe-separated values.
		filters = append(filters,
			"authorships.institutions.display_name.search:"+strings.Join(params.Universities, "|"))
	}
	if params.YearFrom > 0 {
		filters = append(filters, "from_publication_date:"+fmt.Sprintf("%d-01-01", params.YearFrom))
	}
	if params.YearTo > 0 {
		filters = append(filters, "to_publication_date:"+fmt.Sprintf("%d-12-31", params.YearTo))
	}
	if params.MinCitations > 0 {
		filters = append(filters, "cited_by_count:>"+strconv.Itoa(params.MinCitations-1))
	}
	if len(filters) > 0 {
		q.Set("filter", strings.Join(filters, ","))
	}

	limit := params.MaxResults
	if limit <= 0 || limit > c.config.MaxResults {
		limit = c.config.MaxResults
	}
	q.Set("per-page", strconv.Itoa(limit))

	cursor := params.Cursor
	if cursor == "" {
		cursor = "*"
	}
	q.Set("cursor", cursor)

	if c.config.Email != "" {
		q.Set("mailto", c.config.Email)
	}

	worksURL.RawQuery = q.Encode()
	return worksURL.String(), nil
}

// handleErrorResponse checks for API errors and returns typed errors.
func (c *Client) handleErrorResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// Limit error bodies to 1MB.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &domain.ExternalAPIError{
			Source:     domain.SourceTypeOpenAlex,
			StatusCode: resp.StatusCode,
			Message:    "failed to read error response",
			Cause:      err,
		}
	}

	message := string(body)
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		if errResp.Message != "" {
			message = errResp.Message
		} else if errResp.Error != "" {
			message = errResp.Error
		}
	}

	return &domain.ExternalAPIError{
		Source:     domain.SourceTypeOpenAlex,
		StatusCode: resp.StatusCode,
		Message:    message,
	}
}

// convertRecords maps works to the uniform raw record shape.
func convertRecords(works []Work) []sources.RawRecord {
	records := make([]sources.RawRecord, 0, len(works))
	for _, w := range works {
		records = append(records, convertRecord(w))
	}
	return records
}

func convertRecord(w Work) sources.RawRecord {
	title := w.Title
	if title == "" {
		title = w.DisplayName
	}

	rec := sources.RawRecord{
		Source:        domain.SourceTypeOpenAlex,
		Title:         title,
		Year:          w.PublicationYear,
		Abstract:      reconstructAbstract(w.AbstractInvertedIndex),
		CitationCount: w.CitedByCount,
		Identifiers: domain.PublicationIdentifiers{
			DOI:        normalizeDOI(w.DOI),
			OpenAlexID: shortOpenAlexID(w.ID),
		},
	}

	if w.PrimaryLocation != nil {
		rec.URL = w.PrimaryLocation.LandingPage
		if w.PrimaryLocation.Source != nil {
			rec.Venue = w.PrimaryLocation.Source.DisplayName
		}
	}
	if rec.URL == "" && w.DOI != "" {
		rec.URL = w.DOI
	}

	for _, as := range w.Authorships {
		raw := sources.RawAuthor{Name: as.Author.DisplayName}
		switch {
		case as.Author.Orcid != "":
			raw.ExternalID = as.Author.Orcid
		case as.Author.ID != "":
			raw.ExternalID = "openalex:" + shortOpenAlexID(as.Author.ID)
		}
		if len(as.Institutions) > 0 {
			raw.Affiliation = as.Institutions[0].DisplayName
		}
		rec.Authors = append(rec.Authors, raw)
	}

	return rec
}

// normalizeDOI strips URL prefixes from DOIs and lowercases them.
func normalizeDOI(doi string) string {
	if doi == "" {
		return ""
	}
	doi = strings.TrimSpace(doi)
	doi = strings.TrimPrefix(doi, doiPrefix)
	doi = strings.TrimPrefix(doi, "http://doi.org/")
	doi = strings.TrimPrefix(doi, "doi:")
	return strings.ToLower(strings.TrimSpace(doi))
}

// shortOpenAlexID extracts the short ID (e.g. "W2741809807") from the full
// OpenAlex URL form.
func shortOpenAlexID(id string) string {
	return strings.TrimPrefix(strings.TrimSpace(id), openAlexIDPrefix)
}

// reconstructAbstract rebuilds abstract text from OpenAlex's inverted index,
// which maps each word to the list of positions it occupies.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}

	// Guard against pathological payloads with excessive position entries.
	const maxAbstractWords = 100_000
	totalPairs := 0
	for _, positions := range invertedIndex {
		totalPairs += len(positions)
	}
	if totalPairs > maxAbstractWords {
		return ""
	}

	pairs := make([]posWord, 0, totalPairs)
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].pos < pairs[j].pos })

	words := make([]string, 0, len(pairs))
	for _, p := range pairs {
		words = append(words, p.word)
	}
	return strings.Join(words, " ")
}
