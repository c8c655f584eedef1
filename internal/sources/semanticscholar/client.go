package semanticscholar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/scholarscope/professor-search-service/internal/domain"
	"github.com/scholarscope/professor-search-service/internal/sources"
)

const (
	// DefaultBaseURL is the base URL for the Semantic Scholar Graph API.
	DefaultBaseURL = "https://api.semanticscholar.org/graph/v1"

	// DefaultRateLimit is the unauthenticated rate limit. With an API key
	// the limit can be raised via configuration.
	DefaultRateLimit = 1.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 2

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxResults is the maximum page size the search endpoint allows.
	DefaultMaxResults = 100

	// apiKeyHeader carries the Semantic Scholar API key.
	apiKeyHeader = "x-api-key"

	// paperFields lists the fields requested per paper. Author affiliations
	// are needed for professor promotion downstream.
	paperFields = "paperId,externalIds,title,abstract,year,venue,url,citationCount,authors.authorId,authors.name,authors.url,authors.affiliations"

	// sourceName is the human-readable name for this source.
	sourceName = "Semantic Scholar"
)

// Config contains configuration options for the Semantic Scholar client.
type Config struct {
	// BaseURL defaults to DefaultBaseURL if empty.
	BaseURL string

	// APIKey enables authenticated requests with higher rate limits.
	APIKey string

	// Timeout defaults to DefaultTimeout if zero.
	Timeout time.Duration

	// RateLimit defaults to DefaultRateLimit if zero.
	RateLimit float64

	// BurstSize defaults to DefaultBurstSize if zero.
	BurstSize int

	// MaxResults defaults to DefaultMaxResults if zero.
	MaxResults int

	// Enabled indicates whether this source participates in searches.
	Enabled bool
}

// Client implements the sources.Source interface for Semantic Scholar.
type Client struct {
	httpClient *sources.HTTPClient
	config     Config
}

// Compile-time check that Client implements sources.Source.
var _ sources.Source = (*Client)(nil)

// NewClient creates a Semantic Scholar client. If httpClient is nil one is
// created from the configuration.
func NewClient(cfg Config, httpClient *sources.HTTPClient) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	if cfg.BurstSize == 0 {
		cfg.BurstSize = DefaultBurstSize
	}
	if cfg.MaxResults == 0 {
		cfg.MaxResults = DefaultMaxResults
	}

	if httpClient == nil {
		httpClient = sources.NewHTTPClient(sources.HTTPClientConfig{
			Source:       domain.SourceTypeSemanticScholar,
			Timeout:      cfg.Timeout,
			RateLimit:    cfg.RateLimit,
			BurstSize:    cfg.BurstSize,
			APIKey:       cfg.APIKey,
			APIKeyHeader: apiKeyHeader,
		})
	}

	return &Client{httpClient: httpClient, config: cfg}
}

// Search fetches one page of papers matching the topics. Semantic Scholar
// has no affiliation filter, so university matching happens downstream in
// the identity resolver; the adapter requests author affiliations so the
// resolver has something to match against.
func (c *Client) Search(ctx context.Context, params sources.SearchParams) (*sources.SearchPage, error) {
	start := time.Now()

	searchURL, err := c.buildSearchURL(params)
	if err != nil {
		return nil, &domain.SourceUnavailableError{Source: domain.SourceTypeSemanticScholar, Cause: err}
	}

	resp, err := c.httpClient.Get(ctx, searchURL)
	if err != nil {
		return nil, &domain.SourceUnavailableError{Source: domain.SourceTypeSemanticScholar, Cause: err}
	}
	defer resp.Body.Close()

	if err := c.handleErrorResponse(resp); err != nil {
		return nil, &domain.SourceUnavailableError{Source: domain.SourceTypeSemanticScholar, Cause: err}
	}

	// Limit body to 10MB to prevent resource exhaustion.
	var searchResp SearchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&searchResp); err != nil {
		return nil, &domain.SourceUnavailableError{
			Source: domain.SourceTypeSemanticScholar,
			Cause:  fmt.Errorf("decoding response: %w", err),
		}
	}

	total := searchResp.Total
	return &sources.SearchPage{
		Records:        convertRecords(searchResp.Data),
		NextCursor:     nextCursor(searchResp),
		HasMore:        searchResp.Next > 0,
		TotalCount:     &total,
		Source:         domain.SourceTypeSemanticScholar,
		SearchDuration: time.Since(start),
	}, nil
}

// SourceType returns the source type identifier.
func (c *Client) SourceType() domain.SourceType {
	return domain.SourceTypeSemanticScholar
}

// Name returns the human-readable name for this source.
func (c *Client) Name() string {
	return sourceName
}

// IsEnabled returns whether this source is currently enabled.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

// buildSearchURL constructs the search API URL with query parameters.
func (c *Client) buildSearchURL(params sources.SearchParams) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}

	searchURL := baseURL.JoinPath("paper", "search")

	q := searchURL.Query()
	q.Set("query", strings.Join(params.Topics, " "))
	q.Set("fields", paperFields)

	limit := params.MaxResults
	if limit <= 0 || limit > c.config.MaxResults {
		limit = c.config.MaxResults
	}
	q.Set("limit", strconv.Itoa(limit))

	if params.Cursor != "" {
		q.Set("offset", params.Cursor)
	}

	// The API filters by year range, not exact dates.
	switch {
	case params.YearFrom > 0 && params.YearTo > 0:
		q.Set("year", fmt.Sprintf("%d-%d", params.YearFrom, params.YearTo))
	case params.YearFrom > 0:
		q.Set("year", fmt.Sprintf("%d-", params.YearFrom))
	case params.YearTo > 0:
		q.Set("year", fmt.Sprintf("-%d", params.YearTo))
	}

	if params.MinCitations > 0 {
		q.Set("minCitationCount", strconv.Itoa(params.MinCitations))
	}

	searchURL.RawQuery = q.Encode()
	return searchURL.String(), nil
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
			Source:     domain.SourceTypeSemanticScholar,
			StatusCode: resp.StatusCode,
			Message:    "failed to read error response",
			Cause:      err,
		}
	}

	message := string(body)
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		if errResp.Error != "" {
			message = errResp.Error
		} else if errResp.Message != "" {
			message = errResp.Message
		}
	}

	return &domain.ExternalAPIError{
		Source:     domain.SourceTypeSemanticScholar,
		StatusCode: resp.StatusCode,
		Message:    message,
	}
}

// nextCursor encodes the next offset as an opaque cursor.
func nextCursor(resp SearchResponse) string {
	if resp.Next <= 0 {
		return ""
	}
	return strconv.Itoa(resp.Next)
}

// convertRecords maps API paper results to the uniform raw record shape.
func convertRecords(results []PaperResult) []sources.RawRecord {
	records := make([]sources.RawRecord, 0, len(results))
	for _, r := range results {
		records = append(records, convertRecord(r))
	}
	return records
}

func convertRecord(r PaperResult) sources.RawRecord {
	rec := sources.RawRecord{
		Source:        domain.SourceTypeSemanticScholar,
		Title:         r.Title,
		Abstract:      r.Abstract,
		Year:          r.Year,
		Venue:         r.Venue,
		URL:           r.URL,
		CitationCount: r.CitationCount,
		Identifiers: domain.PublicationIdentifiers{
			SemanticScholarID: r.PaperID,
		},
	}

	if r.ExternalIDs != nil {
		rec.Identifiers.DOI = r.ExternalIDs.DOI
		rec.Identifiers.ArXivID = r.ExternalIDs.ArXiv
		rec.Identifiers.DBLPKey = r.ExternalIDs.DBLP
	}

	for _, a := range r.Authors {
		raw := sources.RawAuthor{
			Name: a.Name,
			URL:  a.URL,
		}
		if a.AuthorID != "" {
			raw.ExternalID = "s2:" + a.AuthorID
		}
		if len(a.Affiliations) > 0 {
			raw.Affiliation = a.Affiliations[0]
		}
		rec.Authors = append(rec.Authors, raw)
	}

	return rec
}
