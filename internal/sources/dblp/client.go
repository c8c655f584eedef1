package dblp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/scholarscope/professor-search-service/internal/domain"
	"github.com/scholarscope/professor-search-service/internal/sources"
)

const (
	// DefaultBaseURL is the DBLP API base URL.
	DefaultBaseURL = "https://dblp.org"

	// DefaultRateLimit keeps to DBLP's request of at most one request per
	// second.
	DefaultRateLimit = 1.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 1

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxResults is the default page size. DBLP allows up to 1000.
	DefaultMaxResults = 100

	// dblpAuthorURL is the base for persistent author pages.
	dblpAuthorURL = "https://dblp.org/pid/"

	// sourceName is the human-readable name for this source.
	sourceName = "DBLP"
)

// Config holds configuration for the DBLP client.
type Config struct {
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string

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

// Client implements the sources.Source interface for DBLP.
type Client struct {
	config     Config
	httpClient *sources.HTTPClient
}

// Compile-time check that Client implements sources.Source.
var _ sources.Source = (*Client)(nil)

// NewClient creates a DBLP client. If httpClient is nil one is created from
// the configuration.
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
			Source:    domain.SourceTypeDBLP,
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
			BurstSize: cfg.BurstSize,
		})
	}

	return &Client{config: cfg, httpClient: httpClient}
}

// Search fetches one page of publications matching the topics. DBLP has no
// affiliation filter, so Universities is ignored; the identity resolver
// cross-references DBLP authors against professors found in other sources.
func (c *Client) Search(ctx context.Context, params sources.SearchParams) (*sources.SearchPage, error) {
	start := time.Now()

	searchURL, err := c.buildSearchURL(params)
	if err != nil {
		return nil, &domain.SourceUnavailableError{Source: domain.SourceTypeDBLP, Cause: err}
	}

	resp, err := c.httpClient.Get(ctx, searchURL)
	if err != nil {
		return nil, &domain.SourceUnavailableError{Source: domain.SourceTypeDBLP, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, &domain.SourceUnavailableError{
			Source: domain.SourceTypeDBLP,
			Cause: &domain.ExternalAPIError{
				Source:     domain.SourceTypeDBLP,
				StatusCode: resp.StatusCode,
				Message:    string(body),
			},
		}
	}

	// Limit body to 10MB to prevent resource exhaustion.
	var searchResp SearchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&searchResp); err != nil {
		return nil, &domain.SourceUnavailableError{
			Source: domain.SourceTypeDBLP,
			Cause:  fmt.Errorf("decoding response: %w", err),
		}
	}

	hits := searchResp.Result.Hits
	page := &sources.SearchPage{
		Records:        convertRecords(hits.Hit),
		Source:         domain.SourceTypeDBLP,
		SearchDuration: time.Since(start),
	}

	// DBLP encodes counters as strings; an unparsable total leaves
	// completeness unknown for this source.
	if total, err := strconv.Atoi(hits.Total); err == nil {
		page.TotalCount = &total
		first, _ := strconv.Atoi(hits.First)
		sent, _ := strconv.Atoi(hits.Sent)
		if first+sent < total && sent > 0 {
			page.HasMore = true
			page.NextCursor = strconv.Itoa(first + sent)
		}
	}

	return page, nil
}

// SourceType returns the source type identifier.
func (c *Client) SourceType() domain.SourceType {
	return domain.SourceTypeDBLP
}

// Name returns the human-readable name for this source.
func (c *Client) Name() string {
	return sourceName
}

// IsEnabled returns whether this source is currently enabled.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

// buildSearchURL constructs the publication search URL.
func (c *Client) buildSearchURL(params sources.SearchParams) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}

	searchURL := baseURL.JoinPath("search", "publ", "api")

	limit := params.MaxResults
	if limit <= 0 || limit > c.config.MaxResults {
		limit = c.config.MaxResults
	}

	q := searchURL.Query()
	q.Set("q", strings.Join(params.Topics, " "))
	q.Set("format", "json")
	q.Set("h", strconv.Itoa(limit))
	if params.Cursor != "" {
		q.Set("f", params.Cursor)
	}

	searchURL.RawQuery = q.Encode()
	return searchURL.String(), nil
}

// convertRecords maps hits to the uniform raw record shape. Year filtering
// happens client-side because the search API cannot express it.
func convertRecords(hits []Hit) []sources.RawRecord {
	records := make([]sources.RawRecord, 0, len(hits))
	for _, h := range hits {
		records = append(records, convertRecord(h.Info))
	}
	return records
}

func convertRecord(info Info) sources.RawRecord {
	rec := sources.RawRecord{
		Source: domain.SourceTypeDBLP,
		Title:  strings.TrimSuffix(strings.TrimSpace(info.Title), "."),
		Venue:  string(info.Venue),
		URL:    info.EE,
		Identifiers: domain.PublicationIdentifiers{
			DBLPKey: info.Key,
		},
	}

	if rec.URL == "" {
		rec.URL = info.URL
	}

	if year, err := strconv.Atoi(info.Year); err == nil {
		rec.Year = &year
	}

	for _, a := range info.Authors.Author {
		raw := sources.RawAuthor{Name: a.Text}
		if a.PID != "" {
			raw.ExternalID = "dblp:" + a.PID
			raw.URL = dblpAuthorURL + a.PID
		}
		rec.Authors = append(rec.Authors, raw)
	}

	return rec
}
