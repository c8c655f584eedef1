// Package scraper extracts lab membership from professor and lab web pages.
//
// Scraping is best-effort enrichment: pages are fetched politely (one request
// at a time per scraper with a fixed delay), parsed leniently, and any failure
// surfaces as a ScrapeFailedError the caller degrades on. Scraped people are
// tagged with scrape provenance and never claim API verification.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/scholarscope/professor-search-service/internal/domain"
	"github.com/scholarscope/professor-search-service/internal/observability"
)

const (
	// DefaultTimeout bounds a single page fetch.
	DefaultTimeout = 15 * time.Second

	// DefaultRequestDelay is the politeness delay between consecutive
	// fetches.
	DefaultRequestDelay = 2 * time.Second

	// DefaultMaxStudents caps how many people are extracted per lab.
	DefaultMaxStudents = 30

	// DefaultMaxConcurrent bounds concurrent scrape operations.
	DefaultMaxConcurrent = 3

	// DefaultUserAgent identifies the scraper to web servers.
	DefaultUserAgent = "ScholarScope-ProfessorSearch/1.0 (academic research tool)"

	// maxBodySize limits parsed page bodies.
	maxBodySize = 5 << 20
)

// peopleLinkTerms mark links that plausibly lead to a lab's member listing.
var peopleLinkTerms = []string{"people", "team", "members", "students", "group", "lab"}

// rolePatterns map page text to student roles, most specific first.
var rolePatterns = []struct {
	re   *regexp.Regexp
	role string
}{
	{regexp.MustCompile(`(?i)ph\.?\s?d\.?\s*(student|candidate)`), "PhD Student"},
	{regexp.MustCompile(`(?i)post[-\s]?doc(toral)?(\s+(fellow|researcher|scholar))?`), "Postdoc"},
	{regexp.MustCompile(`(?i)(master'?s|m\.?\s?s\.?|m\.?\s?sc\.?)\s*student`), "MS Student"},
	{regexp.MustCompile(`(?i)graduate\s+student`), "Graduate Student"},
	{regexp.MustCompile(`(?i)undergrad(uate)?(\s+(student|researcher))?`), "Undergraduate"},
}

// namePattern accepts two to four capitalized words with common name
// punctuation.
var namePattern = regexp.MustCompile(`^[A-Z][\pL.'-]*(\s+[A-Z][\pL.'-]*){1,3}$`)

// Config holds scraper tunables.
type Config struct {
	// Timeout per page fetch; zero uses DefaultTimeout.
	Timeout time.Duration

	// RequestDelay between consecutive fetches; zero uses
	// DefaultRequestDelay.
	RequestDelay time.Duration

	// MaxStudents caps extraction per lab; zero uses DefaultMaxStudents.
	MaxStudents int

	// MaxConcurrent bounds concurrent scrapes; zero uses
	// DefaultMaxConcurrent.
	MaxConcurrent int64

	// UserAgent sent with every request; empty uses DefaultUserAgent.
	UserAgent string
}

// LabScraper fetches and parses lab pages. Safe for concurrent use; the
// politeness delay serializes actual fetches.
type LabScraper struct {
	config  Config
	client  *http.Client
	sem     *semaphore.Weighted
	metrics *observability.Metrics
	logger  zerolog.Logger

	mu          sync.Mutex
	lastRequest time.Time
}

// New creates a scraper. metrics may be nil. A nil httpClient uses a default
// client with the configured timeout.
func New(cfg Config, httpClient *http.Client, metrics *observability.Metrics, logger zerolog.Logger) *LabScraper {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestDelay <= 0 {
		cfg.RequestDelay = DefaultRequestDelay
	}
	if cfg.MaxStudents <= 0 {
		cfg.MaxStudents = DefaultMaxStudents
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultMaxConcurrent
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &LabScraper{
		config:  cfg,
		client:  httpClient,
		sem:     semaphore.NewWeighted(cfg.MaxConcurrent),
		metrics: metrics,
		logger:  logger,
	}
}

// Enrich scrapes the page at homepageURL for lab members. When the page links
// to a people/team listing, that listing is scraped instead of the homepage
// itself.
func (s *LabScraper) Enrich(ctx context.Context, homepageURL string) (*domain.Lab, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, &domain.ScrapeFailedError{URL: homepageURL, Cause: err}
	}
	defer s.sem.Release(1)

	lab, err := s.enrich(ctx, homepageURL)
	if s.metrics != nil {
		s.metrics.RecordScrape(err)
	}
	return lab, err
}

func (s *LabScraper) enrich(ctx context.Context, homepageURL string) (*domain.Lab, error) {
	logger := s.logger
	if runID := observability.RunIDFromContext(ctx); runID != "" {
		logger = logger.With().Str("run_id", runID).Logger()
	}

	doc, err := s.fetch(ctx, homepageURL)
	if err != nil {
		return nil, &domain.ScrapeFailedError{URL: homepageURL, Cause: err}
	}

	pageURL := homepageURL
	if peopleURL := s.findPeopleLink(doc, homepageURL); peopleURL != "" && peopleURL != homepageURL {
		if peopleDoc, err := s.fetch(ctx, peopleURL); err == nil {
			doc = peopleDoc
			pageURL = peopleURL
		} else {
			logger.Debug().Err(err).Str("url", peopleURL).Msg("people page fetch failed, using homepage")
		}
	}

	students := s.extractStudents(doc, pageURL)
	logger.Debug().
		Str("url", pageURL).
		Int("students", len(students)).
		Msg("lab page scraped")

	return &domain.Lab{URL: pageURL, Students: students}, nil
}

// fetch retrieves and parses one page, honoring the politeness delay.
func (s *LabScraper) fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if err := s.waitPoliteness(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", s.config.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}
	return doc, nil
}

// waitPoliteness sleeps until RequestDelay has passed since the last fetch.
func (s *LabScraper) waitPoliteness(ctx context.Context) error {
	s.mu.Lock()
	wait := s.config.RequestDelay - time.Since(s.lastRequest)
	if wait < 0 {
		wait = 0
	}
	s.lastRequest = time.Now().Add(wait)
	s.mu.Unlock()

	if wait == 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// findPeopleLink returns the first link whose text or path suggests a member
// listing, resolved against the page URL. Empty when none is found.
func (s *LabScraper) findPeopleLink(doc *goquery.Document, pageURL string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}

	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "mailto:") {
			return true
		}
		text := strings.ToLower(strings.TrimSpace(sel.Text()))
		hrefLower := strings.ToLower(href)
		for _, term := range peopleLinkTerms {
			if strings.Contains(text, term) || strings.Contains(hrefLower, term) {
				ref, err := url.Parse(href)
				if err != nil {
					return true
				}
				resolved := base.ResolveReference(ref)
				if resolved.Scheme != "http" && resolved.Scheme != "https" {
					return true
				}
				found = resolved.String()
				return false
			}
		}
		return true
	})
	return found
}

// extractStudents walks elements that typically hold one person each and
// keeps those whose text carries a student role.
func (s *LabScraper) extractStudents(doc *goquery.Document, pageURL string) []domain.Student {
	base, _ := url.Parse(pageURL)

	seen := make(map[string]struct{})
	var students []domain.Student

	doc.Find("li, tr, p, div").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if len(students) >= s.config.MaxStudents {
			return false
		}

		text := strings.TrimSpace(sel.Text())
		// Person entries are short; long text means we grabbed a container.
		if text == "" || len(text) > 300 {
			return true
		}

		role := matchRole(text)
		if role == "" {
			return true
		}

		name, link := extractName(sel)
		if name == "" {
			return true
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return true
		}
		seen[key] = struct{}{}

		student := domain.Student{
			Name:   name,
			Role:   role,
			Source: domain.SourceTypeLabScrape,
		}
		if link != "" && base != nil {
			if ref, err := url.Parse(link); err == nil {
				student.URL = base.ResolveReference(ref).String()
			}
		}
		students = append(students, student)
		return true
	})

	return students
}

// matchRole returns the role label for the first matching pattern.
func matchRole(text string) string {
	for _, rp := range rolePatterns {
		if rp.re.MatchString(text) {
			return rp.role
		}
	}
	return ""
}

// extractName pulls a person name out of one entry: the first link or bold
// element that looks like a name, falling back to the text before the first
// separator.
func extractName(sel *goquery.Selection) (name, link string) {
	var candidate string
	sel.Find("a, strong, b").EachWithBreak(func(_ int, inner *goquery.Selection) bool {
		text := strings.TrimSpace(inner.Text())
		if namePattern.MatchString(text) {
			candidate = text
			if href, ok := inner.Attr("href"); ok {
				link = href
			}
			return false
		}
		return true
	})
	if candidate != "" {
		return candidate, link
	}

	text := strings.TrimSpace(sel.Text())
	for _, sep := range []string{",", " - ", "–", "(", "|", "\n"} {
		if idx := strings.Index(text, sep); idx > 0 {
			text = text[:idx]
			break
		}
	}
	text = strings.TrimSpace(text)
	if namePattern.MatchString(text) {
		return text, ""
	}
	return "", ""
}
