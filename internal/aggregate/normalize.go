// Package aggregate implements the multi-source aggregation core: it
// normalizes raw source records into the canonical schema, resolves author
// identity across sources, deduplicates and merges publications, scores
// relevance against the queried topics, validates completeness, and promotes
// matching authors to professor records.
package aggregate

import (
	"regexp"
	"strings"

	"github.com/scholarscope/professor-search-service/internal/domain"
	"github.com/scholarscope/professor-search-service/internal/sources"
)

// invalidURLPatterns identify links that are search pages or placeholders
// rather than actual paper pages. Such URLs are treated as absent.
var invalidURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)search\?`),
	regexp.MustCompile(`(?i)google\.com/search`),
	regexp.MustCompile(`^#`),
	regexp.MustCompile(`(?i)^javascript:`),
}

// NormalizeRecord maps one raw source record into a canonical Publication
// carrying a single source tag. It is a pure function: no state, no I/O.
//
// Records missing a title or every author fail with MalformedRecordError;
// the caller logs and drops them without aborting the run. Missing numeric
// fields stay absent (nil) rather than zero, since zero is a valid citation
// count.
func NormalizeRecord(rec sources.RawRecord) (*domain.Publication, error) {
	title := strings.TrimSpace(rec.Title)
	if title == "" {
		return nil, &domain.MalformedRecordError{Source: rec.Source, Reason: "missing title"}
	}

	authors := make([]*domain.Author, 0, len(rec.Authors))
	for _, ra := range rec.Authors {
		name := strings.TrimSpace(ra.Name)
		if name == "" {
			continue
		}
		authors = append(authors, &domain.Author{
			Name:           name,
			NormalizedName: domain.NormalizeName(name),
			Affiliation:    strings.TrimSpace(ra.Affiliation),
			ExternalID:     strings.TrimSpace(ra.ExternalID),
			URL:            ra.URL,
		})
	}
	if len(authors) == 0 {
		return nil, &domain.MalformedRecordError{Source: rec.Source, Reason: "no authors"}
	}

	pub := &domain.Publication{
		Title:           title,
		NormalizedTitle: domain.NormalizeTitle(title),
		Venue:           strings.TrimSpace(rec.Venue),
		Abstract:        rec.Abstract,
		Identifiers:     rec.Identifiers,
		Authors:         authors,
		Sources:         []domain.SourceType{rec.Source},
	}

	if isValidPaperURL(rec.URL) {
		pub.URL = rec.URL
	}

	// Copy numeric values into fresh pointers so the canonical record never
	// aliases adapter-owned memory.
	if rec.Year != nil {
		year := *rec.Year
		pub.Year = &year
	}
	if rec.CitationCount != nil {
		count := *rec.CitationCount
		pub.CitationCount = &count
	}

	return pub, nil
}

// isValidPaperURL reports whether a URL plausibly points at a paper page.
func isValidPaperURL(url string) bool {
	if url == "" {
		return false
	}
	for _, p := range invalidURLPatterns {
		if p.MatchString(url) {
			return false
		}
	}
	return true
}
