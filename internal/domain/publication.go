// Package domain defines the canonical data model shared by the professor
// search service: publications, authors, professor records, and the
// validation metadata that describes how complete an aggregation run was.
//
// Records in this package are built fresh for each aggregation run and are
// never mutated once the run completes; the result cache holds immutable
// snapshots only.
package domain

import (
	"regexp"
	"strings"
)

// SourceType identifies an external data provider.
type SourceType string

// Known source types.
const (
	// SourceTypeSemanticScholar is the Semantic Scholar Graph API.
	SourceTypeSemanticScholar SourceType = "semantic_scholar"

	// SourceTypeOpenAlex is the OpenAlex works API.
	SourceTypeOpenAlex SourceType = "openalex"

	// SourceTypeDBLP is the DBLP publication search API.
	SourceTypeDBLP SourceType = "dblp"

	// SourceTypeLabScrape marks fields obtained by scraping a lab web page.
	// Scraped fields are the lowest-confidence provenance and never override
	// API-sourced values.
	SourceTypeLabScrape SourceType = "lab_website_scrape"
)

// MergePriority orders sources for field-level merging. Sources that carry
// persistent identifiers rank first because their records are least ambiguous.
// Lower values win ties.
func (s SourceType) MergePriority() int {
	switch s {
	case SourceTypeSemanticScholar:
		return 0
	case SourceTypeOpenAlex:
		return 1
	case SourceTypeDBLP:
		return 2
	default:
		return 3
	}
}

// PublicationIdentifiers holds the persistent identifiers a source may attach
// to a publication. Any shared non-empty identifier is authoritative for
// cross-source identity.
type PublicationIdentifiers struct {
	DOI               string `json:"doi,omitempty"`
	ArXivID           string `json:"arxiv_id,omitempty"`
	SemanticScholarID string `json:"semantic_scholar_id,omitempty"`
	OpenAlexID        string `json:"openalex_id,omitempty"`
	DBLPKey           string `json:"dblp_key,omitempty"`
}

// CanonicalKey returns the highest-priority persistent identifier as a
// prefixed key. Priority order: DOI > arXiv > Semantic Scholar > OpenAlex >
// DBLP. Returns empty string when no identifier is present, in which case
// identity falls back to (normalized title, year) matching.
func (ids PublicationIdentifiers) CanonicalKey() string {
	if doi := strings.TrimSpace(ids.DOI); doi != "" {
		return "doi:" + strings.ToLower(doi)
	}
	if arxiv := strings.TrimSpace(ids.ArXivID); arxiv != "" {
		return "arxiv:" + arxiv
	}
	if s2 := strings.TrimSpace(ids.SemanticScholarID); s2 != "" {
		return "s2:" + s2
	}
	if oa := strings.TrimSpace(ids.OpenAlexID); oa != "" {
		return "openalex:" + oa
	}
	if dblp := strings.TrimSpace(ids.DBLPKey); dblp != "" {
		return "dblp:" + dblp
	}
	return ""
}

// AllKeys returns every present identifier as a prefixed key. The merger uses
// the full set so that two records sharing any one identifier collapse even
// when their highest-priority identifiers differ.
func (ids PublicationIdentifiers) AllKeys() []string {
	var keys []string
	if doi := strings.TrimSpace(ids.DOI); doi != "" {
		keys = append(keys, "doi:"+strings.ToLower(doi))
	}
	if arxiv := strings.TrimSpace(ids.ArXivID); arxiv != "" {
		keys = append(keys, "arxiv:"+arxiv)
	}
	if s2 := strings.TrimSpace(ids.SemanticScholarID); s2 != "" {
		keys = append(keys, "s2:"+s2)
	}
	if oa := strings.TrimSpace(ids.OpenAlexID); oa != "" {
		keys = append(keys, "openalex:"+oa)
	}
	if dblp := strings.TrimSpace(ids.DBLPKey); dblp != "" {
		keys = append(keys, "dblp:"+dblp)
	}
	return keys
}

// Author represents one author mention on a publication. Identity across
// sources is established by ExternalID when present, otherwise by
// (NormalizedName, affiliation) fuzzy matching.
type Author struct {
	Name           string `json:"name"`
	NormalizedName string `json:"-"`

	// Affiliation is the institution name as reported by the source,
	// before alias expansion.
	Affiliation string `json:"affiliation,omitempty"`

	// ExternalID is a persistent author identifier (ORCID or a prefixed
	// source author ID such as "s2:12345"). Authoritative when present.
	ExternalID string `json:"external_id,omitempty"`

	URL   string `json:"url,omitempty"`
	Email string `json:"email,omitempty"`
}

// Publication is the canonical merged representation of one paper.
// Sources is never empty: every publication traces to at least one source
// response, and every field value originates from one of those responses.
type Publication struct {
	Title           string                 `json:"title"`
	NormalizedTitle string                 `json:"-"`
	Year            *int                   `json:"year,omitempty"`
	Venue           string                 `json:"venue,omitempty"`
	URL             string                 `json:"url,omitempty"`
	Abstract        string                 `json:"-"`
	CitationCount   *int                   `json:"citation_count,omitempty"`
	Identifiers     PublicationIdentifiers `json:"identifiers,omitempty"`

	// Authors is the ordered union of author mentions across contributing
	// sources. Entries are shared by reference once canonicalized.
	Authors []*Author `json:"authors"`

	// Sources lists every source that contributed at least one field.
	Sources []SourceType `json:"sources"`
}

// HasSource reports whether the given source contributed to this publication.
func (p *Publication) HasSource(s SourceType) bool {
	for _, st := range p.Sources {
		if st == s {
			return true
		}
	}
	return false
}

// AddSource records a contributing source, preserving set semantics.
func (p *Publication) AddSource(s SourceType) {
	if !p.HasSource(s) {
		p.Sources = append(p.Sources, s)
	}
}

var (
	htmlTagPattern    = regexp.MustCompile(`<[^>]+>`)
	punctuationRunes  = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	whitespaceCollaps = regexp.MustCompile(`\s+`)
)

// NormalizeTitle prepares a title for identity comparison: strips embedded
// HTML tags, lowercases, converts hyphens to spaces so "atomic-level" and
// "atomic level" compare equal, removes remaining punctuation, and collapses
// whitespace.
func NormalizeTitle(title string) string {
	if title == "" {
		return ""
	}
	t := htmlTagPattern.ReplaceAllString(title, "")
	t = strings.ToLower(t)
	t = strings.ReplaceAll(t, "-", " ")
	t = punctuationRunes.ReplaceAllString(t, "")
	t = whitespaceCollaps.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}
