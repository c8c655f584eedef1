package domain

import (
	"strings"
	"time"
	"unicode"
)

// Disambiguation confidence levels for professor records. Same-name authors
// at the same university cannot be told apart with the signals available from
// the sources, so the confidence of the identity resolution is surfaced
// instead of guessed at.
const (
	// ConfidenceHigh means the identity is backed by a persistent author ID.
	ConfidenceHigh = "high"

	// ConfidenceNameOnly means the identity rests on name + affiliation
	// matching alone and could conflate distinct people.
	ConfidenceNameOnly = "name_only"
)

// RelevanceInfo summarizes how well a professor matches the queried topics.
type RelevanceInfo struct {
	// Score is in [0,1]: 0.6 * fraction of topics matched + 0.4 * paper
	// volume capped at ten relevant papers.
	Score float64 `json:"score"`

	// MatchingTopics is the literal subset of requested topics that matched.
	MatchingTopics []string `json:"matching_topics"`

	// RelevantPapersCount is the number of retained publications authored.
	RelevantPapersCount int `json:"relevant_papers_count"`
}

// Student is a person listed on a scraped lab page. Students always carry
// scrape provenance and never claim API verification.
type Student struct {
	Name   string     `json:"name"`
	Role   string     `json:"role,omitempty"`
	URL    string     `json:"url,omitempty"`
	Source SourceType `json:"source"`
}

// Lab holds the scraped lab-page listing for a professor.
type Lab struct {
	URL      string    `json:"url,omitempty"`
	Students []Student `json:"students"`
}

// ProfessorRecord is an Author promoted to professor status: their resolved
// affiliation matched one of the queried universities and they authored at
// least one retained publication.
type ProfessorRecord struct {
	Author *Author `json:"author"`

	// University is the official (alias-expanded) name of the matched
	// queried university.
	University string `json:"university"`

	Relevance    RelevanceInfo  `json:"relevance"`
	Publications []*Publication `json:"publications"`

	// Lab is populated only when student enrichment ran and succeeded.
	Lab *Lab `json:"lab,omitempty"`

	// DataSources is the union of every source that contributed any field.
	DataSources []SourceType `json:"data_sources"`

	DisambiguationConfidence string `json:"disambiguation_confidence"`

	// LastVerified is the wall-clock time the aggregation ran.
	LastVerified time.Time `json:"last_verified"`
}

// AddDataSource records a contributing source, preserving set semantics.
func (p *ProfessorRecord) AddDataSource(s SourceType) {
	for _, st := range p.DataSources {
		if st == s {
			return
		}
	}
	p.DataSources = append(p.DataSources, s)
}

// NormalizeName normalizes an author name for identity comparison:
// lowercases, reorders "Last, First" to "First Last", drops everything that
// is not a letter or space, and collapses runs of whitespace.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	name = strings.ToLower(name)

	if idx := strings.Index(name, ","); idx >= 0 {
		last := strings.TrimSpace(name[:idx])
		first := strings.TrimSpace(name[idx+1:])
		if first != "" {
			name = first + " " + last
		} else {
			name = last
		}
	}

	var sb strings.Builder
	sb.Grow(len(name))
	prevSpace := false
	for _, r := range name {
		switch {
		case unicode.IsLetter(r):
			sb.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r):
			if !prevSpace && sb.Len() > 0 {
				sb.WriteRune(' ')
				prevSpace = true
			}
		}
	}

	return strings.TrimRight(sb.String(), " ")
}
