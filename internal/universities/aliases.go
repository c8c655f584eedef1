// Package universities maps university abbreviations and common names to
// their official names. The sources use inconsistent institution naming, so
// both query input and affiliation strings are expanded through this table
// before comparison. Unknown names pass through unchanged and match
// literally.
package universities

import (
	"sort"
	"strings"
)

// Entry describes one university: its official name plus the variations the
// sources and users are known to use for it.
type Entry struct {
	OfficialName string
	Variations   []string
	Domain       string
}

// AliasTable resolves university name variants to official names. The zero
// value is unusable; construct with NewAliasTable or Default.
type AliasTable struct {
	// byVariant maps normalized variant → official name.
	byVariant map[string]string
	entries   []Entry
}

// NewAliasTable builds a table from the given entries. The official name
// itself is always registered as a variant of itself.
func NewAliasTable(entries []Entry) *AliasTable {
	t := &AliasTable{
		byVariant: make(map[string]string),
		entries:   entries,
	}
	for _, e := range entries {
		t.byVariant[normalize(e.OfficialName)] = e.OfficialName
		for _, v := range e.Variations {
			t.byVariant[normalize(v)] = e.OfficialName
		}
	}
	return t
}

// Expand resolves a single name to its official form, or returns the input
// trimmed when no mapping exists.
func (t *AliasTable) Expand(name string) string {
	if official, ok := t.byVariant[normalize(name)]; ok {
		return official
	}
	return strings.TrimSpace(name)
}

// ExpandAll resolves every name, deduplicates, and returns the result sorted.
// Sorting keeps cache keys and query serialization deterministic.
func (t *AliasTable) ExpandAll(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		official := t.Expand(n)
		if official == "" {
			continue
		}
		if _, ok := seen[official]; ok {
			continue
		}
		seen[official] = struct{}{}
		out = append(out, official)
	}
	sort.Strings(out)
	return out
}

// Matches reports whether an affiliation string refers to the given official
// university name. The affiliation matches when, after expansion, it equals
// the official name, or when either normalized string contains the other
// (affiliations often embed department prefixes such as "School of Computer
// Science, Carnegie Mellon University").
func (t *AliasTable) Matches(affiliation, official string) bool {
	if affiliation == "" || official == "" {
		return false
	}
	expanded := normalize(t.Expand(affiliation))
	target := normalize(official)
	if expanded == target {
		return true
	}
	return strings.Contains(expanded, target) || strings.Contains(target, expanded)
}

// Entries returns the configured entries.
func (t *AliasTable) Entries() []Entry {
	return t.entries
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}

// Default returns the built-in alias table covering the universities the
// service is most commonly queried for.
func Default() *AliasTable {
	return NewAliasTable([]Entry{
		{OfficialName: "Carnegie Mellon University", Variations: []string{"CMU", "Carnegie Mellon", "Carnegie-Mellon"}, Domain: "cmu.edu"},
		{OfficialName: "Massachusetts Institute of Technology", Variations: []string{"MIT", "Mass. Institute of Technology"}, Domain: "mit.edu"},
		{OfficialName: "Stanford University", Variations: []string{"Stanford", "Stanford U"}, Domain: "stanford.edu"},
		{OfficialName: "University of California, Berkeley", Variations: []string{"UC Berkeley", "Berkeley", "UCB", "Cal"}, Domain: "berkeley.edu"},
		{OfficialName: "Harvard University", Variations: []string{"Harvard", "Harvard U"}, Domain: "harvard.edu"},
		{OfficialName: "Princeton University", Variations: []string{"Princeton", "Princeton U"}, Domain: "princeton.edu"},
		{OfficialName: "Cornell University", Variations: []string{"Cornell", "Cornell U"}, Domain: "cornell.edu"},
		{OfficialName: "University of Washington", Variations: []string{"UW", "U Washington", "Washington"}, Domain: "washington.edu"},
		{OfficialName: "Georgia Institute of Technology", Variations: []string{"Georgia Tech", "GT", "GaTech"}, Domain: "gatech.edu"},
		{OfficialName: "University of Illinois Urbana-Champaign", Variations: []string{"UIUC", "Illinois", "U of I"}, Domain: "illinois.edu"},
		{OfficialName: "University of Michigan", Variations: []string{"UMich", "Michigan", "U Michigan"}, Domain: "umich.edu"},
		{OfficialName: "New York University", Variations: []string{"NYU", "New York U"}, Domain: "nyu.edu"},
		{OfficialName: "Columbia University", Variations: []string{"Columbia", "Columbia U"}, Domain: "columbia.edu"},
		{OfficialName: "University of California, San Diego", Variations: []string{"UCSD", "UC San Diego"}, Domain: "ucsd.edu"},
		{OfficialName: "University of California, Los Angeles", Variations: []string{"UCLA", "UC Los Angeles"}, Domain: "ucla.edu"},
		{OfficialName: "ETH Zurich", Variations: []string{"ETH", "ETH Zürich", "Swiss Federal Institute of Technology"}, Domain: "ethz.ch"},
		{OfficialName: "University of Oxford", Variations: []string{"Oxford", "Oxford U"}, Domain: "ox.ac.uk"},
		{OfficialName: "University of Cambridge", Variations: []string{"Cambridge", "Cambridge U"}, Domain: "cam.ac.uk"},
		{OfficialName: "University of Toronto", Variations: []string{"UofT", "Toronto", "U Toronto"}, Domain: "utoronto.ca"},
		{OfficialName: "Yale University", Variations: []string{"Yale", "Yale U"}, Domain: "yale.edu"},
		{OfficialName: "University of Southern California", Variations: []string{"USC", "Southern California"}, Domain: "usc.edu"},
		{OfficialName: "University of Pennsylvania", Variations: []string{"UPenn", "Penn", "U Penn", "Pennsylvania"}, Domain: "upenn.edu"},
		{OfficialName: "Brown University", Variations: []string{"Brown", "Brown U"}, Domain: "brown.edu"},
	})
}
