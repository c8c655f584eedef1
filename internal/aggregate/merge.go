package aggregate

import (
	"sort"

	"github.com/agnivade/levenshtein"

	"github.com/scholarscope/professor-search-service/internal/domain"
)

// DefaultTitleSimilarityThreshold is the minimum normalized-title similarity
// for merging records that share no persistent identifier. The 0.90 cutoff
// absorbs punctuation and encoding drift between sources while keeping
// revision papers ("... v2") apart.
const DefaultTitleSimilarityThreshold = 0.90

// Merger deduplicates publications across sources. Records sharing any
// persistent identifier merge unconditionally; records without a shared
// identifier merge when their normalized titles are equal (or similar above
// the threshold with at least one shared author) and their years do not
// conflict.
type Merger struct {
	resolver  *Resolver
	threshold float64
}

// NewMerger creates a merger. A non-positive threshold selects the default.
func NewMerger(resolver *Resolver, threshold float64) *Merger {
	if threshold <= 0 {
		threshold = DefaultTitleSimilarityThreshold
	}
	return &Merger{resolver: resolver, threshold: threshold}
}

// Merge collapses duplicates into canonical publications. The input records
// are consumed: the returned publications reuse and mutate them.
//
// Records are processed in source-priority order so that field conflicts
// resolve the same way regardless of arrival order: the higher-priority
// source's value is already in place when the lower-priority duplicate folds
// in.
func (m *Merger) Merge(pubs []*domain.Publication) []*domain.Publication {
	ordered := make([]*domain.Publication, len(pubs))
	copy(ordered, pubs)
	sort.SliceStable(ordered, func(i, j int) bool {
		pi, pj := recordPriority(ordered[i]), recordPriority(ordered[j])
		if pi != pj {
			return pi < pj
		}
		if ordered[i].NormalizedTitle != ordered[j].NormalizedTitle {
			return ordered[i].NormalizedTitle < ordered[j].NormalizedTitle
		}
		return ordered[i].Identifiers.CanonicalKey() < ordered[j].Identifiers.CanonicalKey()
	})

	var groups []*domain.Publication
	byID := make(map[string]int)

	for _, pub := range ordered {
		target := -1
		for _, key := range pub.Identifiers.AllKeys() {
			if gi, ok := byID[key]; ok {
				target = gi
				break
			}
		}
		if target < 0 {
			target = m.findTitleMatch(groups, pub)
		}

		if target < 0 {
			groups = append(groups, pub)
			target = len(groups) - 1
		} else {
			m.mergeInto(groups[target], pub)
		}

		// Repoint every key of the grown group at it. A record can only join
		// one group per pass, so a bridge record whose identifiers span two
		// already-formed groups folds into the first match and leaves the
		// second group separate. The priority pre-sort keeps this rare, and a
		// residual split is the safe direction.
		for _, key := range groups[target].Identifiers.AllKeys() {
			byID[key] = target
		}
	}

	return groups
}

// findTitleMatch scans existing groups for a title-based duplicate of pub.
func (m *Merger) findTitleMatch(groups []*domain.Publication, pub *domain.Publication) int {
	for gi, g := range groups {
		if !yearsCompatible(g.Year, pub.Year) {
			continue
		}
		if g.NormalizedTitle == pub.NormalizedTitle {
			return gi
		}
		if titleSimilarity(g.NormalizedTitle, pub.NormalizedTitle) >= m.threshold &&
			m.sharesAuthor(g, pub) {
			return gi
		}
	}
	return -1
}

// mergeInto folds src into dst. dst came from an equal or higher priority
// source, so on a direct conflict dst's value stands; absent fields fill in,
// citation counts take the max, and the longer abstract wins.
func (m *Merger) mergeInto(dst, src *domain.Publication) {
	for _, s := range src.Sources {
		dst.AddSource(s)
	}

	if dst.Year == nil {
		dst.Year = src.Year
	}
	if src.CitationCount != nil {
		if dst.CitationCount == nil || *src.CitationCount > *dst.CitationCount {
			dst.CitationCount = src.CitationCount
		}
	}
	if dst.Venue == "" {
		dst.Venue = src.Venue
	}
	if dst.URL == "" {
		dst.URL = src.URL
	}
	if len(src.Abstract) > len(dst.Abstract) {
		dst.Abstract = src.Abstract
	}

	mergeIdentifiers(&dst.Identifiers, src.Identifiers)

	for _, sa := range src.Authors {
		merged := false
		for _, da := range dst.Authors {
			if m.resolver.SameAuthor(da, sa) {
				m.resolver.MergeAuthor(da, sa)
				merged = true
				break
			}
		}
		if !merged {
			dst.Authors = append(dst.Authors, sa)
		}
	}
}

func mergeIdentifiers(dst *domain.PublicationIdentifiers, src domain.PublicationIdentifiers) {
	if dst.DOI == "" {
		dst.DOI = src.DOI
	}
	if dst.ArXivID == "" {
		dst.ArXivID = src.ArXivID
	}
	if dst.SemanticScholarID == "" {
		dst.SemanticScholarID = src.SemanticScholarID
	}
	if dst.OpenAlexID == "" {
		dst.OpenAlexID = src.OpenAlexID
	}
	if dst.DBLPKey == "" {
		dst.DBLPKey = src.DBLPKey
	}
}

// sharesAuthor reports whether the two publications have at least one author
// in common according to the resolver.
func (m *Merger) sharesAuthor(a, b *domain.Publication) bool {
	for _, aa := range a.Authors {
		for _, ba := range b.Authors {
			if m.resolver.SameAuthor(aa, ba) {
				return true
			}
		}
	}
	return false
}

// yearsCompatible treats an absent year as a wildcard. Two present years must
// be equal.
func yearsCompatible(a, b *int) bool {
	if a == nil || b == nil {
		return true
	}
	return *a == *b
}

// titleSimilarity returns 1 - editDistance/maxLen over normalized titles,
// in [0,1].
func titleSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	la, lb := len([]rune(a)), len([]rune(b))
	max := la
	if lb > max {
		max = lb
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(max)
}

// recordPriority orders a record by its best (lowest) source priority.
func recordPriority(p *domain.Publication) int {
	best := int(^uint(0) >> 1)
	for _, s := range p.Sources {
		if pr := s.MergePriority(); pr < best {
			best = pr
		}
	}
	return best
}
