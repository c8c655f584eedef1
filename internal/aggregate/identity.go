package aggregate

import (
	"strings"

	"github.com/scholarscope/professor-search-service/internal/domain"
	"github.com/scholarscope/professor-search-service/internal/universities"
)

// Resolver decides whether two author mentions refer to the same person and
// promotes authors affiliated with the queried universities.
//
// Persistent IDs are authoritative: two mentions with IDs from the same
// namespace are the same person exactly when the IDs are equal. IDs from
// different namespaces cannot be compared directly, so resolution falls back
// to normalized-name equality plus affiliation compatibility, the same path
// used when either mention lacks an ID entirely.
type Resolver struct {
	aliases *universities.AliasTable
}

// NewResolver creates a resolver backed by the given alias table.
func NewResolver(aliases *universities.AliasTable) *Resolver {
	if aliases == nil {
		aliases = universities.Default()
	}
	return &Resolver{aliases: aliases}
}

// SameAuthor reports whether two author mentions resolve to the same person.
func (r *Resolver) SameAuthor(a, b *domain.Author) bool {
	if a == nil || b == nil {
		return false
	}

	if a.ExternalID != "" && b.ExternalID != "" {
		if idNamespace(a.ExternalID) == idNamespace(b.ExternalID) {
			return a.ExternalID == b.ExternalID
		}
		// Different namespaces: IDs say nothing either way.
	}

	if a.NormalizedName == "" || a.NormalizedName != b.NormalizedName {
		return false
	}
	return r.affiliationsCompatible(a.Affiliation, b.Affiliation)
}

// affiliationsCompatible reports whether two affiliation strings could refer
// to the same institution. A missing affiliation is compatible with anything:
// most sources omit affiliations, and requiring them would split every DBLP
// mention into its own identity.
func (r *Resolver) affiliationsCompatible(a, b string) bool {
	if a == "" || b == "" {
		return true
	}
	ea := r.aliases.Expand(a)
	eb := r.aliases.Expand(b)
	if strings.EqualFold(ea, eb) {
		return true
	}
	return r.aliases.Matches(a, eb) || r.aliases.Matches(b, ea)
}

// MergeAuthor folds fields of a duplicate mention into the canonical author.
// Non-empty fields win over empty ones; the canonical mention keeps its name
// form. ORCID iDs are preferred over source-local author IDs because they are
// source-independent.
func (r *Resolver) MergeAuthor(canonical, dup *domain.Author) {
	if canonical.Affiliation == "" {
		canonical.Affiliation = dup.Affiliation
	}
	if canonical.URL == "" {
		canonical.URL = dup.URL
	}
	if canonical.Email == "" {
		canonical.Email = dup.Email
	}
	switch {
	case canonical.ExternalID == "":
		canonical.ExternalID = dup.ExternalID
	case dup.ExternalID != "" && isORCID(dup.ExternalID) && !isORCID(canonical.ExternalID):
		canonical.ExternalID = dup.ExternalID
	}
}

// MatchUniversity returns the official name of the first queried university
// the author's affiliation resolves to, if any. The universities slice must
// already be alias-expanded to official names.
func (r *Resolver) MatchUniversity(author *domain.Author, officialNames []string) (string, bool) {
	if author == nil || author.Affiliation == "" {
		return "", false
	}
	for _, official := range officialNames {
		if r.aliases.Matches(author.Affiliation, official) {
			return official, true
		}
	}
	return "", false
}

// Confidence reports how firmly the author identity is established.
func (r *Resolver) Confidence(author *domain.Author) string {
	if author != nil && author.ExternalID != "" {
		return domain.ConfidenceHigh
	}
	return domain.ConfidenceNameOnly
}

// idNamespace extracts the namespace of an external author ID. Prefixed IDs
// ("s2:123", "openalex:A5023", "dblp:12/345") use the prefix; ORCID iDs come
// as bare https://orcid.org URLs.
func idNamespace(id string) string {
	if isORCID(id) {
		return "orcid"
	}
	if idx := strings.Index(id, ":"); idx > 0 {
		return id[:idx]
	}
	return ""
}

func isORCID(id string) bool {
	return strings.Contains(id, "orcid.org/")
}
