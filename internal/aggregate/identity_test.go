package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scholarscope/professor-search-service/internal/domain"
)

func author(name, affiliation, externalID string) *domain.Author {
	return &domain.Author{
		Name:           name,
		NormalizedName: domain.NormalizeName(name),
		Affiliation:    affiliation,
		ExternalID:     externalID,
	}
}

func TestResolver_SameAuthor(t *testing.T) {
	t.Parallel()
	r := NewResolver(nil)

	tests := []struct {
		name string
		a, b *domain.Author
		want bool
	}{
		{
			name: "equal IDs in same namespace",
			a:    author("Jane Smith", "", "s2:12345"),
			b:    author("J. Smith", "", "s2:12345"),
			want: true,
		},
		{
			name: "different IDs in same namespace",
			a:    author("Jane Smith", "", "s2:12345"),
			b:    author("Jane Smith", "", "s2:99999"),
			want: false,
		},
		{
			name: "cross-namespace IDs fall back to name match",
			a:    author("Jane Smith", "CMU", "s2:12345"),
			b:    author("Jane Smith", "Carnegie Mellon University", "https://orcid.org/0000-0001-2345-6789"),
			want: true,
		},
		{
			name: "name match with compatible affiliations",
			a:    author("Jane Smith", "CMU", ""),
			b:    author("Smith, Jane", "Carnegie Mellon University", ""),
			want: true,
		},
		{
			name: "name match with missing affiliation",
			a:    author("Jane Smith", "", ""),
			b:    author("Jane Smith", "Carnegie Mellon University", ""),
			want: true,
		},
		{
			name: "name match with conflicting affiliations",
			a:    author("Jane Smith", "Massachusetts Institute of Technology", ""),
			b:    author("Jane Smith", "Stanford University", ""),
			want: false,
		},
		{
			name: "different names never match",
			a:    author("Jane Smith", "CMU", ""),
			b:    author("John Smith", "CMU", ""),
			want: false,
		},
		{
			name: "nil author",
			a:    nil,
			b:    author("Jane Smith", "", ""),
			want: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, r.SameAuthor(tt.a, tt.b))
			assert.Equal(t, tt.want, r.SameAuthor(tt.b, tt.a), "must be symmetric")
		})
	}
}

func TestResolver_MatchUniversity(t *testing.T) {
	t.Parallel()
	r := NewResolver(nil)
	officials := []string{"Carnegie Mellon University", "Massachusetts Institute of Technology"}

	tests := []struct {
		name        string
		affiliation string
		wantUni     string
		wantOK      bool
	}{
		{"abbreviation resolves", "CMU", "Carnegie Mellon University", true},
		{"department prefix matches", "School of Computer Science, Carnegie Mellon University", "Carnegie Mellon University", true},
		{"exact official name", "Massachusetts Institute of Technology", "Massachusetts Institute of Technology", true},
		{"unrelated institution", "Stanford University", "", false},
		{"empty affiliation", "", "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			uni, ok := r.MatchUniversity(author("Jane Smith", tt.affiliation, ""), officials)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantUni, uni)
		})
	}
}

func TestResolver_Confidence(t *testing.T) {
	t.Parallel()
	r := NewResolver(nil)

	assert.Equal(t, domain.ConfidenceHigh, r.Confidence(author("Jane Smith", "", "s2:1")))
	assert.Equal(t, domain.ConfidenceNameOnly, r.Confidence(author("Jane Smith", "", "")))
	assert.Equal(t, domain.ConfidenceNameOnly, r.Confidence(nil))
}

func TestResolver_MergeAuthor(t *testing.T) {
	t.Parallel()
	r := NewResolver(nil)

	t.Run("backfills empty fields", func(t *testing.T) {
		t.Parallel()
		canonical := author("Jane Smith", "", "")
		dup := author("Smith, Jane", "Carnegie Mellon University", "s2:1")
		dup.URL = "https://example.org/~jsmith"
		dup.Email = "jsmith@cs.cmu.edu"

		r.MergeAuthor(canonical, dup)

		assert.Equal(t, "Jane Smith", canonical.Name, "keeps canonical name form")
		assert.Equal(t, "Carnegie Mellon University", canonical.Affiliation)
		assert.Equal(t, "s2:1", canonical.ExternalID)
		assert.Equal(t, "https://example.org/~jsmith", canonical.URL)
		assert.Equal(t, "jsmith@cs.cmu.edu", canonical.Email)
	})

	t.Run("ORCID replaces source-local ID", func(t *testing.T) {
		t.Parallel()
		canonical := author("Jane Smith", "", "s2:1")
		dup := author("Jane Smith", "", "https://orcid.org/0000-0001-2345-6789")

		r.MergeAuthor(canonical, dup)
		assert.Equal(t, "https://orcid.org/0000-0001-2345-6789", canonical.ExternalID)
	})

	t.Run("source-local ID never replaces ORCID", func(t *testing.T) {
		t.Parallel()
		canonical := author("Jane Smith", "", "https://orcid.org/0000-0001-2345-6789")
		dup := author("Jane Smith", "", "openalex:A5")

		r.MergeAuthor(canonical, dup)
		assert.Equal(t, "https://orcid.org/0000-0001-2345-6789", canonical.ExternalID)
	})
}
