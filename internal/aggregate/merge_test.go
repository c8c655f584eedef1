package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarscope/professor-search-service/internal/domain"
)

func pub(source domain.SourceType, title string, mutate ...func(*domain.Publication)) *domain.Publication {
	p := &domain.Publication{
		Title:           title,
		NormalizedTitle: domain.NormalizeTitle(title),
		Sources:         []domain.SourceType{source},
	}
	for _, fn := range mutate {
		fn(p)
	}
	return p
}

func withDOI(doi string) func(*domain.Publication) {
	return func(p *domain.Publication) { p.Identifiers.DOI = doi }
}

func withYear(y int) func(*domain.Publication) {
	return func(p *domain.Publication) { p.Year = intp(y) }
}

func withCitations(c int) func(*domain.Publication) {
	return func(p *domain.Publication) { p.CitationCount = intp(c) }
}

func withAuthors(names ...string) func(*domain.Publication) {
	return func(p *domain.Publication) {
		for _, n := range names {
			p.Authors = append(p.Authors, author(n, "", ""))
		}
	}
}

func newTestMerger() *Merger {
	return NewMerger(NewResolver(nil), 0)
}

func TestMerger_SharedDOI(t *testing.T) {
	t.Parallel()
	m := newTestMerger()

	a := pub(domain.SourceTypeSemanticScholar, "Attention Is All You Need",
		withDOI("10.1000/xyz"), withYear(2017), withCitations(40), withAuthors("Ashish Vaswani"))
	a.Venue = "NeurIPS"
	b := pub(domain.SourceTypeOpenAlex, "Attention is all you need.",
		withDOI("10.1000/XYZ"), withYear(2017), withCitations(55), withAuthors("Ashish Vaswani"))
	b.Abstract = "We propose the Transformer architecture."

	merged := m.Merge([]*domain.Publication{a, b})
	require.Len(t, merged, 1)

	got := merged[0]
	assert.ElementsMatch(t, []domain.SourceType{domain.SourceTypeSemanticScholar, domain.SourceTypeOpenAlex}, got.Sources)
	require.NotNil(t, got.CitationCount)
	assert.Equal(t, 55, *got.CitationCount, "citation count takes the max across sources")
	assert.Equal(t, "NeurIPS", got.Venue)
	assert.Equal(t, "We propose the Transformer architecture.", got.Abstract)
	assert.Len(t, got.Authors, 1, "the shared author merges")
}

func TestMerger_SharedDOIOverridesTitleDrift(t *testing.T) {
	t.Parallel()
	m := newTestMerger()

	a := pub(domain.SourceTypeSemanticScholar, "BERT: Pre-training of Deep Bidirectional Transformers",
		withDOI("10.1000/bert"))
	b := pub(domain.SourceTypeDBLP, "BERT",
		withDOI("10.1000/bert"))

	merged := m.Merge([]*domain.Publication{a, b})
	assert.Len(t, merged, 1, "a shared identifier merges regardless of title distance")
}

func TestMerger_ExactTitleAndYear(t *testing.T) {
	t.Parallel()
	m := newTestMerger()

	a := pub(domain.SourceTypeSemanticScholar, "Graph Neural Networks: A Review",
		withYear(2020), withAuthors("Jane Smith"))
	b := pub(domain.SourceTypeDBLP, "Graph Neural Networks: A Review",
		withYear(2020), withAuthors("Bob Jones"))

	merged := m.Merge([]*domain.Publication{a, b})
	require.Len(t, merged, 1)
	assert.Len(t, merged[0].Authors, 2, "distinct authors union")
}

func TestMerger_FuzzyTitleNeedsSharedAuthor(t *testing.T) {
	t.Parallel()
	m := newTestMerger()

	t.Run("near-identical titles with shared author merge", func(t *testing.T) {
		t.Parallel()
		a := pub(domain.SourceTypeSemanticScholar, "Efficient Estimation of Word Representations in Vector Space",
			withYear(2013), withAuthors("Tomas Mikolov"))
		b := pub(domain.SourceTypeDBLP, "Efficient Estimation of Word Representations in Vector Spaces",
			withYear(2013), withAuthors("Tomas Mikolov"))

		assert.Len(t, m.Merge([]*domain.Publication{a, b}), 1)
	})

	t.Run("near-identical titles without shared author stay apart", func(t *testing.T) {
		t.Parallel()
		a := pub(domain.SourceTypeSemanticScholar, "Efficient Estimation of Word Representations in Vector Space",
			withYear(2013), withAuthors("Tomas Mikolov"))
		b := pub(domain.SourceTypeDBLP, "Efficient Estimation of Word Representations in Vector Spaces",
			withYear(2013), withAuthors("Alice Chen"))

		assert.Len(t, m.Merge([]*domain.Publication{a, b}), 2)
	})

	t.Run("dissimilar titles stay apart", func(t *testing.T) {
		t.Parallel()
		a := pub(domain.SourceTypeSemanticScholar, "A Survey of Transfer Learning",
			withYear(2020), withAuthors("Jane Smith"))
		b := pub(domain.SourceTypeDBLP, "A Survey of Federated Learning",
			withYear(2020), withAuthors("Jane Smith"))

		assert.Len(t, m.Merge([]*domain.Publication{a, b}), 2)
	})
}

func TestMerger_YearCompatibility(t *testing.T) {
	t.Parallel()
	m := newTestMerger()

	t.Run("conflicting years prevent a title merge", func(t *testing.T) {
		t.Parallel()
		a := pub(domain.SourceTypeSemanticScholar, "Deep Residual Learning", withYear(2015), withAuthors("Kaiming He"))
		b := pub(domain.SourceTypeDBLP, "Deep Residual Learning", withYear(2016), withAuthors("Kaiming He"))

		assert.Len(t, m.Merge([]*domain.Publication{a, b}), 2)
	})

	t.Run("an absent year is a wildcard", func(t *testing.T) {
		t.Parallel()
		a := pub(domain.SourceTypeSemanticScholar, "Deep Residual Learning", withYear(2015), withAuthors("Kaiming He"))
		b := pub(domain.SourceTypeDBLP, "Deep Residual Learning", withAuthors("Kaiming He"))

		merged := m.Merge([]*domain.Publication{a, b})
		require.Len(t, merged, 1)
		require.NotNil(t, merged[0].Year)
		assert.Equal(t, 2015, *merged[0].Year, "the known year fills in")
	})
}

func TestMerger_IdentifierBackfill(t *testing.T) {
	t.Parallel()
	m := newTestMerger()

	a := pub(domain.SourceTypeSemanticScholar, "Language Models are Few-Shot Learners",
		withYear(2020), withAuthors("Tom Brown"))
	a.Identifiers.SemanticScholarID = "s2abc"
	b := pub(domain.SourceTypeOpenAlex, "Language Models are Few-Shot Learners",
		withYear(2020), withDOI("10.1000/gpt3"), withAuthors("Tom Brown"))
	b.Identifiers.OpenAlexID = "W123"

	merged := m.Merge([]*domain.Publication{a, b})
	require.Len(t, merged, 1)
	assert.Equal(t, "10.1000/gpt3", merged[0].Identifiers.DOI)
	assert.Equal(t, "s2abc", merged[0].Identifiers.SemanticScholarID)
	assert.Equal(t, "W123", merged[0].Identifiers.OpenAlexID)
}

func TestMerger_OrderIndependence(t *testing.T) {
	t.Parallel()
	m := newTestMerger()

	build := func() []*domain.Publication {
		s2 := pub(domain.SourceTypeSemanticScholar, "ImageNet Classification with Deep CNNs",
			withDOI("10.1000/alexnet"), withYear(2012), withCitations(100), withAuthors("Alex Krizhevsky"))
		s2.Venue = "NIPS"
		oa := pub(domain.SourceTypeOpenAlex, "ImageNet Classification with Deep CNNs",
			withDOI("10.1000/alexnet"), withYear(2012), withCitations(120), withAuthors("Alex Krizhevsky"))
		oa.Venue = "Advances in Neural Information Processing Systems"
		dblp := pub(domain.SourceTypeDBLP, "ImageNet Classification with Deep CNNs",
			withYear(2012), withAuthors("Alex Krizhevsky"))
		dblp.Venue = "NIPS (proceedings)"
		return []*domain.Publication{s2, oa, dblp}
	}

	forward := m.Merge(build())
	in := build()
	reversed := m.Merge([]*domain.Publication{in[2], in[1], in[0]})

	require.Len(t, forward, 1)
	require.Len(t, reversed, 1)
	assert.Equal(t, forward[0].Venue, reversed[0].Venue, "conflict winner does not depend on arrival order")
	assert.Equal(t, "NIPS", forward[0].Venue, "the higher-priority source wins the venue")
	assert.Equal(t, *forward[0].CitationCount, *reversed[0].CitationCount)
	assert.Equal(t, 120, *forward[0].CitationCount)
}

func TestMerger_IdentifierChaining(t *testing.T) {
	t.Parallel()
	m := newTestMerger()

	// a and b share a DOI; b and c share an arXiv ID. All three are one paper.
	a := pub(domain.SourceTypeSemanticScholar, "Chained Paper", withDOI("10.1000/chain"), withAuthors("Jane Smith"))
	b := pub(domain.SourceTypeOpenAlex, "Chained Paper (preprint)", withDOI("10.1000/chain"), withAuthors("Jane Smith"))
	b.Identifiers.ArXivID = "2101.00001"
	c := pub(domain.SourceTypeDBLP, "Totally Different Listing Title", withAuthors("Jane Smith"))
	c.Identifiers.ArXivID = "2101.00001"

	merged := m.Merge([]*domain.Publication{a, b, c})
	assert.Len(t, merged, 1)
}

func TestTitleSimilarity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.0, titleSimilarity("same title", "same title"))
	assert.Equal(t, 0.0, titleSimilarity("", "anything"))
	assert.Greater(t, titleSimilarity("a survey of transfer learning", "a survey of transfer learning."), 0.9)
	assert.Less(t, titleSimilarity("graph networks", "quantum chemistry"), 0.5)
}
