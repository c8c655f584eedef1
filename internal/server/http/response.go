package httpserver

import (
	"time"

	"github.com/scholarscope/professor-search-service/internal/aggregate"
	"github.com/scholarscope/professor-search-service/internal/domain"
)

// Search response types for JSON serialization.

type searchResponse struct {
	Query      queryResponse         `json:"query"`
	Professors []professorResponse   `json:"professors"`
	Papers     []paperResponse       `json:"papers"`
	Validation domain.ValidationInfo `json:"validation"`
	Metadata   metadataResponse      `json:"metadata"`
}

type queryResponse struct {
	Universities []string `json:"universities"`
	Topics       []string `json:"topics"`
}

type metadataResponse struct {
	RunID          string    `json:"run_id"`
	SourcesQueried []string  `json:"sources_queried"`
	SearchTimeMS   int64     `json:"search_time_ms"`
	Cached         bool      `json:"cached"`
	GeneratedAt    time.Time `json:"generated_at"`
}

type professorResponse struct {
	Name                     string               `json:"name"`
	University               string               `json:"university"`
	Affiliation              string               `json:"affiliation,omitempty"`
	ExternalID               string               `json:"external_id,omitempty"`
	URL                      string               `json:"url,omitempty"`
	Email                    string               `json:"email,omitempty"`
	Relevance                domain.RelevanceInfo `json:"relevance"`
	Papers                   []paperResponse      `json:"papers"`
	Lab                      *labResponse         `json:"lab,omitempty"`
	DataSources              []string             `json:"data_sources"`
	DisambiguationConfidence string               `json:"disambiguation_confidence"`
	LastVerified             time.Time            `json:"last_verified"`
}

type labResponse struct {
	URL      string            `json:"url,omitempty"`
	Students []studentResponse `json:"students"`
}

type studentResponse struct {
	Name   string `json:"name"`
	Role   string `json:"role,omitempty"`
	URL    string `json:"url,omitempty"`
	Source string `json:"source"`
}

type paperResponse struct {
	Title          string           `json:"title"`
	Year           *int             `json:"year,omitempty"`
	Venue          string           `json:"venue,omitempty"`
	URL            string           `json:"url,omitempty"`
	CitationCount  *int             `json:"citation_count,omitempty"`
	DOI            string           `json:"doi,omitempty"`
	ArXivID        string           `json:"arxiv_id,omitempty"`
	Authors        []authorResponse `json:"authors"`
	Sources        []string         `json:"sources"`
	RelevanceScore float64          `json:"relevance_score,omitempty"`
	MatchingTopics []string         `json:"matching_topics,omitempty"`
}

type authorResponse struct {
	Name        string `json:"name"`
	Affiliation string `json:"affiliation,omitempty"`
	ExternalID  string `json:"external_id,omitempty"`
}

// Converter functions

func resultToResponse(res *aggregate.Result) searchResponse {
	professors := make([]professorResponse, 0, len(res.Professors))
	for _, p := range res.Professors {
		professors = append(professors, professorToResponse(p))
	}

	papers := make([]paperResponse, 0, len(res.Papers))
	for _, sp := range res.Papers {
		pr := publicationToResponse(sp.Publication)
		pr.RelevanceScore = sp.RelevanceScore
		pr.MatchingTopics = sp.MatchingTopics
		papers = append(papers, pr)
	}

	// A result assembled before this request started was served from cache.
	cached := time.Since(res.GeneratedAt) > res.SearchTime+time.Second

	return searchResponse{
		Query: queryResponse{
			Universities: res.Universities,
			Topics:       res.Topics,
		},
		Professors: professors,
		Papers:     papers,
		Validation: res.Validation,
		Metadata: metadataResponse{
			RunID:          res.RunID,
			SourcesQueried: res.SourcesQueried,
			SearchTimeMS:   res.SearchTime.Milliseconds(),
			Cached:         cached,
			GeneratedAt:    res.GeneratedAt,
		},
	}
}

func professorToResponse(p *domain.ProfessorRecord) professorResponse {
	papers := make([]paperResponse, 0, len(p.Publications))
	for _, pub := range p.Publications {
		papers = append(papers, publicationToResponse(pub))
	}

	resp := professorResponse{
		Name:                     p.Author.Name,
		University:               p.University,
		Affiliation:              p.Author.Affiliation,
		ExternalID:               p.Author.ExternalID,
		URL:                      p.Author.URL,
		Email:                    p.Author.Email,
		Relevance:                p.Relevance,
		Papers:                   papers,
		DataSources:              sourcesToStrings(p.DataSources),
		DisambiguationConfidence: p.DisambiguationConfidence,
		LastVerified:             p.LastVerified,
	}

	if p.Lab != nil {
		lab := &labResponse{URL: p.Lab.URL, Students: make([]studentResponse, 0, len(p.Lab.Students))}
		for _, st := range p.Lab.Students {
			lab.Students = append(lab.Students, studentResponse{
				Name:   st.Name,
				Role:   st.Role,
				URL:    st.URL,
				Source: string(st.Source),
			})
		}
		resp.Lab = lab
	}

	return resp
}

func publicationToResponse(pub *domain.Publication) paperResponse {
	authors := make([]authorResponse, 0, len(pub.Authors))
	for _, a := range pub.Authors {
		authors = append(authors, authorResponse{
			Name:        a.Name,
			Affiliation: a.Affiliation,
			ExternalID:  a.ExternalID,
		})
	}

	return paperResponse{
		Title:         pub.Title,
		Year:          pub.Year,
		Venue:         pub.Venue,
		URL:           pub.URL,
		CitationCount: pub.CitationCount,
		DOI:           pub.Identifiers.DOI,
		ArXivID:       pub.Identifiers.ArXivID,
		Authors:       authors,
		Sources:       sourcesToStrings(pub.Sources),
	}
}

func sourcesToStrings(in []domain.SourceType) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, string(s))
	}
	return out
}
