// Package semanticscholar provides a Source adapter for the Semantic Scholar
// Graph API.
//
// API documentation: https://api.semanticscholar.org/api-docs/graph
package semanticscholar

// SearchResponse is the top-level response from the paper search endpoint.
type SearchResponse struct {
	Total  int           `json:"total"`
	Offset int           `json:"offset"`
	Next   int           `json:"next"`
	Data   []PaperResult `json:"data"`
}

// PaperResult is one paper as returned by the Graph API.
type PaperResult struct {
	PaperID       string       `json:"paperId"`
	ExternalIDs   *ExternalIDs `json:"externalIds"`
	Title         string       `json:"title"`
	Abstract      string       `json:"abstract"`
	Year          *int         `json:"year"`
	Venue         string       `json:"venue"`
	URL           string       `json:"url"`
	CitationCount *int         `json:"citationCount"`
	Authors       []Author     `json:"authors"`
}

// ExternalIDs holds the persistent identifiers Semantic Scholar knows for a
// paper.
type ExternalIDs struct {
	DOI   string `json:"DOI"`
	ArXiv string `json:"ArXiv"`
	DBLP  string `json:"DBLP"`
}

// Author is one author entry on a paper, including affiliations when the
// fields parameter requests them.
type Author struct {
	AuthorID     string   `json:"authorId"`
	Name         string   `json:"name"`
	URL          string   `json:"url"`
	Affiliations []string `json:"affiliations"`
}

// ErrorResponse is the error body the API returns on failures.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
