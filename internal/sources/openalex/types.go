// Package openalex provides a Source adapter for the OpenAlex works API.
//
// OpenAlex is a free, open catalog of scholarly works, authors, and
// institutions. It is the only configured source with reliable affiliation
// data, so it carries most of the weight for professor promotion.
//
// API documentation: https://docs.openalex.org/
package openalex

// SearchResponse is the top-level response from the works endpoint.
type SearchResponse struct {
	Meta    Meta   `json:"meta"`
	Results []Work `json:"results"`
}

// Meta contains result counts and cursor pagination info.
type Meta struct {
	Count      int    `json:"count"`
	Page       int    `json:"page"`
	PerPage    int    `json:"per_page"`
	NextCursor string `json:"next_cursor"`
}

// Work represents one scholarly work.
type Work struct {
	ID              string       `json:"id"`
	DOI             string       `json:"doi"`
	Title           string       `json:"title"`
	DisplayName     string       `json:"display_name"`
	PublicationYear *int         `json:"publication_year"`
	CitedByCount    *int         `json:"cited_by_count"`
	Authorships     []Authorship `json:"authorships"`
	PrimaryLocation *Location    `json:"primary_location"`

	// AbstractInvertedIndex stores the abstract as word → positions;
	// the client reconstructs the plain text.
	AbstractInvertedIndex map[string][]int `json:"abstract_inverted_index"`
}

// Authorship links an author to a work together with their institutions.
type Authorship struct {
	Author       AuthorInfo    `json:"author"`
	Institutions []Institution `json:"institutions"`
}

// AuthorInfo contains basic author information.
type AuthorInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Orcid       string `json:"orcid"`
}

// Institution represents an academic institution.
type Institution struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Location represents where a work is published or hosted.
type Location struct {
	Source      *VenueSource `json:"source"`
	LandingPage string       `json:"landing_page_url"`
}

// VenueSource represents a publication venue.
type VenueSource struct {
	DisplayName string `json:"display_name"`
}

// ErrorResponse is the error body OpenAlex returns on failures.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
