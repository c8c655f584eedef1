// Package dblp provides a Source adapter for the DBLP publication search API.
//
// DBLP carries no affiliation or citation data, so it acts as an enrichment
// source: its records merge into publications found elsewhere, contribute
// provenance and DBLP author URLs, and never promote professors on their own.
//
// API documentation: https://dblp.org/faq/How+to+use+the+dblp+search+API.html
package dblp

import (
	"encoding/json"
	"fmt"
)

// SearchResponse is the top-level response from the publication search
// endpoint.
type SearchResponse struct {
	Result Result `json:"result"`
}

// Result wraps the hit list and its counters.
type Result struct {
	Hits Hits `json:"hits"`
}

// Hits holds the matches for one page. DBLP encodes its counters as JSON
// strings.
type Hits struct {
	Total string `json:"@total"`
	First string `json:"@first"`
	Sent  string `json:"@sent"`
	Hit   []Hit  `json:"hit"`
}

// Hit is one search match.
type Hit struct {
	Info Info `json:"info"`
}

// Info carries the publication fields of a hit.
type Info struct {
	Title   string     `json:"title"`
	Year    string     `json:"year"`
	Venue   FlexString `json:"venue"`
	EE      string     `json:"ee"`
	URL     string     `json:"url"`
	Key     string     `json:"key"`
	Authors AuthorList `json:"authors"`
}

// AuthorList unwraps DBLP's authors container, which holds either a single
// author object or an array of them.
type AuthorList struct {
	Author []AuthorRef
}

// UnmarshalJSON accepts both the single-object and array encodings.
func (l *AuthorList) UnmarshalJSON(data []byte) error {
	var wrapper struct {
		Author json.RawMessage `json:"author"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return err
	}
	if len(wrapper.Author) == 0 {
		return nil
	}

	var many []AuthorRef
	if err := json.Unmarshal(wrapper.Author, &many); err == nil {
		l.Author = many
		return nil
	}

	var one AuthorRef
	if err := json.Unmarshal(wrapper.Author, &one); err != nil {
		return fmt.Errorf("authors field is neither object nor array: %w", err)
	}
	l.Author = []AuthorRef{one}
	return nil
}

// AuthorRef is one author entry. DBLP uses the "text" member for the name
// and "@pid" for the persistent DBLP author ID.
type AuthorRef struct {
	Text string `json:"text"`
	PID  string `json:"@pid"`
}

// FlexString accepts a JSON string or an array of strings, joining arrays
// with a comma. DBLP emits both shapes for venue.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("value is neither string nor array: %w", err)
	}
	if len(many) > 0 {
		*f = FlexString(many[0])
	}
	return nil
}
