package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for the aggregation error taxonomy. Each level of failure
// is recovered at the level it occurs: a failed source is excluded from the
// run, a malformed record is dropped, a failed scrape leaves the Lab field
// empty. Only ErrAllSourcesFailed fails an entire run.
var (
	// ErrSourceUnavailable indicates a source could not serve the run at all.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrMalformedRecord indicates a source record missing required fields.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrScrapeFailed indicates lab-page enrichment failed for one professor.
	ErrScrapeFailed = errors.New("scrape failed")

	// ErrAllSourcesFailed indicates every configured source was unavailable.
	ErrAllSourcesFailed = errors.New("all sources failed")

	// ErrNotFound indicates a requested entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the request input is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRateLimited indicates an upstream API rate limited the client.
	ErrRateLimited = errors.New("rate limited")
)

// SourceUnavailableError reports that one source failed for an entire run.
// The aggregator excludes the source and flags it in the validation warnings.
type SourceUnavailableError struct {
	Source SourceType
	Cause  error
}

// Error implements the error interface.
func (e *SourceUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("source %s unavailable: %v", e.Source, e.Cause)
	}
	return fmt.Sprintf("source %s unavailable", e.Source)
}

// Unwrap returns the sentinel for use with errors.Is.
func (e *SourceUnavailableError) Unwrap() error {
	return ErrSourceUnavailable
}

// MalformedRecordError reports a record that could not be normalized.
// The record is logged and dropped; the run continues.
type MalformedRecordError struct {
	Source SourceType
	Reason string
}

// Error implements the error interface.
func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record from %s: %s", e.Source, e.Reason)
}

// Unwrap returns the sentinel for use with errors.Is.
func (e *MalformedRecordError) Unwrap() error {
	return ErrMalformedRecord
}

// ScrapeFailedError reports that lab-page enrichment failed for one URL.
// Non-fatal: the professor is returned without a populated Lab.
type ScrapeFailedError struct {
	URL   string
	Cause error
}

// Error implements the error interface.
func (e *ScrapeFailedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to scrape %s: %v", e.URL, e.Cause)
	}
	return fmt.Sprintf("failed to scrape %s", e.URL)
}

// Unwrap returns the sentinel for use with errors.Is.
func (e *ScrapeFailedError) Unwrap() error {
	return ErrScrapeFailed
}

// ExternalAPIError provides details about an upstream API failure.
type ExternalAPIError struct {
	Source     SourceType
	StatusCode int
	Message    string
	Cause      error
}

// Error implements the error interface.
func (e *ExternalAPIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Source, e.StatusCode, e.Message)
}

// Unwrap returns the underlying cause error.
func (e *ExternalAPIError) Unwrap() error {
	return e.Cause
}

// RateLimitError reports that an upstream API rejected a request for rate
// limiting after retries were exhausted.
type RateLimitError struct {
	Source     SourceType
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited by %s: retry after %s", e.Source, e.RetryAfter)
}

// Unwrap returns the sentinel for use with errors.Is.
func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

// ValidationError represents a request validation error for a single field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Unwrap returns the sentinel for use with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
