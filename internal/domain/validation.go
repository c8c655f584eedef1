package domain

// SourceValidation tracks completeness accounting for one source within an
// aggregation run.
type SourceValidation struct {
	Source SourceType `json:"source"`

	// FetchedCount is the number of records actually retrieved across all
	// pages, before any filtering.
	FetchedCount int `json:"fetched_count"`

	// TotalAvailable is the source-reported total matching record count.
	// Nil when the source does not expose a total; completeness is then
	// unknown for this source.
	TotalAvailable *int `json:"total_available,omitempty"`

	// IsComplete is true when every available record was fetched. Always
	// false for a source that failed or whose pagination was cut short.
	IsComplete bool `json:"is_complete"`

	// CompletenessPercentage is fetched/total * 100 when the total is known.
	CompletenessPercentage *float64 `json:"completeness_percentage,omitempty"`
}

// ValidationInfo is the aggregate completeness verdict for a run.
//
// IsComplete is the logical AND over sources with known totals; a source with
// an unknown total never forces the aggregate to incomplete but is called out
// in Warnings. A source that failed entirely always forces incomplete.
type ValidationInfo struct {
	IsComplete          bool               `json:"is_complete"`
	Sources             []SourceValidation `json:"sources"`
	TotalFetched        int                `json:"total_fetched"`
	TotalAfterFiltering int                `json:"total_after_filtering"`
	Warnings            []string           `json:"warnings"`
}
