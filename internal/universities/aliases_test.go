package universities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpand(t *testing.T) {
	t.Parallel()

	table := Default()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "abbreviation", input: "CMU", expected: "Carnegie Mellon University"},
		{name: "case insensitive", input: "cmu", expected: "Carnegie Mellon University"},
		{name: "official name maps to itself", input: "Carnegie Mellon University", expected: "Carnegie Mellon University"},
		{name: "variation", input: "UC Berkeley", expected: "University of California, Berkeley"},
		{name: "unknown passes through", input: "Unknown Tech Institute", expected: "Unknown Tech Institute"},
		{name: "unknown trimmed", input: "  Somewhere  ", expected: "Somewhere"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, table.Expand(tt.input))
		})
	}
}

func TestExpandAll(t *testing.T) {
	t.Parallel()

	table := Default()

	got := table.ExpandAll([]string{"MIT", "cmu", "Carnegie Mellon", "Unknown U"})
	assert.Equal(t, []string{
		"Carnegie Mellon University",
		"Massachusetts Institute of Technology",
		"Unknown U",
	}, got, "deduplicated and sorted")
}

func TestMatches(t *testing.T) {
	t.Parallel()

	table := Default()

	tests := []struct {
		name        string
		affiliation string
		official    string
		expected    bool
	}{
		{
			name:        "exact official",
			affiliation: "Carnegie Mellon University",
			official:    "Carnegie Mellon University",
			expected:    true,
		},
		{
			name:        "abbreviation expands",
			affiliation: "CMU",
			official:    "Carnegie Mellon University",
			expected:    true,
		},
		{
			name:        "department prefix contains official",
			affiliation: "School of Computer Science, Carnegie Mellon University",
			official:    "Carnegie Mellon University",
			expected:    true,
		},
		{
			name:        "different university",
			affiliation: "Stanford University",
			official:    "Carnegie Mellon University",
			expected:    false,
		},
		{
			name:        "empty affiliation",
			affiliation: "",
			official:    "Carnegie Mellon University",
			expected:    false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, table.Matches(tt.affiliation, tt.official))
		})
	}
}
