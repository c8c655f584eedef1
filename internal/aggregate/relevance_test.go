package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scholarscope/professor-search-service/internal/domain"
)

func TestScorer_ScorePublication(t *testing.T) {
	t.Parallel()
	s := NewScorer()

	tests := []struct {
		name         string
		pub          *domain.Publication
		topics       []string
		wantScore    float64
		wantMatching []string
	}{
		{
			name:         "topic in title scores full weight",
			pub:          &domain.Publication{Title: "Advances in Machine Learning"},
			topics:       []string{"machine learning"},
			wantScore:    1.0,
			wantMatching: []string{"machine learning"},
		},
		{
			name:         "topic only in abstract scores reduced weight",
			pub:          &domain.Publication{Title: "A System Study", Abstract: "We apply machine learning to scheduling."},
			topics:       []string{"machine learning"},
			wantScore:    0.7,
			wantMatching: []string{"machine learning"},
		},
		{
			name:         "topic only in venue scores reduced weight",
			pub:          &domain.Publication{Title: "Scaling Things Up", Venue: "Conference on Robotics"},
			topics:       []string{"robotics"},
			wantScore:    0.7,
			wantMatching: []string{"robotics"},
		},
		{
			name:         "expansion term counts for the requested topic",
			pub:          &domain.Publication{Title: "Deep Learning for Protein Folding"},
			topics:       []string{"machine learning"},
			wantScore:    1.0,
			wantMatching: []string{"machine learning"},
		},
		{
			name:         "score is the mean over requested topics",
			pub:          &domain.Publication{Title: "Machine Learning for Robot Control"},
			topics:       []string{"machine learning", "robotics", "computer vision"},
			wantScore:    0.67,
			wantMatching: []string{"machine learning", "robotics"},
		},
		{
			name:         "no match scores zero",
			pub:          &domain.Publication{Title: "Medieval Manuscript Digitization"},
			topics:       []string{"machine learning"},
			wantScore:    0,
			wantMatching: nil,
		},
		{
			name:         "matching is case-insensitive",
			pub:          &domain.Publication{Title: "MACHINE LEARNING AT SCALE"},
			topics:       []string{"Machine Learning"},
			wantScore:    1.0,
			wantMatching: []string{"Machine Learning"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			score, matching := s.ScorePublication(tt.pub, tt.topics)
			assert.InDelta(t, tt.wantScore, score, 0.001)
			assert.Equal(t, tt.wantMatching, matching)
		})
	}
}

func TestScorer_TitleBeatsMetadata(t *testing.T) {
	t.Parallel()
	s := NewScorer()

	pub := &domain.Publication{
		Title:    "Robotics in the Warehouse",
		Abstract: "This robotics study covers picking.",
	}
	score, _ := s.ScorePublication(pub, []string{"robotics"})
	assert.InDelta(t, 1.0, score, 0.001, "a title match is not diluted by a metadata match")
}

func TestScorer_ScoreProfessor(t *testing.T) {
	t.Parallel()
	s := NewScorer()

	tests := []struct {
		name       string
		matching   []string
		requested  []string
		paperCount int
		want       float64
	}{
		{"full coverage, saturated volume", []string{"a", "b"}, []string{"a", "b"}, 10, 1.0},
		{"full coverage, half volume", []string{"a", "b"}, []string{"a", "b"}, 5, 0.8},
		{"half coverage, one paper", []string{"a"}, []string{"a", "b"}, 1, 0.34},
		{"volume never exceeds the cap", []string{"a"}, []string{"a"}, 100, 1.0},
		{"no requested topics", nil, nil, 5, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := s.ScoreProfessor(tt.matching, tt.requested, tt.paperCount)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestScorer_CustomExpansions(t *testing.T) {
	t.Parallel()
	s := NewScorerWithExpansions(map[string][]string{
		"quantum computing": {"qubit"},
	})

	score, matching := s.ScorePublication(
		&domain.Publication{Title: "Qubit Error Correction"},
		[]string{"quantum computing"},
	)
	assert.InDelta(t, 1.0, score, 0.001)
	assert.Equal(t, []string{"quantum computing"}, matching)
}
