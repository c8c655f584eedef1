package aggregate

import (
	"math"
	"strings"

	"github.com/scholarscope/professor-search-service/internal/domain"
)

// Match weights. A topic found in the title counts fully; a topic found only
// in the venue or abstract counts at reduced weight because venues and
// abstracts mention adjacent areas the paper is not about.
const (
	titleMatchWeight    = 1.0
	metadataMatchWeight = 0.7
)

// Professor score weights: topic coverage dominates, paper volume saturates
// at ten relevant papers.
const (
	topicCoverageWeight   = 0.6
	paperVolumeWeight     = 0.4
	paperVolumeSaturation = 10.0
)

// defaultTopicExpansions maps a queried topic to related terms that also
// count as a match for it. Keys and values are matched case-insensitively.
var defaultTopicExpansions = map[string][]string{
	"machine learning":                {"ml", "deep learning", "neural network", "neural networks"},
	"artificial intelligence":         {"ai"},
	"natural language processing":     {"nlp", "computational linguistics", "language model", "language models"},
	"llm":                             {"large language model", "large language models", "language model"},
	"large language models":           {"llm", "llms", "language model"},
	"retrieval augmented generation":  {"rag", "retrieval-augmented"},
	"computer vision":                 {"cv", "image recognition", "object detection"},
	"reinforcement learning":          {"rl"},
	"deep learning":                   {"neural network", "neural networks", "dl"},
	"robotics":                        {"robot", "robots", "manipulation"},
	"data mining":                     {"knowledge discovery"},
	"information retrieval":           {"ir", "search engine", "search engines"},
	"human-computer interaction":      {"hci", "human computer interaction", "user interface"},
	"computational biology":           {"bioinformatics"},
	"computer security":               {"cybersecurity", "security", "cryptography"},
	"distributed systems":             {"distributed computing"},
	"programming languages":           {"pl", "compilers", "type systems"},
	"theory of computation":           {"complexity theory", "algorithms"},
}

// Scorer assigns topical relevance scores to publications and professors.
type Scorer struct {
	expansions map[string][]string
}

// NewScorer creates a scorer with the built-in topic expansion table.
func NewScorer() *Scorer {
	return &Scorer{expansions: defaultTopicExpansions}
}

// NewScorerWithExpansions creates a scorer with a custom expansion table,
// used by tests and deployments with their own vocabulary.
func NewScorerWithExpansions(expansions map[string][]string) *Scorer {
	return &Scorer{expansions: expansions}
}

// ScorePublication rates a publication against the requested topics.
//
// Each topic contributes its best match weight (title beats venue/abstract)
// and the score is the mean contribution over all requested topics, so the
// score is the weighted fraction of topics the paper covers. The returned
// matching slice holds the literal requested topics that matched, in request
// order; a zero score means the paper matched no topic at all and should be
// dropped.
func (s *Scorer) ScorePublication(pub *domain.Publication, topics []string) (float64, []string) {
	if pub == nil || len(topics) == 0 {
		return 0, nil
	}

	title := strings.ToLower(pub.Title)
	metadata := strings.ToLower(pub.Venue) + " " + strings.ToLower(pub.Abstract)

	var total float64
	var matching []string
	for _, topic := range topics {
		best := 0.0
		for _, term := range s.termsFor(topic) {
			switch {
			case strings.Contains(title, term):
				best = titleMatchWeight
			case best < metadataMatchWeight && strings.Contains(metadata, term):
				best = metadataMatchWeight
			}
			if best == titleMatchWeight {
				break
			}
		}
		if best > 0 {
			matching = append(matching, topic)
			total += best
		}
	}

	return round2(total / float64(len(topics))), matching
}

// ScoreProfessor rates a professor from their matched topics and retained
// paper count: 0.6 * topic coverage + 0.4 * paper volume capped at ten.
func (s *Scorer) ScoreProfessor(matchingTopics, requestedTopics []string, paperCount int) float64 {
	if len(requestedTopics) == 0 {
		return 0
	}
	coverage := float64(len(matchingTopics)) / float64(len(requestedTopics))
	volume := math.Min(float64(paperCount)/paperVolumeSaturation, 1.0)
	return round2(topicCoverageWeight*coverage + paperVolumeWeight*volume)
}

// termsFor returns the topic itself plus its expansion terms, lowercased.
func (s *Scorer) termsFor(topic string) []string {
	lower := strings.ToLower(strings.TrimSpace(topic))
	terms := []string{lower}
	if extra, ok := s.expansions[lower]; ok {
		for _, t := range extra {
			terms = append(terms, strings.ToLower(t))
		}
	}
	return terms
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
