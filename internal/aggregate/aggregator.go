package aggregate

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/scholarscope/professor-search-service/internal/domain"
	"github.com/scholarscope/professor-search-service/internal/observability"
	"github.com/scholarscope/professor-search-service/internal/sources"
	"github.com/scholarscope/professor-search-service/internal/universities"
)

// Query is one aggregation request.
type Query struct {
	// Universities as given by the caller; expanded to official names before
	// the sources are queried.
	Universities []string

	// Topics to search for, matched against titles, venues, and abstracts.
	Topics []string

	// IncludeStudents enables lab-page scraping for promoted professors.
	IncludeStudents bool

	// YearFrom and YearTo bound publication years inclusively; zero means
	// unbounded.
	YearFrom int
	YearTo   int

	// MinCitations drops publications with a known citation count below the
	// bound. Publications with an unknown count are kept.
	MinCitations int

	// MaxResultsPerSource caps the page size requested from each source;
	// zero uses each source's default.
	MaxResultsPerSource int
}

// ScoredPaper pairs a merged publication with its relevance verdict.
type ScoredPaper struct {
	Publication    *domain.Publication `json:"publication"`
	RelevanceScore float64             `json:"relevance_score"`
	MatchingTopics []string            `json:"matching_topics"`
}

// Result is the complete outcome of one aggregation run.
type Result struct {
	RunID string `json:"run_id"`

	// Universities holds the official (alias-expanded) names queried.
	Universities []string `json:"universities"`
	Topics       []string `json:"topics"`

	Professors []*domain.ProfessorRecord `json:"professors"`
	Papers     []ScoredPaper             `json:"papers"`

	Validation     domain.ValidationInfo `json:"validation"`
	SourcesQueried []string              `json:"sources_queried"`
	SearchTime     time.Duration         `json:"-"`
	GeneratedAt    time.Time             `json:"generated_at"`
}

// LabEnricher scrapes a professor's pages for lab membership. Implemented by
// the scraper package; injected as an interface so the engine tests without
// network access.
type LabEnricher interface {
	Enrich(ctx context.Context, homepageURL string) (*domain.Lab, error)
}

// Aggregator runs the full pipeline: fan-out fetch, normalization, merge,
// relevance scoring, professor promotion, optional lab enrichment, and
// completeness validation.
type Aggregator struct {
	registry   *sources.Registry
	aliases    *universities.AliasTable
	resolver   *Resolver
	merger     *Merger
	scorer     *Scorer
	enricher   LabEnricher
	metrics    *observability.Metrics
	logger     zerolog.Logger
	maxResults int
	now        func() time.Time
}

// Config holds the aggregator's tunables.
type Config struct {
	// TitleSimilarityThreshold for fuzzy title dedup; zero selects the
	// default of 0.90.
	TitleSimilarityThreshold float64

	// MaxResultsPerSource is the page size requested from each source when
	// the query does not set one; zero leaves it to each source's default.
	MaxResultsPerSource int
}

// New creates an aggregator. enricher and metrics may be nil; a nil aliases
// table falls back to the built-in one.
func New(
	cfg Config,
	registry *sources.Registry,
	aliases *universities.AliasTable,
	enricher LabEnricher,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *Aggregator {
	if aliases == nil {
		aliases = universities.Default()
	}
	resolver := NewResolver(aliases)
	return &Aggregator{
		registry:   registry,
		aliases:    aliases,
		resolver:   resolver,
		merger:     NewMerger(resolver, cfg.TitleSimilarityThreshold),
		scorer:     NewScorer(),
		enricher:   enricher,
		metrics:    metrics,
		logger:     logger,
		maxResults: cfg.MaxResultsPerSource,
		now:        time.Now,
	}
}

// Search executes one aggregation run.
//
// Individual source failures degrade the result (warnings plus an incomplete
// flag) rather than failing the run; only when every source fails is
// ErrAllSourcesFailed returned, since there is nothing to aggregate.
func (a *Aggregator) Search(ctx context.Context, q Query) (*Result, error) {
	start := a.now()
	runID := uuid.NewString()
	ctx = observability.WithRunID(ctx, runID)
	logger := a.logger.With().Str("run_id", runID).Logger()

	officials := a.aliases.ExpandAll(q.Universities)
	topics := cleanTopics(q.Topics)
	if len(topics) == 0 {
		return nil, fmt.Errorf("%w: no topics given", domain.ErrInvalidInput)
	}

	logger.Info().
		Strs("universities", officials).
		Strs("topics", topics).
		Bool("include_students", q.IncludeStudents).
		Msg("starting aggregation run")

	maxResults := q.MaxResultsPerSource
	if maxResults <= 0 {
		maxResults = a.maxResults
	}

	results := a.registry.FetchAll(ctx, sources.SearchParams{
		Topics:       topics,
		Universities: officials,
		MaxResults:   maxResults,
		YearFrom:     q.YearFrom,
		YearTo:       q.YearTo,
		MinCitations: q.MinCitations,
	})
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: no sources enabled", domain.ErrAllSourcesFailed)
	}

	allFailed := true
	for _, res := range results {
		if res.Err == nil {
			allFailed = false
		} else {
			logger.Warn().Err(res.Err).Str("source", string(res.Source)).Msg("source fetch failed")
		}
		if a.metrics != nil {
			a.metrics.RecordSourceFetch(string(res.Source), len(res.Records), res.Duration.Seconds(), res.Err)
		}
	}
	if allFailed {
		if a.metrics != nil {
			a.metrics.SearchesTotal.WithLabelValues("error").Inc()
		}
		return nil, fmt.Errorf("%w: %d sources queried, none succeeded",
			domain.ErrAllSourcesFailed, len(results))
	}

	pubs, malformed := a.normalizeAll(logger, results)
	pubs = filterPublications(pubs, q)
	merged := a.merger.Merge(pubs)
	if a.metrics != nil {
		a.metrics.DuplicatesMerged.Add(float64(len(pubs) - len(merged)))
	}

	papers := a.scorePapers(merged, topics)
	professors := a.promoteProfessors(papers, officials, topics, start)
	if a.metrics != nil {
		a.metrics.ProfessorsPromoted.Add(float64(len(professors)))
	}

	if q.IncludeStudents && a.enricher != nil {
		a.enrichProfessors(ctx, logger, professors)
	}

	validation := BuildValidation(results, len(papers))
	if malformed > 0 {
		validation.Warnings = append(validation.Warnings,
			fmt.Sprintf("%d malformed records dropped during normalization", malformed))
	}
	if a.metrics != nil && !validation.IsComplete {
		a.metrics.IncompleteRuns.Inc()
	}

	sortProfessors(professors)
	sortPapers(papers)

	names := make([]string, 0, len(results))
	for _, res := range results {
		names = append(names, res.Name)
	}

	elapsed := a.now().Sub(start)
	if a.metrics != nil {
		a.metrics.SearchesTotal.WithLabelValues("ok").Inc()
		a.metrics.SearchDuration.Observe(elapsed.Seconds())
	}
	logger.Info().
		Int("professors", len(professors)).
		Int("papers", len(papers)).
		Bool("complete", validation.IsComplete).
		Dur("elapsed", elapsed).
		Msg("aggregation run finished")

	return &Result{
		RunID:          runID,
		Universities:   officials,
		Topics:         topics,
		Professors:     professors,
		Papers:         papers,
		Validation:     validation,
		SourcesQueried: names,
		SearchTime:     elapsed,
		GeneratedAt:    start,
	}, nil
}

// normalizeAll converts every fetched raw record, dropping malformed ones.
func (a *Aggregator) normalizeAll(logger zerolog.Logger, results []sources.FetchResult) ([]*domain.Publication, int) {
	var pubs []*domain.Publication
	malformed := 0
	for _, res := range results {
		for _, rec := range res.Records {
			pub, err := NormalizeRecord(rec)
			if err != nil {
				malformed++
				logger.Debug().Err(err).Str("source", string(rec.Source)).Msg("dropping malformed record")
				continue
			}
			pubs = append(pubs, pub)
		}
	}
	return pubs, malformed
}

// scorePapers keeps publications with a non-zero relevance score.
func (a *Aggregator) scorePapers(pubs []*domain.Publication, topics []string) []ScoredPaper {
	papers := make([]ScoredPaper, 0, len(pubs))
	for _, pub := range pubs {
		score, matching := a.scorer.ScorePublication(pub, topics)
		if score <= 0 {
			continue
		}
		papers = append(papers, ScoredPaper{
			Publication:    pub,
			RelevanceScore: score,
			MatchingTopics: matching,
		})
	}
	return papers
}

// promoteProfessors builds professor records from authors of retained papers
// whose affiliation resolves to one of the queried universities.
//
// Mentions of the same person on different papers can carry persistent IDs
// from different namespaces (an s2: ID on one paper, an ORCID on another), so
// lookup goes through the resolver rather than a raw-ID key.
func (a *Aggregator) promoteProfessors(papers []ScoredPaper, officials, topics []string, runTime time.Time) []*domain.ProfessorRecord {
	var professors []*domain.ProfessorRecord
	var matchedTopics []map[string]struct{}

	for _, paper := range papers {
		for _, author := range paper.Publication.Authors {
			university, ok := a.resolver.MatchUniversity(author, officials)
			if !ok {
				continue
			}

			idx := -1
			for i, prof := range professors {
				if prof.University == university && a.resolver.SameAuthor(prof.Author, author) {
					idx = i
					break
				}
			}
			if idx < 0 {
				professors = append(professors, &domain.ProfessorRecord{
					Author:       author,
					University:   university,
					LastVerified: runTime,
				})
				matchedTopics = append(matchedTopics, make(map[string]struct{}))
				idx = len(professors) - 1
			} else {
				a.resolver.MergeAuthor(professors[idx].Author, author)
			}

			prof := professors[idx]
			prof.Publications = append(prof.Publications, paper.Publication)
			for _, s := range paper.Publication.Sources {
				prof.AddDataSource(s)
			}
			for _, t := range paper.MatchingTopics {
				matchedTopics[idx][t] = struct{}{}
			}
		}
	}

	for i, prof := range professors {
		matched := matchedTopics[i]

		// Preserve request order in the reported topic list.
		matching := make([]string, 0, len(matched))
		for _, t := range topics {
			if _, ok := matched[t]; ok {
				matching = append(matching, t)
			}
		}

		// Confidence is graded after identity resolution: a later mention can
		// supply the persistent ID the first one lacked.
		prof.DisambiguationConfidence = a.resolver.Confidence(prof.Author)
		prof.Relevance = domain.RelevanceInfo{
			Score:               a.scorer.ScoreProfessor(matching, topics, len(prof.Publications)),
			MatchingTopics:      matching,
			RelevantPapersCount: len(prof.Publications),
		}
	}
	return professors
}

// enrichProfessors scrapes lab pages concurrently. Scrape failures leave the
// professor record without a lab; they never fail the run.
func (a *Aggregator) enrichProfessors(ctx context.Context, logger zerolog.Logger, professors []*domain.ProfessorRecord) {
	var g errgroup.Group
	for _, prof := range professors {
		if prof.Author.URL == "" {
			continue
		}
		prof := prof
		g.Go(func() error {
			lab, err := a.enricher.Enrich(ctx, prof.Author.URL)
			if err != nil {
				logger.Warn().Err(err).Str("professor", prof.Author.Name).Msg("lab enrichment failed")
				if a.metrics != nil {
					a.metrics.ScrapeErrors.Inc()
				}
				return nil
			}
			prof.Lab = lab
			if lab != nil {
				prof.AddDataSource(domain.SourceTypeLabScrape)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// filterPublications applies year and citation bounds client-side, since not
// every source can filter server-side. Unknown years and citation counts pass
// through: absence of a value is not evidence it is out of range.
func filterPublications(pubs []*domain.Publication, q Query) []*domain.Publication {
	if q.YearFrom == 0 && q.YearTo == 0 && q.MinCitations == 0 {
		return pubs
	}
	out := pubs[:0]
	for _, pub := range pubs {
		if pub.Year != nil {
			if q.YearFrom > 0 && *pub.Year < q.YearFrom {
				continue
			}
			if q.YearTo > 0 && *pub.Year > q.YearTo {
				continue
			}
		}
		if q.MinCitations > 0 && pub.CitationCount != nil && *pub.CitationCount < q.MinCitations {
			continue
		}
		out = append(out, pub)
	}
	return out
}

// sortProfessors orders by relevance score descending, ties broken by
// normalized name for stable output.
func sortProfessors(professors []*domain.ProfessorRecord) {
	sort.SliceStable(professors, func(i, j int) bool {
		if professors[i].Relevance.Score != professors[j].Relevance.Score {
			return professors[i].Relevance.Score > professors[j].Relevance.Score
		}
		return professors[i].Author.NormalizedName < professors[j].Author.NormalizedName
	})
}

// sortPapers orders by relevance score, then citation count (unknown counts
// last), then normalized title.
func sortPapers(papers []ScoredPaper) {
	sort.SliceStable(papers, func(i, j int) bool {
		if papers[i].RelevanceScore != papers[j].RelevanceScore {
			return papers[i].RelevanceScore > papers[j].RelevanceScore
		}
		ci, cj := citationsOrUnknown(papers[i].Publication), citationsOrUnknown(papers[j].Publication)
		if ci != cj {
			return ci > cj
		}
		return papers[i].Publication.NormalizedTitle < papers[j].Publication.NormalizedTitle
	})
}

func citationsOrUnknown(p *domain.Publication) int {
	if p.CitationCount == nil {
		return -1
	}
	return *p.CitationCount
}

// cleanTopics trims and drops empty topics, preserving request order and
// removing duplicates case-insensitively.
func cleanTopics(topics []string) []string {
	seen := make(map[string]struct{}, len(topics))
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}
