package ranking

import (
	"sort"

	"github.com/hyperjump/votesathi/internal/models"
)

// Ranker sums all scorers to rank booths.
type Ranker struct {
	config   *RankingConfig
	analyzer *QueryAnalyzer
	scorers  []Scorer
}

// NewRanker creates a new Ranker with the given configuration.
func NewRanker(config *RankingConfig) *Ranker {
	if config == nil {
		config = DefaultRankingConfig()
	}
	config.ApplyDefaults()

	return &Ranker{
		config:   config,
		analyzer: NewQueryAnalyzer(config.MinTokenLength),
		scorers:  DefaultScorers(config),
	}
}

// DefaultScorers returns the standard booth signals in evaluation order.
func DefaultScorers(config *RankingConfig) []Scorer {
	return []Scorer{
		NewTitleScorer(config),
		NewLandmarkScorer(config),
		NewTagScorer(config),
		NewAreaScorer(config),
		NewContentScorer(config),
	}
}

// AnalyzeQuery parses and analyzes a query string.
func (r *Ranker) AnalyzeQuery(query string) *AnalyzedQuery {
	return r.analyzer.Analyze(query)
}

// Rank calculates the additive score of booth for query.
func (r *Ranker) Rank(query *AnalyzedQuery, booth *models.BoothRecord) float64 {
	ctx := &ScoringContext{Query: query, Booth: booth}
	var score float64
	for _, s := range r.scorers {
		score += s.Score(ctx)
	}
	return score
}

// RankWithBreakdown returns per-signal scoring information.
func (r *Ranker) RankWithBreakdown(query *AnalyzedQuery, booth *models.BoothRecord) *ScoreBreakdown {
	ctx := &ScoringContext{Query: query, Booth: booth}
	breakdown := NewScoreBreakdown()
	for _, s := range r.scorers {
		v := s.Score(ctx)
		breakdown.Signals[s.Name()] = v
		breakdown.FinalScore += v
	}
	return breakdown
}

// RankedResult holds a booth with its computed score.
type RankedResult struct {
	Booth     *models.BoothRecord
	Score     float64
	Breakdown *ScoreBreakdown
}

// RankBooths scores every booth, drops non-positive scores, and sorts descending.
// Ties keep corpus order.
func (r *Ranker) RankBooths(query string, booths []models.BoothRecord) []*RankedResult {
	analyzed := r.AnalyzeQuery(query)
	return r.rank(analyzed, booths, false)
}

// RankBoothsWithBreakdown is RankBooths with per-signal breakdowns attached.
func (r *Ranker) RankBoothsWithBreakdown(query string, booths []models.BoothRecord) []*RankedResult {
	analyzed := r.AnalyzeQuery(query)
	return r.rank(analyzed, booths, true)
}

func (r *Ranker) rank(query *AnalyzedQuery, booths []models.BoothRecord, withBreakdown bool) []*RankedResult {
	results := make([]*RankedResult, 0)
	for i := range booths {
		b := &booths[i]
		res := &RankedResult{Booth: b}
		if withBreakdown {
			res.Breakdown = r.RankWithBreakdown(query, b)
			res.Score = res.Breakdown.FinalScore
		} else {
			res.Score = r.Rank(query, b)
		}
		if res.Score > 0 {
			results = append(results, res)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}

// TopN returns the top N results.
func TopN(results []*RankedResult, n int) []*RankedResult {
	if n < 0 {
		n = 0
	}
	if n >= len(results) {
		return results
	}
	return results[:n]
}
