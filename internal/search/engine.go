// Package search provides the polling booth search engine.
package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/votesathi/internal/booths"
	"github.com/hyperjump/votesathi/internal/models"
	"github.com/hyperjump/votesathi/internal/ranking"
	"github.com/hyperjump/votesathi/pkg/utils"
)

// DefaultLimit is the number of booths returned when the caller passes k <= 0.
const DefaultLimit = 5

// Engine finds the booths most relevant to a free-text query.
type Engine struct {
	dataset      *booths.Dataset
	ranker       *ranking.Ranker
	defaultLimit int
	logger       *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = utils.OrNop(logger) }
}

// WithDefaultLimit overrides DefaultLimit.
func WithDefaultLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.defaultLimit = n
		}
	}
}

// NewEngine creates a booth search engine over dataset.
func NewEngine(dataset *booths.Dataset, ranker *ranking.Ranker, opts ...Option) *Engine {
	if ranker == nil {
		ranker = ranking.NewRanker(nil)
	}
	e := &Engine{
		dataset:      dataset,
		ranker:       ranker,
		defaultLimit: DefaultLimit,
		logger:       zap.NewNop(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Search returns up to k booths for query, best first.
func (e *Engine) Search(ctx context.Context, query string, k int) ([]models.BoothRecord, error) {
	scored, err := e.SearchScored(ctx, query, k)
	if err != nil {
		return nil, err
	}
	out := make([]models.BoothRecord, len(scored))
	for i, s := range scored {
		out[i] = s.Booth
	}
	return out, nil
}

// SearchScored is Search with scores attached. Exact station-number matches
// bypass scoring and carry a zero score.
func (e *Engine) SearchScored(ctx context.Context, query string, k int) ([]models.ScoredBooth, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, err := e.dataset.Records()
	if err != nil {
		return nil, fmt.Errorf("load booths: %w", err)
	}
	if k <= 0 {
		k = e.defaultLimit
	}

	if exact := matchStationNumber(query, records, k); len(exact) > 0 {
		e.logger.Debug("station number lookup", zap.String("query", query), zap.Int("results", len(exact)))
		return exact, nil
	}

	ranked := ranking.TopN(e.ranker.RankBooths(query, records), k)
	out := make([]models.ScoredBooth, len(ranked))
	for i, r := range ranked {
		out[i] = models.ScoredBooth{Booth: *r.Booth, Score: r.Score}
	}
	e.logger.Debug("booth search", zap.String("query", query), zap.Int("results", len(out)))
	return out, nil
}

// Explain returns ranked results with per-signal breakdowns, ignoring the
// station-number short-circuit.
func (e *Engine) Explain(ctx context.Context, query string, k int) ([]*ranking.RankedResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, err := e.dataset.Records()
	if err != nil {
		return nil, fmt.Errorf("load booths: %w", err)
	}
	if k <= 0 {
		k = e.defaultLimit
	}
	return ranking.TopN(e.ranker.RankBoothsWithBreakdown(query, records), k), nil
}

func matchStationNumber(query string, records []models.BoothRecord, k int) []models.ScoredBooth {
	n, ok := ParseStationNumber(query)
	if !ok {
		return nil
	}
	var out []models.ScoredBooth
	for _, r := range records {
		if r.StationNumber == n {
			out = append(out, models.ScoredBooth{Booth: r})
			if len(out) == k {
				break
			}
		}
	}
	return out
}
