// Package ranking provides additive multi-signal scoring for polling booth records.
package ranking

import (
	"github.com/hyperjump/votesathi/internal/models"
)

// AnalyzedQuery holds the parsed form of a booth query.
type AnalyzedQuery struct {
	// Original is the query exactly as the user typed it.
	Original string
	// Normalized is the lowercased, trimmed, whitespace-collapsed query.
	Normalized string
	// Terms are normalized tokens longer than the minimum token length.
	Terms []string
}

// ScoringContext provides everything a scorer needs for one booth.
type ScoringContext struct {
	Query *AnalyzedQuery
	Booth *models.BoothRecord
}

// Scorer is the interface for all scoring signals.
type Scorer interface {
	// Score returns the contribution of this signal for the booth in ctx.
	Score(ctx *ScoringContext) float64
	// Name returns the name of the scorer for debugging/logging.
	Name() string
}

// ScoreBreakdown provides per-signal scoring information for debugging.
type ScoreBreakdown struct {
	FinalScore float64
	Signals    map[string]float64
}

// NewScoreBreakdown creates a new ScoreBreakdown instance.
func NewScoreBreakdown() *ScoreBreakdown {
	return &ScoreBreakdown{
		Signals: make(map[string]float64),
	}
}
