// Package keyword provides BM25 retrieval over knowledge base passages.
package keyword

import (
	"context"

	"github.com/hyperjump/votesathi/internal/models"
)

// SearchOptions optional parameters for passage search. Nil means use defaults.
type SearchOptions struct {
	// TitleBoost multiplies the score contribution from matches in the title field.
	// Use 1.0 for a single match over title and content.
	TitleBoost float64
	// FuzzyEnabled enables fuzzy matching for typo tolerance.
	FuzzyEnabled bool
	// Fuzziness is the maximum edit distance for fuzzy matching (1 or 2). Default 1.
	Fuzziness int
}

// PassageIndex defines passage indexing and retrieval.
type PassageIndex interface {
	Index(ctx context.Context, p *models.Passage) error
	Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*models.Passage, error)
	// DeleteDocument removes every passage belonging to documentID.
	DeleteDocument(ctx context.Context, documentID string) (int, error)
	DocCount() (uint64, error)
	Close() error
}
