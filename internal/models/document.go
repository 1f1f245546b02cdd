// Package models defines core data structures for booths, document extraction,
// chat requests and responses, and the knowledge base.
package models

import "time"

// KnowledgeDocument is a source file ingested into the knowledge base.
type KnowledgeDocument struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Source    string    `json:"source" db:"source"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Passage is a retrievable chunk of a knowledge document.
type Passage struct {
	ID         string  `json:"id"`
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title"`
	Source     string  `json:"source"`
	Content    string  `json:"content"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score,omitempty"`
}
