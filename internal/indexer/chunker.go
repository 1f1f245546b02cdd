// Package indexer splits knowledge documents into passages and maintains the passage index.
package indexer

import (
	"fmt"
	"strings"

	"github.com/hyperjump/votesathi/internal/models"
)

// Chunker splits text into overlapping word windows.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker creates a chunker with the given size and overlap (in words).
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 200
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 0
	}
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// PassageID returns the ID of the i-th passage of a document.
func PassageID(docID string, i int) string {
	return fmt.Sprintf("%s#%d", docID, i)
}

// Chunk splits doc into passages. IDs are deterministic so re-indexing a
// document overwrites its passages.
func (c *Chunker) Chunk(doc *models.KnowledgeDocument) []*models.Passage {
	words := strings.Fields(doc.Content)
	if len(words) == 0 {
		return nil
	}
	step := c.chunkSize - c.chunkOverlap
	var passages []*models.Passage
	for start := 0; start < len(words); start += step {
		end := start + c.chunkSize
		if end > len(words) {
			end = len(words)
		}
		i := len(passages)
		passages = append(passages, &models.Passage{
			ID:         PassageID(doc.ID, i),
			DocumentID: doc.ID,
			Title:      doc.Title,
			Source:     doc.Source,
			Content:    strings.Join(words[start:end], " "),
			ChunkIndex: i,
		})
		if end == len(words) {
			break
		}
	}
	return passages
}
