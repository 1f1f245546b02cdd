package indexer

import (
	"testing"

	"github.com/hyperjump/votesathi/internal/models"
)

func TestChunker_Chunk(t *testing.T) {
	doc := &models.KnowledgeDocument{ID: "kb-1", Title: "Forms", Source: "forms.md", Content: "one two three four five six seven"}
	chunks := NewChunker(3, 1).Chunk(doc)
	want := []string{"one two three", "three four five", "five six seven"}
	if len(chunks) != len(want) {
		t.Fatalf("got %d chunks, want %d", len(chunks), len(want))
	}
	for i, ch := range chunks {
		if ch.Content != want[i] {
			t.Errorf("chunk %d Content=%q, want %q", i, ch.Content, want[i])
		}
		if ch.ID != PassageID("kb-1", i) || ch.ChunkIndex != i {
			t.Errorf("chunk %d ID=%s ChunkIndex=%d", i, ch.ID, ch.ChunkIndex)
		}
		if ch.DocumentID != "kb-1" || ch.Title != "Forms" || ch.Source != "forms.md" {
			t.Errorf("chunk %d metadata = %+v", i, ch)
		}
	}
}

func TestChunker_Deterministic(t *testing.T) {
	doc := &models.KnowledgeDocument{ID: "kb-2", Content: "a b c d e"}
	c := NewChunker(2, 0)
	first, second := c.Chunk(doc), c.Chunk(doc)
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("chunk %d ID changed: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
	if first[0].ID != "kb-2#0" {
		t.Errorf("first ID = %q", first[0].ID)
	}
}

func TestChunker_Edges(t *testing.T) {
	if chunks := NewChunker(5, 1).Chunk(&models.KnowledgeDocument{ID: "d", Content: "   \n\t  "}); chunks != nil {
		t.Errorf("empty text should return nil, got %v", chunks)
	}
	// Overlap >= size falls back to no overlap instead of looping forever.
	chunks := NewChunker(2, 5).Chunk(&models.KnowledgeDocument{ID: "d", Content: "a b c d"})
	if len(chunks) != 2 {
		t.Errorf("got %d chunks, want 2", len(chunks))
	}
}

func TestPreprocess(t *testing.T) {
	tests := map[string]string{
		"  a  b  ":           "a b",
		"line1\n\n\tline2":   "line1 line2",
		"bell\x07 removed":   "bell removed",
		"मतदान   केंद्र ":    "मतदान केंद्र",
		"\uFEFFForm 6":       "Form 6",
		"regis\u00ADtration": "registration",
	}
	for in, want := range tests {
		if got := Preprocess(in); got != want {
			t.Errorf("Preprocess(%q) = %q, want %q", in, got, want)
		}
	}
}
