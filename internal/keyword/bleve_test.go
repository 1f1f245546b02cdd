package keyword

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hyperjump/votesathi/internal/models"
)

func seedIndex(t *testing.T, idx *BleveIndex) {
	t.Helper()
	ctx := context.Background()
	passages := []*models.Passage{
		{ID: "doc-a#0", DocumentID: "doc-a", Title: "Form 6 guide", Source: "forms.md", Content: "Use Form 6 to register as a new voter in your constituency.", ChunkIndex: 0},
		{ID: "doc-a#1", DocumentID: "doc-a", Title: "Form 6 guide", Source: "forms.md", Content: "Attach proof of age and address with the application.", ChunkIndex: 1},
		{ID: "doc-b#0", DocumentID: "doc-b", Title: "Polling day", Source: "polling.txt", Content: "Polling stations open at 7 am. Carry your EPIC card or another approved identity document.", ChunkIndex: 0},
	}
	for _, p := range passages {
		if err := idx.Index(ctx, p); err != nil {
			t.Fatalf("Index %s: %v", p.ID, err)
		}
	}
}

func TestBleveIndex_SearchReturnsStoredPassage(t *testing.T) {
	idx, err := NewBleveIndex(filepath.Join(t.TempDir(), "bleve"))
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	defer func() {
		_ = idx.Close()
	}()
	seedIndex(t, idx)

	results, err := idx.Search(context.Background(), "epic card", 5, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected a result for \"epic card\"")
	}
	got := results[0]
	if got.ID != "doc-b#0" || got.DocumentID != "doc-b" || got.Source != "polling.txt" || got.Title != "Polling day" {
		t.Errorf("first result = %+v", got)
	}
	if got.Score <= 0 {
		t.Errorf("Score = %v, want > 0", got.Score)
	}
}

func TestBleveIndex_ChunkIndexRoundTrips(t *testing.T) {
	idx, err := NewBleveIndex("")
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	defer func() {
		_ = idx.Close()
	}()
	seedIndex(t, idx)

	results, err := idx.Search(context.Background(), "proof address", 5, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 || results[0].ID != "doc-a#1" || results[0].ChunkIndex != 1 {
		t.Fatalf("results = %+v", results)
	}
}

func TestBleveIndex_TitleBoost(t *testing.T) {
	idx, err := NewBleveIndex("")
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	defer func() {
		_ = idx.Close()
	}()
	seedIndex(t, idx)

	results, err := idx.Search(context.Background(), "polling", 5, &SearchOptions{TitleBoost: 3})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "doc-b#0" {
		t.Fatalf("results = %+v", results)
	}
	if results[0].Content == "" {
		t.Error("boosted search should carry stored content")
	}
}

func TestBleveIndex_Fuzzy(t *testing.T) {
	idx, err := NewBleveIndex("")
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	defer func() {
		_ = idx.Close()
	}()
	seedIndex(t, idx)

	ctx := context.Background()
	exact, err := idx.Search(ctx, "registr", 5, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(exact) != 0 {
		t.Fatalf("exact search for a typo should miss, got %d", len(exact))
	}
	fuzzy, err := idx.Search(ctx, "registr", 5, &SearchOptions{FuzzyEnabled: true, Fuzziness: 2})
	if err != nil {
		t.Fatalf("Search fuzzy: %v", err)
	}
	if len(fuzzy) == 0 || fuzzy[0].DocumentID != "doc-a" {
		t.Fatalf("fuzzy results = %+v", fuzzy)
	}
}

func TestBleveIndex_DeleteDocument(t *testing.T) {
	idx, err := NewBleveIndex("")
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	defer func() {
		_ = idx.Close()
	}()
	seedIndex(t, idx)

	ctx := context.Background()
	n, err := idx.DeleteDocument(ctx, "doc-a")
	if err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}
	count, err := idx.DocCount()
	if err != nil {
		t.Fatalf("DocCount: %v", err)
	}
	if count != 1 {
		t.Errorf("DocCount = %d, want 1", count)
	}
	results, err := idx.Search(ctx, "form", 5, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("deleted passages still searchable: %+v", results)
	}
}

func TestBleveIndex_ReopensExistingIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bleve")
	idx, err := NewBleveIndex(path)
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	seedIndex(t, idx)
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewBleveIndex(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() {
		_ = reopened.Close()
	}()
	count, err := reopened.DocCount()
	if err != nil {
		t.Fatalf("DocCount: %v", err)
	}
	if count != 3 {
		t.Errorf("DocCount = %d, want 3", count)
	}
}

func TestBleveIndex_EmptyQuery(t *testing.T) {
	idx, err := NewBleveIndex("")
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	defer func() {
		_ = idx.Close()
	}()
	results, err := idx.Search(context.Background(), "   ", 5, nil)
	if err != nil || results != nil {
		t.Errorf("Search(blank) = %v, %v", results, err)
	}
}
