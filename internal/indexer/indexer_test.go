package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperjump/votesathi/internal/config"
	"github.com/hyperjump/votesathi/internal/fileid"
	"github.com/hyperjump/votesathi/internal/keyword"
	"github.com/hyperjump/votesathi/internal/storage"
)

func testIndexer(t *testing.T, manifest storage.KVStore) (*Indexer, *keyword.BleveIndex) {
	t.Helper()
	kw, err := keyword.NewBleveIndex("")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = kw.Close() })
	cfg := config.KnowledgeConfig{ChunkSize: 4, ChunkOverlap: 1, Extensions: []string{".txt", ".md"}}
	var opts []IndexerOption
	if manifest != nil {
		opts = append(opts, WithManifest(manifest))
	}
	return NewIndexer(kw, nil, cfg, opts...), kw
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func docCount(t *testing.T, kw *keyword.BleveIndex) uint64 {
	t.Helper()
	n, err := kw.DocCount()
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func TestExtensionAllowed(t *testing.T) {
	tests := []struct {
		ext     string
		allowed []string
		want    bool
	}{
		{".txt", []string{".txt", ".md"}, true},
		{".TXT", []string{"txt"}, true},
		{".pdf", []string{".txt"}, false},
		{"", []string{".txt"}, false},
	}
	for _, tt := range tests {
		if got := extensionAllowed(tt.ext, tt.allowed); got != tt.want {
			t.Errorf("extensionAllowed(%q, %v) = %v, want %v", tt.ext, tt.allowed, got, tt.want)
		}
	}
}

func TestIndexFile_CreateAndUpdate(t *testing.T) {
	dir := t.TempDir()
	idx, kw := testIndexer(t, nil)
	ctx := context.Background()

	path := filepath.Join(dir, "forms.txt")
	writeFile(t, path, "Form 6 registers new voters in the roll")
	n, err := idx.IndexFile(ctx, path)
	if err != nil {
		t.Fatalf("IndexFile: %v", err)
	}
	if n != 3 || docCount(t, kw) != 3 {
		t.Fatalf("passages = %d, DocCount = %d", n, docCount(t, kw))
	}

	writeFile(t, path, "Form 8 corrects entries")
	if n, err = idx.IndexFile(ctx, path); err != nil {
		t.Fatalf("IndexFile update: %v", err)
	}
	if n != 1 || docCount(t, kw) != 1 {
		t.Errorf("after update passages = %d, DocCount = %d", n, docCount(t, kw))
	}
	results, err := kw.Search(ctx, "corrects", 5, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].DocumentID != fileid.DocumentID(path) || results[0].Source != "forms.txt" {
		t.Errorf("results = %+v", results)
	}
}

func TestIndexFile_RejectsExtension(t *testing.T) {
	dir := t.TempDir()
	idx, _ := testIndexer(t, nil)
	path := filepath.Join(dir, "data.xlsx")
	writeFile(t, path, "x")
	if _, err := idx.IndexFile(context.Background(), path); err == nil {
		t.Error("expected error for extension outside the allowed list")
	}
}

func TestIndexFile_SkipsUnchangedWithManifest(t *testing.T) {
	dir := t.TempDir()
	manifest := storage.NewMemoryStorage()
	idx, _ := testIndexer(t, manifest)
	ctx := context.Background()

	path := filepath.Join(dir, "polling.md")
	writeFile(t, path, "# Polling\nStations open at seven")
	if n, err := idx.IndexFile(ctx, path); err != nil || n == 0 {
		t.Fatalf("first IndexFile = %d, %v", n, err)
	}
	if n, err := idx.IndexFile(ctx, path); err != nil || n != 0 {
		t.Errorf("unchanged IndexFile = %d, %v; want skip", n, err)
	}

	writeFile(t, path, "# Polling\nStations open at seven and close at six")
	later := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}
	if n, err := idx.IndexFile(ctx, path); err != nil || n == 0 {
		t.Errorf("changed IndexFile = %d, %v; want reindex", n, err)
	}
}

func TestIndexDirectory(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "a.txt"), "alpha beta")
	writeFile(t, filepath.Join(sub, "b.md"), "gamma delta")
	writeFile(t, filepath.Join(dir, "skip.go"), "package main")

	idx, kw := testIndexer(t, nil)
	n, err := idx.IndexDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("IndexDirectory: %v", err)
	}
	if n != 2 || docCount(t, kw) != 2 {
		t.Errorf("files = %d, DocCount = %d", n, docCount(t, kw))
	}
	if _, err := idx.IndexDirectory(context.Background(), filepath.Join(dir, "a.txt")); err == nil {
		t.Error("expected error for non-directory")
	}
}

func TestRemoveFile(t *testing.T) {
	dir := t.TempDir()
	manifest := storage.NewMemoryStorage()
	idx, kw := testIndexer(t, manifest)
	ctx := context.Background()

	path := filepath.Join(dir, "a.txt")
	writeFile(t, path, "one two three four five six")
	if _, err := idx.IndexFile(ctx, path); err != nil {
		t.Fatal(err)
	}
	if err := idx.RemoveFile(ctx, path); err != nil {
		t.Fatalf("RemoveFile: %v", err)
	}
	if docCount(t, kw) != 0 {
		t.Errorf("DocCount = %d after remove", docCount(t, kw))
	}
	if _, err := manifest.Get(ctx, manifestKeyPrefix+fileid.DocumentID(path)); err == nil {
		t.Error("manifest entry should be removed")
	}
	// Re-adding the same unchanged file must index again.
	if n, err := idx.IndexFile(ctx, path); err != nil || n == 0 {
		t.Errorf("re-add IndexFile = %d, %v", n, err)
	}
}
