package indexer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/votesathi/internal/config"
	"github.com/hyperjump/votesathi/internal/extract"
	"github.com/hyperjump/votesathi/internal/fileid"
	"github.com/hyperjump/votesathi/internal/keyword"
	"github.com/hyperjump/votesathi/internal/models"
	"github.com/hyperjump/votesathi/internal/storage"
	"github.com/hyperjump/votesathi/pkg/utils"
)

const manifestKeyPrefix = "kbfile:"

// fileManifest records what was indexed for a file so unchanged files can be skipped.
type fileManifest struct {
	Path     string `json:"path"`
	ModTime  int64  `json:"mtime"`
	Size     int64  `json:"size"`
	Passages int    `json:"passages"`
}

// Indexer chunks knowledge documents and writes their passages to the index.
type Indexer struct {
	index      keyword.PassageIndex
	extractor  *extract.Extractor
	chunker    *Chunker
	extensions []string
	manifest   storage.KVStore // optional; enables skipping unchanged files
	logger     *zap.Logger
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for debug output (file indexed, document deleted, etc.).
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = utils.OrNop(l) }
}

// WithManifest records per-file mtime and size in kv so IndexFile skips
// unchanged files. Only use it with a persistent passage index.
func WithManifest(kv storage.KVStore) IndexerOption {
	return func(idx *Indexer) { idx.manifest = kv }
}

// NewIndexer creates an indexer. An empty cfg.Extensions admits every
// format the extractor supports.
func NewIndexer(index keyword.PassageIndex, extractor *extract.Extractor, cfg config.KnowledgeConfig, opts ...IndexerOption) *Indexer {
	if extractor == nil {
		extractor = extract.NewExtractor(0)
	}
	idx := &Indexer{
		index:      index,
		extractor:  extractor,
		chunker:    NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
		extensions: cfg.Extensions,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// IndexDocument replaces all passages of doc and returns how many were written.
func (idx *Indexer) IndexDocument(ctx context.Context, doc *models.KnowledgeDocument) (int, error) {
	if doc == nil || doc.ID == "" {
		return 0, fmt.Errorf("document ID is required")
	}
	if _, err := idx.index.DeleteDocument(ctx, doc.ID); err != nil {
		return 0, fmt.Errorf("failed to clear previous passages: %w", err)
	}
	clean := *doc
	clean.Content = Preprocess(doc.Content)
	passages := idx.chunker.Chunk(&clean)
	for _, p := range passages {
		if err := idx.index.Index(ctx, p); err != nil {
			return 0, fmt.Errorf("failed to index passage %s: %w", p.ID, err)
		}
	}
	idx.logger.Debug("indexer document indexed",
		zap.String("doc_id", doc.ID),
		zap.String("source", doc.Source),
		zap.Int("passages", len(passages)))
	return len(passages), nil
}

// IndexFile extracts and indexes one file. It returns the number of passages
// written, or 0 when the file is unchanged since it was last indexed.
func (idx *Indexer) IndexFile(ctx context.Context, path string) (int, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(absPath))
	if !idx.Accepts(absPath) {
		return 0, fmt.Errorf("extension %q not in allowed list", ext)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return 0, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("not a regular file: %s", absPath)
	}

	docID := fileid.DocumentID(absPath)
	current := fileManifest{Path: absPath, ModTime: info.ModTime().UnixNano(), Size: info.Size()}
	if idx.unchanged(ctx, docID, current) {
		idx.logger.Debug("indexer skipping unchanged file", zap.String("path", absPath))
		return 0, nil
	}

	doc, err := idx.extractor.Extract(absPath)
	if err != nil {
		return 0, fmt.Errorf("extract content: %w", err)
	}
	n, err := idx.IndexDocument(ctx, doc)
	if err != nil {
		return 0, err
	}
	if idx.manifest != nil {
		current.Passages = n
		if err := storage.SetJSON(ctx, idx.manifest, manifestKeyPrefix+docID, current); err != nil {
			idx.logger.Warn("indexer manifest write failed", zap.String("path", absPath), zap.Error(err))
		}
	}
	return n, nil
}

func (idx *Indexer) unchanged(ctx context.Context, docID string, current fileManifest) bool {
	if idx.manifest == nil {
		return false
	}
	var prev fileManifest
	if err := storage.GetJSON(ctx, idx.manifest, manifestKeyPrefix+docID, &prev); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			idx.logger.Warn("indexer manifest read failed", zap.String("path", current.Path), zap.Error(err))
		}
		return false
	}
	return prev.Path == current.Path && prev.ModTime == current.ModTime && prev.Size == current.Size
}

// IndexDirectory walks dir recursively and indexes each accepted regular file.
// Files that fail to extract are logged and skipped. Returns the number of
// files (re)indexed.
func (idx *Indexer) IndexDirectory(ctx context.Context, dir string) (int, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return 0, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("not a directory: %s", absDir)
	}

	n := 0
	err = filepath.WalkDir(absDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !idx.Accepts(path) {
			return nil
		}
		written, indexErr := idx.IndexFile(ctx, path)
		if indexErr != nil {
			idx.logger.Warn("indexer file skipped", zap.String("path", path), zap.Error(indexErr))
			return nil
		}
		if written > 0 {
			n++
		}
		return nil
	})
	return n, err
}

// RemoveFile deletes every passage that came from path.
func (idx *Indexer) RemoveFile(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}
	docID := fileid.DocumentID(absPath)
	removed, err := idx.index.DeleteDocument(ctx, docID)
	if err != nil {
		return fmt.Errorf("failed to delete passages: %w", err)
	}
	if idx.manifest != nil {
		if err := idx.manifest.Delete(ctx, manifestKeyPrefix+docID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			idx.logger.Warn("indexer manifest delete failed", zap.String("path", absPath), zap.Error(err))
		}
	}
	idx.logger.Debug("indexer document deleted", zap.String("path", absPath), zap.Int("passages", removed))
	return nil
}

// Accepts reports whether path has an extension the indexer handles.
func (idx *Indexer) Accepts(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if !extract.Supported(ext) {
		return false
	}
	return len(idx.extensions) == 0 || extensionAllowed(ext, idx.extensions)
}

func extensionAllowed(ext string, allowed []string) bool {
	extNorm := strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == extNorm {
			return true
		}
	}
	return false
}
