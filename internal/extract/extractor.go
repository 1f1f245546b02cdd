// Package extract turns knowledge base files into plain-text documents.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hyperjump/votesathi/internal/fileid"
	"github.com/hyperjump/votesathi/internal/models"
)

// ErrUnsupportedFormat is returned for file extensions with no extractor.
var ErrUnsupportedFormat = errors.New("unsupported document format")

type extractFunc func(content []byte) (string, error)

var extractors = map[string]extractFunc{
	".pdf":  extractPDF,
	".docx": extractDOCX,
	".xlsx": extractExcel,
	".txt":  extractPlain,
	".md":   extractPlain,
}

// Supported reports whether ext (with leading dot, any case) can be extracted.
func Supported(ext string) bool {
	_, ok := extractors[strings.ToLower(ext)]
	return ok
}

// Extractor extracts knowledge documents from files.
type Extractor struct {
	maxBytes int64
}

// NewExtractor returns an Extractor that refuses files larger than maxBytes.
// maxBytes <= 0 means no limit.
func NewExtractor(maxBytes int64) *Extractor {
	return &Extractor{maxBytes: maxBytes}
}

// Extract reads the file at path and returns it as a KnowledgeDocument whose
// ID is derived from the path.
func (e *Extractor) Extract(path string) (*models.KnowledgeDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if e.maxBytes > 0 && info.Size() > e.maxBytes {
		return nil, fmt.Errorf("file %s is %d bytes, limit %d", filepath.Base(path), info.Size(), e.maxBytes)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	text, err := e.ExtractBytes(content, ext)
	if err != nil {
		return nil, err
	}
	return &models.KnowledgeDocument{
		ID:        fileid.DocumentID(path),
		Title:     documentTitle(path, ext, text),
		Source:    filepath.Base(path),
		Content:   text,
		CreatedAt: info.ModTime().UTC().Truncate(time.Second),
	}, nil
}

// ExtractBytes extracts text from content based on ext (with leading dot).
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	fn, ok := extractors[strings.ToLower(ext)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return fn(content)
}

// documentTitle uses a leading markdown heading when present, else the file name.
func documentTitle(path, ext, text string) string {
	if ext == ".md" {
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if strings.HasPrefix(line, "#") {
				if title := strings.TrimSpace(strings.TrimLeft(line, "#")); title != "" {
					return title
				}
			}
			break
		}
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
