// Package fileid derives stable knowledge document IDs from file paths.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

// Prefix marks IDs of documents ingested from the filesystem.
const Prefix = "kb-"

// DocumentID returns a stable ID for the given path. Equivalent paths
// (after filepath.Clean) yield the same ID, so re-indexing a file replaces it.
func DocumentID(path string) string {
	hash := sha256.Sum256([]byte(filepath.Clean(path)))
	return Prefix + hex.EncodeToString(hash[:8])
}
