package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// recordingHandler accepts .txt files and records calls.
type recordingHandler struct {
	mu      sync.Mutex
	indexed []string
	removed []string
}

func (h *recordingHandler) Accepts(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".txt")
}

func (h *recordingHandler) IndexFile(_ context.Context, path string) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.indexed = append(h.indexed, path)
	return 1, nil
}

func (h *recordingHandler) RemoveFile(_ context.Context, path string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removed = append(h.removed, path)
	return nil
}

func (h *recordingHandler) snapshot() (indexed, removed []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.indexed...), append([]string(nil), h.removed...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func startWatcher(t *testing.T, root string, h Handler) *Watcher {
	t.Helper()
	w := NewWatcher([]string{root}, h, WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		w.Stop()
		cancel()
	})
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	return w
}

func TestWatcher_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	h := &recordingHandler{}
	startWatcher(t, dir, h)

	path := filepath.Join(dir, "guide.txt")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte(strings.Repeat("x", i+1)), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "ignored.bin"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool {
		indexed, _ := h.snapshot()
		return len(indexed) >= 1
	})
	time.Sleep(150 * time.Millisecond)
	indexed, _ := h.snapshot()
	if len(indexed) != 1 || indexed[0] != path {
		t.Errorf("indexed = %v, want one call for %s", indexed, path)
	}
}

func TestWatcher_Remove(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "old.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	h := &recordingHandler{}
	startWatcher(t, dir, h)

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool {
		_, removed := h.snapshot()
		return len(removed) == 1 && removed[0] == path
	})
}

func TestWatcher_NewDirectory(t *testing.T) {
	dir := t.TempDir()
	h := &recordingHandler{}
	startWatcher(t, dir, h)

	sub := filepath.Join(dir, "circulars")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	// Give the watcher a moment to register the new directory.
	time.Sleep(100 * time.Millisecond)
	path := filepath.Join(sub, "notice.txt")
	if err := os.WriteFile(path, []byte("polling notice"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool {
		indexed, _ := h.snapshot()
		for _, p := range indexed {
			if p == path {
				return true
			}
		}
		return false
	})
}

func TestWatcher_StartCreatesMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "kb", "docs")
	startWatcher(t, root, &recordingHandler{})
	if _, err := os.Stat(root); err != nil {
		t.Errorf("root should exist after Start: %v", err)
	}
}

func TestWatcher_StopDropsPending(t *testing.T) {
	dir := t.TempDir()
	h := &recordingHandler{}
	w := NewWatcher([]string{dir}, h, WithDebounce(time.Hour))
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return w.Pending() == 1 })
	w.Stop()
	w.Stop()
	if w.Pending() != 0 {
		t.Errorf("Pending = %d after Stop", w.Pending())
	}
}
