package storage

import (
	"context"
	"sync"

	"github.com/hyperjump/votesathi/internal/models"
)

// MemoryStorage keeps everything in process memory. Contents are lost on exit.
type MemoryStorage struct {
	mu    sync.RWMutex
	kv    map[string][]byte
	audit []*models.AuditRecord
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{kv: make(map[string][]byte)}
}

func (s *MemoryStorage) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.kv[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *MemoryStorage) Set(_ context.Context, key string, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)
	s.mu.Lock()
	s.kv[key] = v
	s.mu.Unlock()
	return nil
}

func (s *MemoryStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.kv, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStorage) AppendAudit(_ context.Context, rec *models.AuditRecord) error {
	r := *rec
	s.mu.Lock()
	s.audit = append(s.audit, &r)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStorage) ListAudit(_ context.Context, sessionID string, limit int) ([]*models.AuditRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.AuditRecord
	for _, r := range s.audit {
		if r.SessionID == sessionID {
			c := *r
			out = append(out, &c)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (s *MemoryStorage) Close() error { return nil }
