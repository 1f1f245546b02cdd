// Package storage defines persistence for session memory, consent, and the audit log.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hyperjump/votesathi/internal/models"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("not found")

// KVStore is a byte-valued key-value store.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// AuditLog is an append-only record of handled requests.
type AuditLog interface {
	AppendAudit(ctx context.Context, rec *models.AuditRecord) error
	// ListAudit returns up to limit most recent records for a session, oldest first.
	ListAudit(ctx context.Context, sessionID string, limit int) ([]*models.AuditRecord, error)
}

// Storage combines the key-value store and audit log of one backend.
type Storage interface {
	KVStore
	AuditLog
	Close() error
}

// GetJSON reads key and decodes it into v.
func GetJSON(ctx context.Context, kv KVStore, key string, v interface{}) error {
	data, err := kv.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

// SetJSON encodes v and writes it under key.
func SetJSON(ctx context.Context, kv KVStore, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return kv.Set(ctx, key, data)
}
