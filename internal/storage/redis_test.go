package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/votesathi/internal/models"
)

func TestRedisStorage_KV(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewRedisStorage(db, "vs:")
	ctx := context.Background()

	mock.ExpectSet("vs:kv:consent:s1", "true", 0).SetVal("OK")
	require.NoError(t, s.Set(ctx, "consent:s1", []byte("true")))

	mock.ExpectGet("vs:kv:consent:s1").SetVal("true")
	got, err := s.Get(ctx, "consent:s1")
	require.NoError(t, err)
	assert.Equal(t, "true", string(got))

	mock.ExpectGet("vs:kv:missing").RedisNil()
	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	mock.ExpectGet("vs:kv:broken").SetErr(errors.New("connection reset"))
	_, err = s.Get(ctx, "broken")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))

	mock.ExpectDel("vs:kv:consent:s1").SetVal(1)
	require.NoError(t, s.Delete(ctx, "consent:s1"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStorage_Audit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewRedisStorage(db, "vs:")
	ctx := context.Background()

	rec := &models.AuditRecord{ID: "a1", SessionID: "s1", Query: "q", CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	mock.ExpectRPush("vs:audit:s1", string(data)).SetVal(1)
	require.NoError(t, s.AppendAudit(ctx, rec))

	mock.ExpectLRange("vs:audit:s1", -5, -1).SetVal([]string{string(data)})
	list, err := s.ListAudit(ctx, "s1", 5)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a1", list[0].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}
