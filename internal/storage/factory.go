package storage

import (
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/hyperjump/votesathi/internal/config"
)

// Backend names accepted by storage.backend.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// New opens the backend selected by cfg.Backend. redisClient is required only
// for the redis backend and stays owned by the caller.
func New(cfg config.StorageConfig, redisClient *redis.Client, keyPrefix string) (Storage, error) {
	switch strings.ToLower(cfg.Backend) {
	case BackendMemory:
		return NewMemoryStorage(), nil
	case BackendSQLite, "":
		return NewSQLiteStorage(cfg.DatabasePath)
	case BackendRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("redis storage backend requires a redis client")
		}
		return NewRedisStorage(redisClient, keyPrefix), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
