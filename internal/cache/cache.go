// Package cache stores synthesized chat responses keyed by a normalized query fingerprint.
package cache

import (
	"context"
	"time"

	"github.com/hyperjump/votesathi/internal/models"
	"github.com/hyperjump/votesathi/pkg/utils"
)

// DefaultTTL is how long a cached response stays valid after it is written.
const DefaultTTL = 24 * time.Hour

// ResponseCache is a TTL cache of chat responses. Set overwrites any existing entry.
type ResponseCache interface {
	Get(ctx context.Context, key string) (*models.ChatResponse, bool)
	Set(ctx context.Context, key string, resp *models.ChatResponse)
}

// Fingerprint builds the cache key for a query in a locale.
func Fingerprint(locale, message string) string {
	return models.NormalizeLocale(locale) + ":" + utils.NormalizeQuery(message)
}
