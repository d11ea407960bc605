// Package storage provides the search result cache.
//
// Information Hiding:
// - Cache backend implementation details hidden behind interface
// - Allows swapping between memory and SQLite without API changes
// - Expiry handled inside each backend

package storage

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/richinex/shopwise/model"
)

// SearchCache stores search results keyed by query.
type SearchCache interface {
	// Get returns cached documents for key.
	// ok is false on a miss or an expired entry; err only for backend failures.
	Get(ctx context.Context, key string) (docs []model.Document, ok bool, err error)

	// Put stores documents for key.
	Put(ctx context.Context, key string, docs []model.Document) error

	// Purge removes expired entries and returns how many were removed.
	Purge(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}

// DefaultTTL is how long a cached search stays fresh.
const DefaultTTL = 6 * time.Hour

// CacheKey normalizes a query and result limit into a cache key.
// Case and surrounding/internal whitespace runs do not produce distinct keys.
func CacheKey(query string, maxResults int) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	return strconv.Itoa(maxResults) + ":" + normalized
}

func copyDocs(docs []model.Document) []model.Document {
	copied := make([]model.Document, len(docs))
	copy(copied, docs)
	return copied
}
