package search

import (
	"context"

	"go.uber.org/zap"

	"github.com/richinex/shopwise/model"
	"github.com/richinex/shopwise/storage"
)

// CachedProvider serves repeated queries from a SearchCache.
// Only successful, non-empty results are cached; cache errors are logged
// and the call falls through to the wrapped provider.
type CachedProvider struct {
	next   Provider
	cache  storage.SearchCache
	logger *zap.Logger
}

// NewCachedProvider wraps next with cache.
func NewCachedProvider(next Provider, cache storage.SearchCache, logger *zap.Logger) *CachedProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedProvider{next: next, cache: cache, logger: logger}
}

// Text returns cached documents when fresh, otherwise queries next.
func (c *CachedProvider) Text(ctx context.Context, query string, maxResults int) ([]model.Document, error) {
	key := storage.CacheKey(query, maxResults)

	docs, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("search cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		c.logger.Debug("search cache hit", zap.String("key", key))
		return docs, nil
	}

	docs, err = c.next.Text(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}
	if len(docs) > 0 {
		if err := c.cache.Put(ctx, key, docs); err != nil {
			c.logger.Warn("search cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return docs, nil
}

// Verify CachedProvider implements Provider
var _ Provider = (*CachedProvider)(nil)
