// Package storage provides an in-memory search cache.
//
// Information Hiding:
// - Map storage structure hidden from users
// - Thread-safe access via RWMutex hidden behind interface
// - Expired entries evicted on read
// - Suitable for testing and single-process use

package storage

import (
	"context"
	"sync"
	"time"

	"github.com/richinex/shopwise/model"
)

type memoryEntry struct {
	docs     []model.Document
	storedAt time.Time
}

// InMemoryCache implements SearchCache using an in-memory map.
// Data is lost when process terminates.
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewInMemoryCache creates a new in-memory cache. A zero ttl uses DefaultTTL.
func NewInMemoryCache(ttl time.Duration) *InMemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &InMemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns cached documents for key. An expired entry is evicted.
func (c *InMemoryCache) Get(ctx context.Context, key string) ([]model.Document, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if c.now().Sub(entry.storedAt) > c.ttl {
		delete(c.entries, key)
		return nil, false, nil
	}
	return copyDocs(entry.docs), true, nil
}

// Len returns the number of stored entries, expired or not.
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Put stores documents for key.
func (c *InMemoryCache) Put(ctx context.Context, key string, docs []model.Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = memoryEntry{docs: copyDocs(docs), storedAt: c.now()}
	return nil
}

// Purge removes expired entries.
func (c *InMemoryCache) Purge(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.entries {
		if c.now().Sub(entry.storedAt) > c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	return removed, nil
}

// Close is a no-op.
func (c *InMemoryCache) Close() error {
	return nil
}

// Verify InMemoryCache implements SearchCache
var _ SearchCache = (*InMemoryCache)(nil)
