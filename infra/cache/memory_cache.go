package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/remitflow/remitflow/pkg/cache"
)

// MemoryRateCache implements cache.RateCache with an in-process map.
// Entries are never evicted: stale rates remain available as a fallback
// of last resort, and the keyspace is bounded by configured currencies.
type MemoryRateCache struct {
	mu      sync.RWMutex
	entries map[string]cache.Entry
}

// NewMemoryRateCache creates an empty in-memory rate cache.
func NewMemoryRateCache() *MemoryRateCache {
	return &MemoryRateCache{entries: make(map[string]cache.Entry)}
}

func pairKey(from, to string) string {
	return fmt.Sprintf("rate:%s:%s", from, to)
}

// Get returns the cached entry for the ordered pair, or nil on a miss.
func (c *MemoryRateCache) Get(_ context.Context, from, to string) (*cache.Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[pairKey(from, to)]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

// Set stores an entry for the ordered pair, overwriting any prior one.
func (c *MemoryRateCache) Set(_ context.Context, from, to string, entry *cache.Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[pairKey(from, to)] = *entry
	return nil
}
