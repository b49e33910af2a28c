package content

import (
	"context"
	"sync"
	"time"
)

// Cache is a pull-through, per-collection cache in front of another Getter.
// Failed loads are not cached. Returned slices are shared between callers
// and must not be modified.
type Cache struct {
	src Getter
	ttl time.Duration

	mu      sync.Mutex
	entries map[Collection]*cacheEntry
}

type cacheEntry struct {
	mu      sync.RWMutex
	records []Record
	fetched time.Time
}

// NewCache creates a Cache over src whose entries expire after ttl.
func NewCache(src Getter, ttl time.Duration) *Cache {
	return &Cache{src: src, ttl: ttl, entries: make(map[Collection]*cacheEntry)}
}

func (c *Cache) entry(col Collection) *cacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[col]
	if !ok {
		e = &cacheEntry{}
		c.entries[col] = e
	}
	return e
}

func (e *cacheEntry) valid(ttl time.Duration) bool {
	return e.records != nil && time.Since(e.fetched) < ttl
}

// GetCollection returns the cached records of col, loading them from the
// underlying Getter when missing or expired. Collections load independently.
func (c *Cache) GetCollection(ctx context.Context, col Collection) ([]Record, error) {
	e := c.entry(col)

	e.mu.RLock()
	if e.valid(c.ttl) {
		records := e.records
		e.mu.RUnlock()
		return records, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.valid(c.ttl) {
		return e.records, nil
	}
	records, err := c.src.GetCollection(ctx, col)
	if err != nil {
		return nil, Unavailable(col, err)
	}
	if records == nil {
		records = []Record{}
	}
	e.records = records
	e.fetched = time.Now()
	return records, nil
}

// Invalidate clears every entry so the next read triggers a fresh load.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	entries := make([]*cacheEntry, 0, len(c.entries))
	for _, e := range c.entries {
		entries = append(entries, e)
	}
	c.mu.Unlock()

	for _, e := range entries {
		e.mu.Lock()
		e.records = nil
		e.mu.Unlock()
	}
}
