package cache

import (
	"context"
	"sync"
	"time"

	"dailytens/domain/game"
)

// RecordCache is an in-memory TTL cache of game records keyed by date
type RecordCache struct {
	mu    sync.RWMutex
	items map[string]cacheItem
	ttl   time.Duration
	now   func() time.Time
}

type cacheItem struct {
	value     *game.Record
	expiresAt time.Time
}

// NewRecordCache creates a new cache. Expired entries are swept until ctx is done.
func NewRecordCache(ctx context.Context, ttl time.Duration) *RecordCache {
	cache := &RecordCache{
		items: make(map[string]cacheItem),
		ttl:   ttl,
		now:   time.Now,
	}

	go cache.cleanupExpired(ctx)

	return cache
}

// Get retrieves a copy of a cached record
func (c *RecordCache) Get(date string) (*game.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[date]
	if !exists {
		return nil, false
	}

	if c.now().After(item.expiresAt) {
		return nil, false
	}

	return item.value.Clone(), true
}

// Set stores a copy of rec
func (c *RecordCache) Set(rec *game.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[rec.Date] = cacheItem{
		value:     rec.Clone(),
		expiresAt: c.now().Add(c.ttl),
	}
}

// Len returns the number of entries, expired or not
func (c *RecordCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *RecordCache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, key)
		}
	}
}

// cleanupExpired periodically removes expired items
func (c *RecordCache) cleanupExpired(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}
