package cache

import (
	"context"
	"sync"
	"time"

	"github.com/dealscope/backend/internal/domain"
)

// cacheItem represents a single cached result with expiration
type cacheItem struct {
	result     *domain.SearchResult
	expiration time.Time
}

// ResultCache is a thread-safe in-memory result cache with TTL support.
// Entries past their TTL are treated as absent: evicted lazily on lookup and
// proactively by a background sweep.
type ResultCache struct {
	data  map[string]cacheItem
	mutex sync.RWMutex
}

// NewResultCache creates a new in-memory result cache
func NewResultCache() *ResultCache {
	cache := &ResultCache{
		data: make(map[string]cacheItem),
	}

	// Sweep expired entries every 10 minutes
	go cache.cleanupExpired()

	return cache
}

// Get retrieves a result from the cache. Expired entries report a miss.
func (c *ResultCache) Get(ctx context.Context, key string) (*domain.SearchResult, error) {
	c.mutex.RLock()
	item, exists := c.data[key]
	c.mutex.RUnlock()

	if !exists {
		return nil, domain.ErrCacheMiss
	}

	if time.Now().After(item.expiration) {
		// Lazy eviction so the next sweep has less to do
		c.mutex.Lock()
		if current, ok := c.data[key]; ok && time.Now().After(current.expiration) {
			delete(c.data, key)
		}
		c.mutex.Unlock()
		return nil, domain.ErrCacheMiss
	}

	return item.result, nil
}

// Set stores a result in the cache with TTL. Concurrent writers for the same
// key race benignly: last writer wins.
func (c *ResultCache) Set(ctx context.Context, key string, result *domain.SearchResult, ttl time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = cacheItem{
		result:     result,
		expiration: time.Now().Add(ttl),
	}

	return nil
}

// Delete removes a result from the cache
func (c *ResultCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)
	return nil
}

// cleanupExpired removes expired entries from the cache periodically
func (c *ResultCache) cleanupExpired() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mutex.Lock()
		now := time.Now()
		for key, item := range c.data {
			if now.After(item.expiration) {
				delete(c.data, key)
			}
		}
		c.mutex.Unlock()
	}
}

// Size returns the current number of items in the cache (for debugging/monitoring)
func (c *ResultCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// Clear removes all items from the cache
func (c *ResultCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.data = make(map[string]cacheItem)
}
