package royalty

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is used when the configured size is not positive.
const DefaultCacheSize = 1024

// Cache holds recently looked up registrations, including negative results
// for unregistered collections. It only ever holds committed state.
type Cache struct {
	mu      sync.RWMutex
	entries *lru.Cache[string, *Registration]

	hits   uint64
	misses uint64
}

// NewCache creates a cache holding up to size collections.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, *Registration](size)
	if err != nil {
		return nil, err
	}
	return &Cache{entries: entries}, nil
}

// Get returns the cached registration of collection. A nil registration with
// found set means the collection is known to be unregistered.
func (c *Cache) Get(collection string) (*Registration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	reg, found := c.entries.Get(collection)
	if found {
		c.hits++
		return reg, true
	}
	c.misses++
	return nil, false
}

// Add stores a registration, or nil for an unregistered collection.
func (c *Cache) Add(collection string, reg *Registration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Add(collection, reg)
}

// Invalidate drops collection from the cache.
func (c *Cache) Invalidate(collection string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Remove(collection)
}

// Stats returns hit and miss counts.
func (c *Cache) Stats() (hits, misses uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
