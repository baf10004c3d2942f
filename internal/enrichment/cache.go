package enrichment

import (
	"strconv"
	"sync"

	"flixlist/internal/catalog"
)

// Key identifies one secondary lookup.
type Key struct {
	MediaType  catalog.MediaType
	ExternalID int64
}

func (k Key) String() string {
	return k.MediaType.String() + ":" + strconv.FormatInt(k.ExternalID, 10)
}

// Cache is a concurrency-safe map of resolved lookups.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]catalog.Rating
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[Key]catalog.Rating)}
}

// Lookup returns the stored rating and whether the key has been resolved.
func (c *Cache) Lookup(key Key) (catalog.Rating, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rating, ok := c.entries[key]
	return rating, ok
}

// Store records the outcome of a lookup. Absent ratings are stored too.
func (c *Cache) Store(key Key, rating catalog.Rating) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = rating
}

// Len returns the number of resolved keys.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
