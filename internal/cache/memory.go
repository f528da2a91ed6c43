package cache

import (
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is a process-local Cache backed by go-cache. Entries expire
// individually and a janitor goroutine sweeps them every cleanup interval.
type MemoryCache struct {
	items     *gocache.Cache
	evictions atomic.Uint64
}

// NewMemoryCache creates a memory cache whose entries live for defaultTTL
// unless Set is given a positive TTL
func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	c := &MemoryCache{items: gocache.New(defaultTTL, cleanupInterval)}
	c.items.OnEvicted(func(string, interface{}) {
		c.evictions.Add(1)
	})
	return c
}

// Get returns the stored bytes. Entries of any other type count as a miss.
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	v, ok := c.items.Get(key)
	if !ok {
		return nil, false
	}
	data, ok := v.([]byte)
	return data, ok
}

// Set stores value for ttl; a non-positive ttl uses the cache default
func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	c.items.Set(key, value, ttl)
	return nil
}

// Delete removes key
func (c *MemoryCache) Delete(key string) error {
	c.items.Delete(key)
	return nil
}

// Clear drops every entry
func (c *MemoryCache) Clear() error {
	c.items.Flush()
	return nil
}

// Len counts entries, including expired ones the janitor has not swept
func (c *MemoryCache) Len() int {
	return c.items.ItemCount()
}

// Evictions counts entries removed by Delete or expiry. Clear is not counted.
func (c *MemoryCache) Evictions() uint64 {
	return c.evictions.Load()
}
