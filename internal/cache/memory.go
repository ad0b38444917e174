package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is an expiring in-process cache. Values are copied in and
// out, so callers may reuse their buffers.
type MemoryCache struct {
	items *gocache.Cache
}

// NewMemoryCache creates a cache whose entries live for defaultTTL and are
// swept every cleanupInterval
func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{items: gocache.New(defaultTTL, cleanupInterval)}
}

func (c *MemoryCache) Get(key string) ([]byte, bool) {
	v, ok := c.items.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, false
	}
	return append([]byte(nil), b...), true
}

// Set stores value for ttl (0 = the cache default)
func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	c.items.Set(key, append([]byte(nil), value...), ttl)
	return nil
}

func (c *MemoryCache) Delete(key string) error {
	c.items.Delete(key)
	return nil
}

func (c *MemoryCache) Clear() error {
	c.items.Flush()
	return nil
}

// Len returns the number of entries, expired ones included until swept
func (c *MemoryCache) Len() int {
	return c.items.ItemCount()
}
