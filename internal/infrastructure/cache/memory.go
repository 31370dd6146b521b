package cache

import (
	"time"

	"orderflow-backend/pkg/cache"

	gocache "github.com/patrickmn/go-cache"
)

// memoryCache keeps checkout config, dashboard stats and enum payloads in
// process. Each API instance holds its own copy.
type memoryCache struct {
	items *gocache.Cache
}

// NewMemoryCache returns a cache whose entries default to ttl and are
// swept every sweepEvery.
func NewMemoryCache(ttl, sweepEvery time.Duration) cache.CacheService {
	return &memoryCache{items: gocache.New(ttl, sweepEvery)}
}

func (c *memoryCache) Get(key string) (any, bool) {
	return c.items.Get(key)
}

// Set stores value for ttl. A non-positive ttl uses the cache default.
func (c *memoryCache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	c.items.Set(key, value, ttl)
}

func (c *memoryCache) Delete(key string) {
	c.items.Delete(key)
}
