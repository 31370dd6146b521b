package cache

import "time"

// Keys shared by the usecases that read and invalidate cached values.
const (
	KeyShippingConfig = "shipping:config"
	KeyDashboardStats = "stats:dashboard"
	KeyAnalytics      = "stats:analytics"
	KeyEnums          = "system:config:enums"
)

// OrderDerivedKeys are the cached aggregates that go stale whenever an order
// is written.
var OrderDerivedKeys = []string{KeyDashboardStats, KeyAnalytics}

// CacheService is the key/value cache the usecases read through.
type CacheService interface {
	// Get returns the value and true if present and not expired.
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
	Delete(key string)
}

// Remember returns the cached T under key, or calls load and caches its
// result for ttl. Load errors are not cached. A nil cache always loads.
func Remember[T any](c CacheService, key string, ttl time.Duration, load func() (T, error)) (T, bool, error) {
	if c != nil {
		if v, ok := c.Get(key); ok {
			if typed, ok := v.(T); ok {
				return typed, true, nil
			}
		}
	}

	v, err := load()
	if err != nil {
		return v, false, err
	}
	if c != nil {
		c.Set(key, v, ttl)
	}
	return v, false, nil
}
