package providers

import (
	"storybank/internal/models"
	"storybank/internal/structures"
)

// MetricsCacheProvider wraps a CacheProvider and increments hit/miss counters
// on every Get call.
type MetricsCacheProvider struct {
	*CacheProvider
	metrics MetricsProviderInterface
}

func (c *MetricsCacheProvider) Get(key string) ([]byte, bool, error) {
	if val, ok := c.lookup(key); ok {
		c.metrics.IncCacheHits()
		return val, true, nil
	}
	c.metrics.IncCacheMisses()
	return c.fill(key)
}

// NewInstrumentedCacheProvider creates a cache provider wrapped with metrics instrumentation.
// When cache is disabled, returns the plain store without metrics wrapping
// to avoid counting phantom cache misses.
func NewInstrumentedCacheProvider(conf *structures.Config, logger Logger, metrics MetricsProviderInterface, inner models.KeyValueStore) models.KeyValueStore {
	store := NewCacheProvider(conf, logger, inner)
	cp, ok := store.(*CacheProvider)
	if !ok {
		return store
	}
	return &MetricsCacheProvider{
		CacheProvider: cp,
		metrics:       metrics,
	}
}
