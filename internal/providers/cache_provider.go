package providers

import (
	"storybank/internal/models"
	"storybank/internal/structures"
	"unsafe"

	"github.com/coocood/freecache"
)

// CacheProvider is a read-through freecache layer in front of a KeyValueStore.
// Writes go to the store first and only reach the cache once they succeeded.
type CacheProvider struct {
	inner models.KeyValueStore
	cache *freecache.Cache
}

// NewCacheProvider wraps inner with a freecache of conf.Cache.Size megabytes, or returns
// inner untouched when the cache is disabled.
func NewCacheProvider(conf *structures.Config, logger Logger, inner models.KeyValueStore) models.KeyValueStore {
	if !conf.Cache.Enabled || conf.Cache.Size <= 0 {
		logger.Infof(TypeApp, "Read cache disabled")
		return inner
	}

	logger.Infof(TypeApp, "Read cache initialized: %dMB", conf.Cache.Size)

	return &CacheProvider{
		inner: inner,
		cache: freecache.NewCache(conf.Cache.Size * 1024 * 1024),
	}
}

// unsafeStringToBytes converts string to []byte without allocation.
// Safe when the result is only read (not modified), which is the case
// for freecache; it copies keys internally.
func unsafeStringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func (c *CacheProvider) lookup(key string) ([]byte, bool) {
	val, err := c.cache.Get(unsafeStringToBytes(key))
	if err != nil {
		return nil, false
	}
	return val, true
}

func (c *CacheProvider) Get(key string) ([]byte, bool, error) {
	if val, ok := c.lookup(key); ok {
		return val, true, nil
	}
	return c.fill(key)
}

// fill reads key from the store and caches it when present.
func (c *CacheProvider) fill(key string) ([]byte, bool, error) {
	val, ok, err := c.inner.Get(key)
	if err != nil || !ok {
		return val, ok, err
	}
	_ = c.cache.Set([]byte(key), val, 0)
	return val, true, nil
}

func (c *CacheProvider) Set(key string, value []byte) error {
	if err := c.inner.Set(key, value); err != nil {
		return err
	}
	// Entries too large for freecache are simply not cached; drop any stale copy.
	if err := c.cache.Set([]byte(key), value, 0); err != nil {
		c.cache.Del(unsafeStringToBytes(key))
	}
	return nil
}

func (c *CacheProvider) Remove(key string) error {
	c.cache.Del(unsafeStringToBytes(key))
	return c.inner.Remove(key)
}

func (c *CacheProvider) Keys() ([]string, error) {
	return c.inner.Keys()
}
