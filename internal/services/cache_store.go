package services

import (
	"errors"
	"fmt"
	"storybank/internal/models"
	"storybank/internal/providers"
	"storybank/internal/structures"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/multierr"
)

// CacheStoreInterface is the namespaced, TTL-aware view of the key-value store.
// Reads never fail: anything missing, malformed or expired is reported as absent.
type CacheStoreInterface interface {
	SetItem(key string, value any, ttl time.Duration) error
	GetItem(key string, dst any) bool
	GetRaw(key string) (json.RawMessage, bool)
	RemoveItem(key string) error
	Clear() error
	Keys() []string
	Count() int
	Now() time.Time
}

type CacheStore struct {
	mu     sync.Mutex
	store  models.KeyValueStore
	prefix string
	now    func() time.Time
	logger providers.Logger
}

type Option func(*CacheStore)

// WithClock overrides the clock used to stamp and expire entries.
func WithClock(now func() time.Time) Option {
	return func(c *CacheStore) {
		if now != nil {
			c.now = now
		}
	}
}

func WithPrefix(prefix string) Option {
	return func(c *CacheStore) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

func NewCacheStore(conf *structures.Config, store models.KeyValueStore, logger providers.Logger) *CacheStore {
	return NewCacheStoreWithOptions(store, logger, WithPrefix(conf.Storage.Prefix))
}

func NewCacheStoreWithOptions(store models.KeyValueStore, logger providers.Logger, opts ...Option) *CacheStore {
	c := &CacheStore{
		store:  store,
		prefix: providers.DefaultKeyPrefix,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CacheStore) Now() time.Time {
	return c.now()
}

func (c *CacheStore) SetItem(key string, value any, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setLocked(key, value, ttl)
}

func (c *CacheStore) GetItem(key string, dst any) bool {
	raw, ok := c.GetRaw(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.logger.Debugf(providers.TypeStorage, "Cached value %q does not decode: %s", key, err)
		return false
	}
	return true
}

func (c *CacheStore) GetRaw(key string) (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getLocked(key)
}

func (c *CacheStore) RemoveItem(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Remove(c.prefix + key)
}

// Clear removes every namespaced key and leaves foreign keys untouched.
func (c *CacheStore) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys, err := c.store.Keys()
	if err != nil {
		return fmt.Errorf("listing keys: %w", err)
	}
	var errs error
	for _, k := range keys {
		if strings.HasPrefix(k, c.prefix) {
			errs = multierr.Append(errs, c.store.Remove(k))
		}
	}
	return errs
}

// Keys lists the live namespaced keys without their prefix. Expired entries found on
// the way are removed.
func (c *CacheStore) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	all, err := c.store.Keys()
	if err != nil {
		c.logger.Errorf(providers.TypeStorage, "Listing keys: %s", err)
		return nil
	}
	keys := make([]string, 0, len(all))
	for _, k := range all {
		key, ok := strings.CutPrefix(k, c.prefix)
		if !ok {
			continue
		}
		if _, live := c.getLocked(key); live {
			keys = append(keys, key)
		}
	}
	return keys
}

// Count returns the number of namespaced keys without decoding them, so expired
// entries not yet swept are included.
func (c *CacheStore) Count() int {
	all, err := c.store.Keys()
	if err != nil {
		c.logger.Errorf(providers.TypeStorage, "Listing keys: %s", err)
		return 0
	}
	n := 0
	for _, k := range all {
		if strings.HasPrefix(k, c.prefix) {
			n++
		}
	}
	return n
}

// Txn reads and writes namespaced keys while Atomic holds the store lock.
// It must not be used after fn returns.
type Txn struct {
	c *CacheStore
}

func (t Txn) GetRaw(key string) (json.RawMessage, bool) {
	return t.c.getLocked(key)
}

func (t Txn) SetItem(key string, value any, ttl time.Duration) error {
	return t.c.setLocked(key, value, ttl)
}

// Atomic runs fn with the store lock held, so every key it touches changes together
// with respect to other CacheStore calls.
func (c *CacheStore) Atomic(fn func(tx Txn) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn(Txn{c: c})
}

// Update runs a read-modify-write of key while holding the store lock. fn receives
// the current value (ok is false when absent) and returns the value to store.
func (c *CacheStore) Update(key string, ttl time.Duration, fn func(current json.RawMessage, ok bool) (any, error)) error {
	return c.Atomic(func(tx Txn) error {
		current, ok := tx.GetRaw(key)
		next, err := fn(current, ok)
		if err != nil {
			return err
		}
		return tx.SetItem(key, next, ttl)
	})
}

// Export copies every raw pair of the underlying store, foreign keys included.
func (c *CacheStore) Export() (map[string][]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys, err := c.store.Keys()
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		val, ok, err := c.store.Get(k)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", k, err)
		}
		if ok {
			out[k] = val
		}
	}
	return out, nil
}

// Import writes raw pairs into an empty store. A store that already holds any key is
// left untouched and models.ErrStoreNotEmpty is returned.
func (c *CacheStore) Import(entries map[string][]byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys, err := c.store.Keys()
	if err != nil {
		return 0, fmt.Errorf("listing keys: %w", err)
	}
	if len(keys) > 0 {
		return 0, fmt.Errorf("%d keys present: %w", len(keys), models.ErrStoreNotEmpty)
	}

	restored := 0
	for k, v := range entries {
		if err := c.store.Set(k, v); err != nil {
			return restored, fmt.Errorf("restoring %q: %w", k, err)
		}
		restored++
	}
	return restored, nil
}

func (c *CacheStore) setLocked(key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %q: %w", key, err)
	}
	data, err := models.EncodeEntry(models.NewCacheEntry(payload, c.now(), ttl))
	if err != nil {
		return fmt.Errorf("encoding entry %q: %w", key, err)
	}
	if err := c.store.Set(c.prefix+key, data); err != nil {
		if errors.Is(err, models.ErrStorageFull) {
			c.logger.Warnf(providers.TypeStorage, "Write of %q rejected: %s", key, err)
		}
		return err
	}
	return nil
}

func (c *CacheStore) getLocked(key string) (json.RawMessage, bool) {
	data, ok, err := c.store.Get(c.prefix + key)
	if err != nil {
		c.logger.Errorf(providers.TypeStorage, "Reading %q: %s", key, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	entry, err := models.DecodeEntry(data)
	if err != nil {
		c.logger.Debugf(providers.TypeStorage, "Malformed entry %q: %s", key, err)
		return nil, false
	}
	if entry.Expired(c.now()) {
		if err := c.store.Remove(c.prefix + key); err != nil {
			c.logger.Errorf(providers.TypeStorage, "Removing expired %q: %s", key, err)
		}
		return nil, false
	}
	if !entry.HasValue() {
		return nil, false
	}
	return entry.Value, true
}
