package providers

import (
	"path/filepath"
	"storybank/internal/models"
	"storybank/internal/structures"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreProvider_Memory(t *testing.T) {
	conf := &structures.Config{Storage: structures.StorageConfig{Driver: "memory"}}
	store, cleanup, err := NewStoreProvider(conf, &nopTestLogger{}, &mockMetrics{})
	require.NoError(t, err)
	defer cleanup()

	assert.IsType(t, &models.MemoryStore{}, store)
}

func TestStoreProvider_SQLiteWithCache(t *testing.T) {
	conf := &structures.Config{
		Storage: structures.StorageConfig{
			Driver: "sqlite",
			DSN:    filepath.Join(t.TempDir(), "composer.db"),
		},
		Cache: structures.CacheConfig{Enabled: true, Size: 1},
	}
	store, cleanup, err := NewStoreProvider(conf, &nopTestLogger{}, &mockMetrics{})
	require.NoError(t, err)
	defer cleanup()

	assert.IsType(t, &MetricsCacheProvider{}, store)
	require.NoError(t, store.Set("k", []byte("v")))
	val, ok, err := store.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), val)
}

func TestStoreProvider_QuotaApplied(t *testing.T) {
	conf := &structures.Config{Storage: structures.StorageConfig{Driver: "memory", QuotaBytes: 4}}
	store, cleanup, err := NewStoreProvider(conf, &nopTestLogger{}, &mockMetrics{})
	require.NoError(t, err)
	defer cleanup()

	assert.ErrorIs(t, store.Set("key", []byte("value")), models.ErrStorageFull)
}

func TestStoreProvider_UnknownDriver(t *testing.T) {
	conf := &structures.Config{Storage: structures.StorageConfig{Driver: "redis"}}
	_, _, err := NewStoreProvider(conf, &nopTestLogger{}, &mockMetrics{})
	assert.Error(t, err)
}
