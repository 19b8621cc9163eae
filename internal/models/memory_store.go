package models

import (
	"fmt"
	"sort"
	"sync"
)

// MemoryStore keeps every pair in a map. A quota <= 0 disables the size limit.
type MemoryStore struct {
	mu    sync.RWMutex
	data  map[string][]byte
	used  int64
	quota int64
}

func NewMemoryStore(quota int64) *MemoryStore {
	return &MemoryStore{
		data:  make(map[string][]byte),
		quota: quota,
	}
}

func (m *MemoryStore) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	val, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, true, nil
}

func (m *MemoryStore) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	used := m.used + entrySize(key, value)
	if old, ok := m.data[key]; ok {
		used -= entrySize(key, old)
	}
	if m.quota > 0 && used > m.quota {
		return fmt.Errorf("set %q (%d of %d bytes): %w", key, used, m.quota, ErrStorageFull)
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored
	m.used = used
	return nil
}

func (m *MemoryStore) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.data[key]; ok {
		m.used -= entrySize(key, old)
		delete(m.data, key)
	}
	return nil
}

func (m *MemoryStore) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
