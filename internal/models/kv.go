package models

import "errors"

// ErrStorageFull is returned by a KeyValueStore when a write would exceed its quota.
var ErrStorageFull = errors.New("storage full")

// ErrStoreNotEmpty is returned when a snapshot import finds existing data.
var ErrStoreNotEmpty = errors.New("store not empty")

// KeyValueStore is the persistent string-keyed store the cache layer is built on.
// Implementations must be safe for concurrent use.
type KeyValueStore interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Remove(key string) error
	Keys() ([]string, error)
}

// entrySize is the quota cost of a single key/value pair.
func entrySize(key string, value []byte) int64 {
	return int64(len(key) + len(value))
}
