package models

import (
	"bytes"
	"time"

	json "github.com/goccy/go-json"
)

// CacheEntry is the envelope stored under every namespaced key.
// Timestamp and TTL are milliseconds; a nil TTL never expires.
type CacheEntry struct {
	Value     json.RawMessage `json:"value"`
	Timestamp int64           `json:"timestamp"`
	TTL       *int64          `json:"ttl"`
}

func NewCacheEntry(value json.RawMessage, storedAt time.Time, ttl time.Duration) CacheEntry {
	entry := CacheEntry{
		Value:     value,
		Timestamp: storedAt.UnixMilli(),
	}
	if ttl > 0 {
		ms := max(ttl.Milliseconds(), 1)
		entry.TTL = &ms
	}
	return entry
}

func (e CacheEntry) TTLDuration() time.Duration {
	if e.TTL == nil || *e.TTL <= 0 {
		return 0
	}
	return time.Duration(*e.TTL) * time.Millisecond
}

// Expired reports whether more than TTL has elapsed since the entry was stored.
func (e CacheEntry) Expired(now time.Time) bool {
	ttl := e.TTLDuration()
	if ttl == 0 {
		return false
	}
	return now.UnixMilli()-e.Timestamp > ttl.Milliseconds()
}

// HasValue is false for a missing or JSON null value.
func (e CacheEntry) HasValue() bool {
	v := bytes.TrimSpace(e.Value)
	return len(v) > 0 && !bytes.Equal(v, []byte("null"))
}

func EncodeEntry(e CacheEntry) ([]byte, error) {
	return json.Marshal(e)
}

func DecodeEntry(data []byte) (CacheEntry, error) {
	var e CacheEntry
	err := json.Unmarshal(data, &e)
	return e, err
}
