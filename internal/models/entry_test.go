package models

import (
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheEntry_NoTTLNeverExpires(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	e := NewCacheEntry(json.RawMessage(`1`), now, 0)

	assert.Nil(t, e.TTL)
	assert.False(t, e.Expired(now.Add(365*24*time.Hour)))
}

func TestCacheEntry_ExpiresStrictlyAfterTTL(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	e := NewCacheEntry(json.RawMessage(`1`), now, 100*time.Millisecond)

	assert.False(t, e.Expired(now.Add(100*time.Millisecond)))
	assert.True(t, e.Expired(now.Add(101*time.Millisecond)))
	assert.Equal(t, 100*time.Millisecond, e.TTLDuration())
}

func TestCacheEntry_SubMillisecondTTLRoundsUp(t *testing.T) {
	e := NewCacheEntry(json.RawMessage(`1`), time.Now(), time.Microsecond)
	require.NotNil(t, e.TTL)
	assert.Equal(t, int64(1), *e.TTL)
}

func TestCacheEntry_WireFormat(t *testing.T) {
	e := NewCacheEntry(json.RawMessage(`{"a":1}`), time.UnixMilli(42), time.Second)
	data, err := EncodeEntry(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":{"a":1},"timestamp":42,"ttl":1000}`, string(data))

	e = NewCacheEntry(json.RawMessage(`"x"`), time.UnixMilli(42), 0)
	data, err = EncodeEntry(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":"x","timestamp":42,"ttl":null}`, string(data))
}

func TestDecodeEntry_Malformed(t *testing.T) {
	_, err := DecodeEntry([]byte("not json"))
	assert.Error(t, err)
}

func TestCacheEntry_HasValue(t *testing.T) {
	assert.False(t, CacheEntry{}.HasValue())
	assert.False(t, CacheEntry{Value: json.RawMessage("null")}.HasValue())
	assert.True(t, CacheEntry{Value: json.RawMessage("0")}.HasValue())
}
