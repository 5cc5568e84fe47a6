package utils

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

const defaultCacheTTL = 10 * time.Minute

type memEntry struct {
	value     []byte
	expiresAt time.Time
}

var (
	memCache   = map[string]memEntry{}
	memCacheMu sync.Mutex
)

// CacheGetBytes returns cached bytes for a key. Redis is preferred for
// multi-instance consistency; the in-memory map is a single-instance fallback
// when Redis is unreachable.
func CacheGetBytes(key string) ([]byte, bool) {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if b, err := rc.Get(ctx, key).Bytes(); err == nil {
			return b, true
		}
	}

	memCacheMu.Lock()
	entry, ok := memCache[key]
	memCacheMu.Unlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.value, true
}

// CacheSetBytes stores bytes with the given TTL in both Redis and the local map.
func CacheSetBytes(key string, b []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Set(ctx, key, b, ttl).Err(); err != nil && Sugar != nil {
			Sugar.Warnf("cache set failed key=%s err=%v", key, err)
		}
	}

	memCacheMu.Lock()
	memCache[key] = memEntry{value: b, expiresAt: time.Now().Add(ttl)}
	memCacheMu.Unlock()
}

// CacheSetJSON marshals v and stores JSON bytes.
func CacheSetJSON(key string, v interface{}, ttl time.Duration) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	CacheSetBytes(key, b, ttl)
}

// CacheGetJSON reads a key and unmarshals it into out.
func CacheGetJSON(key string, out interface{}) bool {
	b, ok := CacheGetBytes(key)
	if !ok {
		return false
	}
	return json.Unmarshal(b, out) == nil
}

// CacheDelete removes a key from both layers.
func CacheDelete(key string) {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = rc.Del(ctx, key).Err()
	}
	memCacheMu.Lock()
	delete(memCache, key)
	memCacheMu.Unlock()
}
