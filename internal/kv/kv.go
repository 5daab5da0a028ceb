// Package kv defines the key-value backend contract the portal persists
// small durable state in (API secrets, rate counters), plus a bbolt-backed
// implementation and an in-memory one for tests.
package kv

import (
	"context"
	"strings"
)

// Store is the key-value backend contract. It mirrors the small surface
// the portal needs from a durable cache: get, set, set-if-absent, delete,
// glob-style key enumeration and an atomic counter.
type Store interface {
	// Get returns the value for key. The second return is false when the
	// key is absent.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// SetNX stores value under key only when the key is absent.
	// Returns true when the write happened, false when an existing value
	// was left in place.
	SetNX(ctx context.Context, key, value string) (bool, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns all keys matching pattern, where '*' matches any run
	// of characters (redis KEYS-style globbing, '*' only).
	Keys(ctx context.Context, pattern string) ([]string, error)

	// Incr atomically increments the integer counter at key and returns
	// the new value. An absent key counts as zero.
	Incr(ctx context.Context, key string) (int64, error)
}

// matchPattern reports whether key matches a glob pattern in which '*'
// matches any (possibly empty) run of characters.
func matchPattern(pattern, key string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == key
	}

	if !strings.HasPrefix(key, parts[0]) {
		return false
	}
	key = key[len(parts[0]):]

	last := parts[len(parts)-1]
	if !strings.HasSuffix(key, last) {
		return false
	}
	key = key[:len(key)-len(last)]

	for _, part := range parts[1 : len(parts)-1] {
		idx := strings.Index(key, part)
		if idx < 0 {
			return false
		}
		key = key[idx+len(part):]
	}
	return true
}
