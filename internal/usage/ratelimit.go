// Package usage implements per-client rate limiting and usage summaries.
package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/pysugar/seas-portal/internal/kv"
)

// Limiter enforces a per-client per-minute request ceiling using counter
// keys in the key-value backend, one key per client per minute window.
type Limiter struct {
	kv kv.Store

	// now is swapped in tests to pin the minute window.
	now func() time.Time
}

// NewLimiter creates a limiter over the given backend.
func NewLimiter(backend kv.Store) *Limiter {
	return &Limiter{kv: backend, now: time.Now}
}

// Allow records one request for the client and reports whether it is
// within the per-minute limit. A limit of zero or less means unlimited.
func (l *Limiter) Allow(ctx context.Context, clientID string, perMinute int) (bool, error) {
	if perMinute <= 0 {
		return true, nil
	}

	window := l.now().Unix() / 60
	key := fmt.Sprintf("rate:%s:%d", clientID, window)

	n, err := l.kv.Incr(ctx, key)
	if err != nil {
		return false, fmt.Errorf("rate limit for %s: %w", clientID, err)
	}
	return n <= int64(perMinute), nil
}
