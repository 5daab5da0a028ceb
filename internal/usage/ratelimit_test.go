package usage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pysugar/seas-portal/internal/kv"
)

func TestAllow_WithinLimit(t *testing.T) {
	ctx := context.Background()
	l := NewLimiter(kv.NewMemory())
	l.now = func() time.Time { return time.Unix(600, 0) }

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "abc123", 3)
		require.NoError(t, err)
		assert.True(t, ok, "call %d should be allowed", i+1)
	}

	ok, err := l.Allow(ctx, "abc123", 3)
	require.NoError(t, err)
	assert.False(t, ok, "fourth call in the window should be rejected")
}

func TestAllow_WindowResets(t *testing.T) {
	ctx := context.Background()
	l := NewLimiter(kv.NewMemory())

	now := time.Unix(600, 0)
	l.now = func() time.Time { return now }

	ok, err := l.Allow(ctx, "abc123", 1)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = l.Allow(ctx, "abc123", 1)
	require.NoError(t, err)
	require.False(t, ok)

	// Next minute, the counter starts fresh.
	now = now.Add(time.Minute)
	ok, err = l.Allow(ctx, "abc123", 1)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAllow_PerClientIsolation(t *testing.T) {
	ctx := context.Background()
	l := NewLimiter(kv.NewMemory())
	l.now = func() time.Time { return time.Unix(600, 0) }

	ok, err := l.Allow(ctx, "a", 1)
	require.NoError(t, err)
	require.True(t, ok)

	// Client b has its own counter.
	ok, err = l.Allow(ctx, "b", 1)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAllow_ZeroLimitMeansUnlimited(t *testing.T) {
	ctx := context.Background()
	l := NewLimiter(kv.NewMemory())

	for i := 0; i < 10; i++ {
		ok, err := l.Allow(ctx, "abc123", 0)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}
