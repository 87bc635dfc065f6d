package bucket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlidingWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewInMemoryBucketStore(WithClock(func() time.Time { return now }))

	for i := range 3 {
		res, err := store.Allow(ctx, "auth:1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 2-i, res.Remaining)
		now = now.Add(10 * time.Second)
	}

	res, err := store.Allow(ctx, "auth:1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, time.Date(2025, 3, 1, 12, 1, 0, 0, time.UTC), res.ResetAt)
	assert.Equal(t, 30*time.Second, res.RetryAfter(now))

	t.Run("other keys are independent", func(t *testing.T) {
		res, err := store.Allow(ctx, "auth:5.6.7.8", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})

	t.Run("oldest request leaves the window", func(t *testing.T) {
		now = time.Date(2025, 3, 1, 12, 1, 0, 0, time.UTC)
		res, err := store.Allow(ctx, "auth:1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 0, res.Remaining)
	})

	t.Run("reset clears the key", func(t *testing.T) {
		require.NoError(t, store.Reset(ctx, "auth:1.2.3.4"))
		res, err := store.Allow(ctx, "auth:1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Remaining)
	})
}

func TestIdleKeysAreEvicted(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewInMemoryBucketStore(WithClock(func() time.Time { return now }))

	for _, ip := range []string{"198.51.100.1", "198.51.100.2", "198.51.100.3"} {
		_, err := store.Allow(ctx, "auth:"+ip, 2, time.Minute)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, store.Len())

	now = now.Add(2 * time.Minute)
	_, err := store.Allow(ctx, "auth:198.51.100.9", 2, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
}
