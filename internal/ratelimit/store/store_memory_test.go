package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStoreAllow(t *testing.T) {
	t.Run("allows up to the limit, then rejects", func(t *testing.T) {
		store := NewMemory()
		ctx := context.Background()

		for i := range 3 {
			result, err := store.Allow(ctx, "ip:1.2.3.4", 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, result.Allowed, "request %d", i+1)
			assert.Equal(t, 3-(i+1), result.Remaining)
		}

		result, err := store.Allow(ctx, "ip:1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, result.Allowed)
		assert.Zero(t, result.Remaining)
	})

	t.Run("keys are counted independently", func(t *testing.T) {
		store := NewMemory()
		ctx := context.Background()

		for range 3 {
			_, err := store.Allow(ctx, "ip:1.2.3.4", 3, time.Minute)
			require.NoError(t, err)
		}

		result, err := store.Allow(ctx, "ip:5.6.7.8", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	})

	t.Run("window expiry resets the counter", func(t *testing.T) {
		store := NewMemory()
		ctx := context.Background()

		result, err := store.Allow(ctx, "ip:1.2.3.4", 1, 10*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, result.Allowed)

		result, err = store.Allow(ctx, "ip:1.2.3.4", 1, 10*time.Millisecond)
		require.NoError(t, err)
		assert.False(t, result.Allowed)

		time.Sleep(15 * time.Millisecond)

		result, err = store.Allow(ctx, "ip:1.2.3.4", 1, 10*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	})
}

func BenchmarkInMemoryStoreAllow(b *testing.B) {
	store := NewMemory()
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; b.Loop(); i++ {
		_, _ = store.Allow(ctx, fmt.Sprintf("ip:%d", i%1000), 100, 15*time.Minute)
	}
}
