package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCounterStore_Increment(t *testing.T) {
	s := NewMemoryCounterStore(time.Hour)
	defer s.Close()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	n, err := s.Increment(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	now = now.Add(30 * time.Second)
	n, _ = s.Increment(ctx, "k", time.Minute)
	assert.Equal(t, int64(2), n, "ttl is not extended by later increments")

	now = now.Add(30 * time.Second)
	n, _ = s.Increment(ctx, "k", time.Minute)
	assert.Equal(t, int64(1), n, "expired counter starts over")
}

func TestMemoryCounterStore_Sweep(t *testing.T) {
	s := NewMemoryCounterStore(time.Hour)
	defer s.Close()

	now := time.Now()
	s.now = func() time.Time { return now }
	ctx := context.Background()
	_, _ = s.Increment(ctx, "short", time.Second)
	_, _ = s.Increment(ctx, "long", time.Hour)

	now = now.Add(time.Minute)
	s.sweep()
	assert.Equal(t, 1, s.Len())
}

func TestMemoryCounterStore_Concurrent(t *testing.T) {
	s := NewMemoryCounterStore(10 * time.Millisecond)
	defer s.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Increment(context.Background(), "shared", time.Minute)
		}()
	}
	wg.Wait()

	n, err := s.Increment(context.Background(), "shared", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(51), n)
}

func TestMemoryCounterStore_CanceledContext(t *testing.T) {
	s := NewMemoryCounterStore(time.Hour)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Increment(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryCounterStore_CloseIsIdempotent(t *testing.T) {
	s := NewMemoryCounterStore(time.Millisecond)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}
