package idempotency

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMemoryStore_Claim(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	defer s.Close()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	ok, err := s.Claim(ctx, "checkout:abc", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Claim(ctx, "checkout:abc", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "held key cannot be claimed twice")

	ok, _ = s.Claim(ctx, "checkout:other", time.Minute)
	assert.True(t, ok)

	now = now.Add(time.Minute)
	ok, _ = s.Claim(ctx, "checkout:abc", time.Minute)
	assert.True(t, ok, "expired claim is replaced")
}

func TestMemoryStore_Release(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	defer s.Close()
	ctx := context.Background()

	ok, _ := s.Claim(ctx, "k", time.Hour)
	require.True(t, ok)
	require.NoError(t, s.Release(ctx, "k"))
	require.NoError(t, s.Release(ctx, "missing"))

	ok, _ = s.Claim(ctx, "k", time.Hour)
	assert.True(t, ok)
}

func TestMemoryStore_Sweep(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	defer s.Close()

	now := time.Now()
	s.now = func() time.Time { return now }
	ctx := context.Background()
	_, _ = s.Claim(ctx, "short", time.Second)
	_, _ = s.Claim(ctx, "long", time.Hour)

	now = now.Add(time.Minute)
	s.sweep()
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Claim(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryStore_ConcurrentClaimsHaveOneWinner(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	defer s.Close()

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := s.Claim(context.Background(), "same", time.Minute); ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestMemoryStore_CloseStopsSweeper(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s := NewMemoryStore(time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}
