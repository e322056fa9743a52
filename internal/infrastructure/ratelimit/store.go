// Package ratelimit implements fixed-window request counters backed by a
// key-value store.
package ratelimit

import (
	"context"
	"time"
)

// CounterStore atomically increments a counter. The TTL is applied only
// when the increment creates the key.
type CounterStore interface {
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
}
