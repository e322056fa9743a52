// Package idempotency remembers client-supplied request keys so a retried
// write is recognised instead of applied twice.
package idempotency

import (
	"context"
	"time"
)

// Store claims keys for a limited time
type Store interface {
	// Claim returns true when key was free and is now held for ttl, false
	// when another request already holds it
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release frees key so the request can be retried
	Release(ctx context.Context, key string) error
	Close() error
}
