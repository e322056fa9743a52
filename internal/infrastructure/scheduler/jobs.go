package scheduler

import (
	"context"
	"time"
)

// CartSweeper deletes stale cart lines
type CartSweeper interface {
	SweepStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

// ContactArchiver archives old read messages
type ContactArchiver interface {
	ArchiveOld(ctx context.Context, age time.Duration) (int64, error)
}

// Job names
const (
	JobCartSweep      = "cart_sweep"
	JobContactArchive = "contact_archive"
)

// CartSweepJob removes cart lines idle for longer than ttl
func CartSweepJob(carts CartSweeper, ttl time.Duration) Job {
	return Job{
		Name: JobCartSweep,
		Run: func(ctx context.Context) (int64, error) {
			return carts.SweepStale(ctx, ttl)
		},
	}
}

// ContactArchiveJob archives read messages older than age
func ContactArchiveJob(contacts ContactArchiver, age time.Duration) Job {
	return Job{
		Name: JobContactArchive,
		Run: func(ctx context.Context) (int64, error) {
			return contacts.ArchiveOld(ctx, age)
		},
	}
}
