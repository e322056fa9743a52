package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/troves/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Day is the window of the assistant quota
const Day = 24 * time.Hour

// Decision is the outcome of one Allow call
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is the time left in the current window
func (d Decision) RetryAfter(now time.Time) time.Duration {
	if wait := d.ResetAt.Sub(now); wait > 0 {
		return wait
	}
	return 0
}

// Limiter counts requests per subject in fixed windows aligned to the Unix
// epoch, so a daily window is one UTC day.
type Limiter struct {
	store  CounterStore
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// Option configures a Limiter
type Option func(*Limiter)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// WithLogger sets the logger used to report store failures
func WithLogger(log *zap.Logger) Option {
	return func(l *Limiter) { l.logger = log }
}

// NewLimiter allows limit requests per window for each subject. window is
// rounded down to whole seconds and must be at least one second.
func NewLimiter(store CounterStore, prefix string, limit int, window time.Duration, opts ...Option) *Limiter {
	if window < time.Second {
		window = time.Second
	}
	l := &Limiter{
		store:  store,
		prefix: prefix,
		limit:  limit,
		window: window.Truncate(time.Second),
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Limit is the number of requests allowed per window
func (l *Limiter) Limit() int { return l.limit }

// Allow counts one request for subject. The counter is incremented before
// the comparison, so the request that reaches limit is still allowed. When
// the store fails the request is allowed and the failure is logged.
func (l *Limiter) Allow(ctx context.Context, subject string) Decision {
	now := l.now()
	start, reset := l.windowBounds(now)
	key := l.key(subject, start)

	count, err := l.store.Increment(ctx, key, reset.Sub(now))
	if err != nil {
		logger.Enrich(ctx, l.logger).Warn("rate limit store unavailable, allowing request",
			zap.String("prefix", l.prefix),
			zap.Error(err),
		)
		return Decision{Allowed: true, Limit: l.limit, Remaining: l.limit, ResetAt: reset}
	}

	remaining := l.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= int64(l.limit),
		Limit:     l.limit,
		Remaining: remaining,
		ResetAt:   reset,
	}
}

func (l *Limiter) windowBounds(now time.Time) (start, reset time.Time) {
	secs := int64(l.window / time.Second)
	unix := now.Unix()
	startUnix := unix - unix%secs
	return time.Unix(startUnix, 0).UTC(), time.Unix(startUnix+secs, 0).UTC()
}

func (l *Limiter) key(subject string, start time.Time) string {
	return fmt.Sprintf("%s:%s:%d", l.prefix, subject, start.Unix())
}
