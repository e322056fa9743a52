package ratelimit

import (
	"context"
	"sync"
	"time"
)

type counter struct {
	value     int64
	expiresAt time.Time
}

// MemoryCounterStore keeps counters in process memory. It suits a single
// instance and tests. A janitor goroutine drops expired counters until Close.
type MemoryCounterStore struct {
	mu        sync.Mutex
	counters  map[string]*counter
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewMemoryCounterStore starts a store whose janitor runs every interval
func NewMemoryCounterStore(interval time.Duration) *MemoryCounterStore {
	if interval <= 0 {
		interval = time.Minute
	}
	s := &MemoryCounterStore{
		counters: make(map[string]*counter),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.janitor(interval)
	return s
}

// Increment adds one to key, starting a fresh counter when it is absent or expired
func (s *MemoryCounterStore) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c, ok := s.counters[key]
	if !ok || !now.Before(c.expiresAt) {
		c = &counter{expiresAt: now.Add(ttl)}
		s.counters[key] = c
	}
	c.value++
	return c.value, nil
}

// Len is the number of live and not yet swept counters
func (s *MemoryCounterStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.counters)
}

// Close stops the janitor. Safe to call more than once.
func (s *MemoryCounterStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *MemoryCounterStore) janitor(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemoryCounterStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, c := range s.counters {
		if !now.Before(c.expiresAt) {
			delete(s.counters, k)
		}
	}
}

var _ CounterStore = (*MemoryCounterStore)(nil)
