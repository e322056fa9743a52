// Package scheduler runs the daily maintenance jobs: sweeping stale carts
// and archiving old contact messages.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/troves/backend/internal/infrastructure/config"
)

// ErrUnknownJob is returned by RunJob for an unregistered name
var ErrUnknownJob = errors.New("scheduler: unknown job")

// Job is one maintenance task. Run returns how many rows it touched.
type Job struct {
	Name string
	Run  func(ctx context.Context) (int64, error)
}

// JobResult records the last run of a job
type JobResult struct {
	Name      string        `json:"name"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Affected  int64         `json:"affected"`
	Error     string        `json:"error,omitempty"`
}

// Config holds the trigger settings
type Config struct {
	CheckInterval time.Duration
	RunHour       int // local hour 0-23
	JobTimeout    time.Duration
}

// ConfigFrom maps service configuration onto Config
func ConfigFrom(cfg config.SchedulerConfig) Config {
	return Config{
		CheckInterval: cfg.CheckInterval,
		RunHour:       cfg.RunHour,
		JobTimeout:    cfg.JobTimeout,
	}
}

func (c Config) withDefaults() Config {
	if c.CheckInterval <= 0 {
		c.CheckInterval = time.Minute
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = 5 * time.Minute
	}
	if c.RunHour < 0 || c.RunHour > 23 {
		c.RunHour = 3
	}
	return c
}

// Scheduler checks the clock every CheckInterval and runs all jobs once a
// day, at the first check on or after RunHour.
type Scheduler struct {
	config Config
	jobs   []Job
	logger *zap.Logger
	now    func() time.Time

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	lastRun   string // date of the last daily run
	results   map[string]JobResult
	runMu     sync.Mutex
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// New creates a Scheduler for jobs
func New(cfg Config, jobs []Job, logger *zap.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scheduler{
		config:  cfg.withDefaults(),
		jobs:    jobs,
		logger:  logger.Named("scheduler"),
		now:     time.Now,
		results: make(map[string]JobResult, len(jobs)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the check loop. Calling Start twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("Scheduler started",
		zap.Int("jobs", len(s.jobs)),
		zap.Int("run_hour", s.config.RunHour),
		zap.Duration("check_interval", s.config.CheckInterval),
	)
}

// Stop cancels the loop and waits for an in-flight run, or for ctx
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs the jobs if today's run is due and has not happened
func (s *Scheduler) tick(ctx context.Context) {
	now := s.now()
	if now.Hour() < s.config.RunHour {
		return
	}
	today := now.Format(time.DateOnly)

	s.mu.Lock()
	if s.lastRun == today {
		s.mu.Unlock()
		return
	}
	s.lastRun = today
	s.mu.Unlock()

	s.RunAll(ctx)
}

// RunAll runs every job in order. Failures are logged, not returned.
func (s *Scheduler) RunAll(ctx context.Context) []JobResult {
	out := make([]JobResult, 0, len(s.jobs))
	for _, j := range s.jobs {
		if ctx.Err() != nil {
			break
		}
		out = append(out, s.run(ctx, j))
	}
	return out
}

// RunJob runs a single job by name
func (s *Scheduler) RunJob(ctx context.Context, name string) (JobResult, error) {
	for _, j := range s.jobs {
		if j.Name == name {
			return s.run(ctx, j), nil
		}
	}
	return JobResult{}, ErrUnknownJob
}

func (s *Scheduler) run(ctx context.Context, j Job) JobResult {
	// Manual and scheduled runs never overlap.
	s.runMu.Lock()
	defer s.runMu.Unlock()

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	res := JobResult{Name: j.Name, StartedAt: s.now()}
	start := time.Now()
	affected, err := j.Run(jobCtx)
	res.Duration = time.Since(start)
	res.Affected = affected

	if err != nil {
		res.Error = err.Error()
		s.logger.Error("Job failed", zap.String("job", j.Name), zap.Duration("duration", res.Duration), zap.Error(err))
	} else {
		s.logger.Info("Job completed",
			zap.String("job", j.Name),
			zap.Int64("affected", affected),
			zap.Duration("duration", res.Duration),
		)
	}

	s.mu.Lock()
	s.results[j.Name] = res
	s.mu.Unlock()
	return res
}

// LastResults returns the most recent result of each job that has run
func (s *Scheduler) LastResults() []JobResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]JobResult, 0, len(s.results))
	for _, j := range s.jobs {
		if r, ok := s.results[j.Name]; ok {
			out = append(out, r)
		}
	}
	return out
}
