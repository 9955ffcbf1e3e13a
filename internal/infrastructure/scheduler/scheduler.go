// Package scheduler runs background jobs on fixed intervals, retrying
// failed runs with exponential backoff.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrInvalidJob is returned when a job is registered without a name, a
	// function or a positive interval
	ErrInvalidJob = errors.New("scheduler: invalid job")
	// ErrDuplicateJob is returned when a job name is registered twice
	ErrDuplicateJob = errors.New("scheduler: duplicate job")
	// ErrAlreadyRunning is returned when jobs are registered after Start
	ErrAlreadyRunning = errors.New("scheduler: already running")
	// ErrJobNotFound is returned by Trigger for an unknown job
	ErrJobNotFound = errors.New("scheduler: job not found")
)

// maxRetryDelay caps the backoff between retries
const maxRetryDelay = 30 * time.Minute

// RunStatus is the outcome of one job run
type RunStatus string

const (
	RunStatusRunning RunStatus = "RUNNING"
	RunStatusSuccess RunStatus = "SUCCESS"
	RunStatusFailed  RunStatus = "FAILED"
)

// Job is a function run every Interval. A failed run is retried up to
// MaxRetries times before the job waits for its next interval.
type Job struct {
	Name       string
	Interval   time.Duration
	Run        func(ctx context.Context) error
	MaxRetries int
	RetryDelay time.Duration
	// Timeout bounds a single attempt; zero means the interval.
	Timeout time.Duration
	// RunOnStart runs the job once as soon as the scheduler starts.
	RunOnStart bool
	// Retryable decides whether an error is worth retrying; nil retries all.
	Retryable func(error) bool
}

func (j Job) validate() error {
	if j.Name == "" || j.Run == nil || j.Interval <= 0 {
		return fmt.Errorf("%w: %q", ErrInvalidJob, j.Name)
	}
	if j.MaxRetries < 0 || j.RetryDelay < 0 || j.Timeout < 0 {
		return fmt.Errorf("%w: %q has negative retry settings", ErrInvalidJob, j.Name)
	}
	return nil
}

// retryDelay returns the wait before retry number attempt (1-based)
func (j Job) retryDelay(attempt int) time.Duration {
	base := j.RetryDelay
	if base <= 0 {
		base = time.Second
	}
	delay := base * time.Duration(1<<(attempt-1))
	if delay <= 0 || delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

// Run is the record of one job run including its retries
type Run struct {
	ID          uuid.UUID
	Job         string
	Status      RunStatus
	Attempts    int
	Error       string
	StartedAt   time.Time
	CompletedAt *time.Time
}

// JobStats summarises a job's history
type JobStats struct {
	Name      string
	Interval  time.Duration
	Runs      int
	Failures  int
	LastRun   *Run
	IsRunning bool
}

type jobState struct {
	job      Job
	runs     int
	failures int
	last     *Run
	running  bool
	trigger  chan struct{}
}

// Scheduler owns a set of periodic jobs. Each job runs in its own goroutine
// and never overlaps with itself.
type Scheduler struct {
	logger *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	jobs    map[string]*jobState
	order   []string
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithClock replaces time.Now for run timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// New creates a stopped scheduler
func New(logger *zap.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scheduler{
		logger: logger,
		now:    time.Now,
		jobs:   make(map[string]*jobState),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a job. Jobs can only be added before Start.
func (s *Scheduler) Register(job Job) error {
	if err := job.validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrAlreadyRunning
	}
	if _, ok := s.jobs[job.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateJob, job.Name)
	}
	s.jobs[job.Name] = &jobState{job: job, trigger: make(chan struct{}, 1)}
	s.order = append(s.order, job.Name)
	return nil
}

// Len returns the number of registered jobs
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Start launches one loop per job. Calling Start twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	for _, name := range s.order {
		st := s.jobs[name]
		s.wg.Add(1)
		go s.loop(ctx, st)
		s.logger.Info("Scheduled job started",
			zap.String("job", name),
			zap.Duration("interval", st.job.Interval),
		)
	}
}

// Stop cancels every loop and waits for in-flight runs until ctx expires
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
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
		return ctx.Err()
	}
}

// Trigger asks a job to run now. A request made while the job is already
// queued or running is folded into that run.
func (s *Scheduler) Trigger(name string) error {
	s.mu.Lock()
	st, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrJobNotFound, name)
	}
	select {
	case st.trigger <- struct{}{}:
	default:
	}
	return nil
}

// Stats returns a snapshot of every job in registration order
func (s *Scheduler) Stats() []JobStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]JobStats, 0, len(s.order))
	for _, name := range s.order {
		st := s.jobs[name]
		stats := JobStats{
			Name:      name,
			Interval:  st.job.Interval,
			Runs:      st.runs,
			Failures:  st.failures,
			IsRunning: st.running,
		}
		if st.last != nil {
			last := *st.last
			stats.LastRun = &last
		}
		out = append(out, stats)
	}
	return out
}

func (s *Scheduler) loop(ctx context.Context, st *jobState) {
	defer s.wg.Done()

	ticker := time.NewTicker(st.job.Interval)
	defer ticker.Stop()

	if st.job.RunOnStart {
		s.execute(ctx, st)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.execute(ctx, st)
		case <-st.trigger:
			s.execute(ctx, st)
		}
	}
}

// execute runs the job with retries and records the outcome
func (s *Scheduler) execute(ctx context.Context, st *jobState) {
	job := st.job
	run := Run{ID: uuid.New(), Job: job.Name, Status: RunStatusRunning, StartedAt: s.now()}

	s.mu.Lock()
	st.running = true
	started := run
	st.last = &started
	s.mu.Unlock()

	log := s.logger.With(zap.String("job", job.Name), zap.String("run_id", run.ID.String()))

	var err error
	for attempt := 1; ; attempt++ {
		run.Attempts = attempt
		err = s.attempt(ctx, job)
		if err == nil || ctx.Err() != nil {
			break
		}
		if attempt > job.MaxRetries || (job.Retryable != nil && !job.Retryable(err)) {
			break
		}
		delay := job.retryDelay(attempt)
		log.Warn("Scheduled job failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", delay),
			zap.Error(err),
		)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
		case <-timer.C:
		}
		if ctx.Err() != nil {
			break
		}
	}

	completed := s.now()
	run.CompletedAt = &completed
	run.Status = RunStatusSuccess
	if err != nil {
		run.Status = RunStatusFailed
		run.Error = err.Error()
	}

	s.mu.Lock()
	st.running = false
	st.runs++
	if err != nil {
		st.failures++
	}
	st.last = &run
	s.mu.Unlock()

	if err != nil {
		log.Error("Scheduled job failed", zap.Int("attempts", run.Attempts), zap.Error(err))
		return
	}
	log.Info("Scheduled job completed",
		zap.Int("attempts", run.Attempts),
		zap.Duration("duration", completed.Sub(run.StartedAt)),
	)
}

func (s *Scheduler) attempt(ctx context.Context, job Job) (err error) {
	timeout := job.Timeout
	if timeout == 0 {
		timeout = job.Interval
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return job.Run(ctx)
}
