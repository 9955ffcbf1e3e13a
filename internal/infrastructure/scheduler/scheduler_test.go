package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s := New(zap.NewNop())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	})
	return s
}

func TestRegister_Validation(t *testing.T) {
	s := newTestScheduler(t)
	noop := func(context.Context) error { return nil }

	tests := []struct {
		name string
		job  Job
	}{
		{"missing name", Job{Interval: time.Minute, Run: noop}},
		{"missing func", Job{Name: "pull", Interval: time.Minute}},
		{"zero interval", Job{Name: "pull", Run: noop}},
		{"negative retries", Job{Name: "pull", Interval: time.Minute, Run: noop, MaxRetries: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, s.Register(tt.job), ErrInvalidJob)
		})
	}

	require.NoError(t, s.Register(Job{Name: "pull", Interval: time.Minute, Run: noop}))
	assert.ErrorIs(t, s.Register(Job{Name: "pull", Interval: time.Minute, Run: noop}), ErrDuplicateJob)
	assert.Equal(t, 1, s.Len())

	s.Start(context.Background())
	assert.ErrorIs(t, s.Register(Job{Name: "other", Interval: time.Minute, Run: noop}), ErrAlreadyRunning)
}

func TestRetryDelay(t *testing.T) {
	job := Job{RetryDelay: 10 * time.Second}
	assert.Equal(t, 10*time.Second, job.retryDelay(1))
	assert.Equal(t, 20*time.Second, job.retryDelay(2))
	assert.Equal(t, 40*time.Second, job.retryDelay(3))
	assert.Equal(t, maxRetryDelay, job.retryDelay(20))
	assert.Equal(t, time.Second, Job{}.retryDelay(1))
}

func TestScheduler_RunOnStart(t *testing.T) {
	s := newTestScheduler(t)
	var calls atomic.Int32
	require.NoError(t, s.Register(Job{
		Name:       "pull",
		Interval:   time.Hour,
		RunOnStart: true,
		Run: func(context.Context) error {
			calls.Add(1)
			return nil
		},
	}))

	s.Start(context.Background())

	require.Eventually(t, func() bool {
		stats := s.Stats()[0]
		return stats.Runs == 1 && !stats.IsRunning
	}, 2*time.Second, 10*time.Millisecond)
	stats := s.Stats()[0]
	assert.Equal(t, int32(1), calls.Load())
	require.NotNil(t, stats.LastRun)
	assert.Equal(t, RunStatusSuccess, stats.LastRun.Status)
	assert.Equal(t, 1, stats.LastRun.Attempts)
	assert.NotNil(t, stats.LastRun.CompletedAt)
}

func TestScheduler_RetriesThenFails(t *testing.T) {
	s := newTestScheduler(t)
	var calls atomic.Int32
	require.NoError(t, s.Register(Job{
		Name:       "pull",
		Interval:   time.Hour,
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
		Run: func(context.Context) error {
			calls.Add(1)
			return errors.New("upstream down")
		},
	}))
	s.Start(context.Background())
	require.NoError(t, s.Trigger("pull"))

	require.Eventually(t, func() bool {
		return s.Stats()[0].Runs == 1
	}, 2*time.Second, 10*time.Millisecond)
	stats := s.Stats()[0]
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 1, stats.Failures)
	assert.Equal(t, RunStatusFailed, stats.LastRun.Status)
	assert.Equal(t, 3, stats.LastRun.Attempts)
	assert.Equal(t, "upstream down", stats.LastRun.Error)
}

func TestScheduler_RetryableFilter(t *testing.T) {
	s := newTestScheduler(t)
	permanent := errors.New("bad credentials")
	var calls atomic.Int32
	require.NoError(t, s.Register(Job{
		Name:       "pull",
		Interval:   time.Hour,
		MaxRetries: 5,
		RetryDelay: time.Millisecond,
		RunOnStart: true,
		Retryable:  func(err error) bool { return !errors.Is(err, permanent) },
		Run: func(context.Context) error {
			calls.Add(1)
			return permanent
		},
	}))
	s.Start(context.Background())

	require.Eventually(t, func() bool {
		return s.Stats()[0].Runs == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestScheduler_RecoversPanics(t *testing.T) {
	s := newTestScheduler(t)
	require.NoError(t, s.Register(Job{
		Name:       "explode",
		Interval:   time.Hour,
		RunOnStart: true,
		Run:        func(context.Context) error { panic("boom") },
	}))
	s.Start(context.Background())

	require.Eventually(t, func() bool {
		return s.Stats()[0].Runs == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, s.Stats()[0].LastRun.Error, "boom")
}

func TestScheduler_TriggerUnknownJob(t *testing.T) {
	s := newTestScheduler(t)
	assert.ErrorIs(t, s.Trigger("missing"), ErrJobNotFound)
}

func TestScheduler_StopCancelsRunningJob(t *testing.T) {
	s := New(zap.NewNop())
	started := make(chan struct{})
	require.NoError(t, s.Register(Job{
		Name:       "slow",
		Interval:   time.Hour,
		RunOnStart: true,
		Run: func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		},
	}))
	s.Start(context.Background())
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.NoError(t, s.Stop(ctx))
}
