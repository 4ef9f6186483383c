package tasks

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shoptag/backend/internal/infrastructure/config"
)

func newTestRunner(t *testing.T, workers, maxAttempts int) (*Runner, *[]time.Duration) {
	t.Helper()

	r := NewRunner(config.TasksConfig{
		Workers:     workers,
		QueueSize:   16,
		MaxAttempts: maxAttempts,
		RetryDelay:  5 * time.Second,
	}, zap.NewNop())

	sleeps := &[]time.Duration{}
	var mu sync.Mutex
	r.sleep = func(d time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		*sleeps = append(*sleeps, d)
	}

	return r, sleeps
}

func stopRunner(t *testing.T, r *Runner) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, r.Stop(ctx))
}

func TestRunner_ExecutesTasks(t *testing.T) {
	r, _ := newTestRunner(t, 2, 3)
	r.Start()

	var done sync.WaitGroup
	var executed atomic.Int32
	for i := 0; i < 5; i++ {
		done.Add(1)
		err := r.Enqueue(&Task{
			ID:   uuid.New(),
			Name: "count",
			Run: func(ctx context.Context) error {
				executed.Add(1)
				done.Done()
				return nil
			},
		})
		require.NoError(t, err)
	}

	done.Wait()
	stopRunner(t, r)
	assert.EqualValues(t, 5, executed.Load())
}

func TestRunner_RetriesUntilSuccess(t *testing.T) {
	r, sleeps := newTestRunner(t, 1, 3)
	r.Start()

	var attempts atomic.Int32
	var done sync.WaitGroup
	done.Add(1)

	err := r.Enqueue(&Task{
		ID:   uuid.New(),
		Name: "flaky",
		Run: func(ctx context.Context) error {
			if attempts.Add(1) < 3 {
				return errors.New("transient")
			}
			done.Done()
			return nil
		},
	})
	require.NoError(t, err)

	done.Wait()
	stopRunner(t, r)

	assert.EqualValues(t, 3, attempts.Load())
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, *sleeps)
}

func TestRunner_TerminalFailureHook(t *testing.T) {
	r, _ := newTestRunner(t, 1, 3)
	r.Start()

	var attempts atomic.Int32
	var hookErr error
	var done sync.WaitGroup
	done.Add(1)

	err := r.Enqueue(&Task{
		ID:   uuid.New(),
		Name: "doomed",
		Run: func(ctx context.Context) error {
			attempts.Add(1)
			return errors.New("permanent failure")
		},
		OnTerminalFailure: func(ctx context.Context, err error) {
			hookErr = err
			done.Done()
		},
	})
	require.NoError(t, err)

	done.Wait()
	stopRunner(t, r)

	assert.EqualValues(t, 3, attempts.Load())
	require.Error(t, hookErr)
	assert.Contains(t, hookErr.Error(), "permanent failure")
}

func TestRunner_PanicDoesNotKillWorker(t *testing.T) {
	r, _ := newTestRunner(t, 1, 1)
	r.Start()

	var hooked sync.WaitGroup
	hooked.Add(1)
	require.NoError(t, r.Enqueue(&Task{
		ID:   uuid.New(),
		Name: "panicky",
		Run: func(ctx context.Context) error {
			panic("boom")
		},
		OnTerminalFailure: func(ctx context.Context, err error) {
			hooked.Done()
		},
	}))
	hooked.Wait()

	// The worker must still be alive to run the next task
	var done sync.WaitGroup
	done.Add(1)
	require.NoError(t, r.Enqueue(&Task{
		ID:   uuid.New(),
		Name: "survivor",
		Run: func(ctx context.Context) error {
			done.Done()
			return nil
		},
	}))
	done.Wait()
	stopRunner(t, r)
}

func TestRunner_QueueFull(t *testing.T) {
	r := NewRunner(config.TasksConfig{
		Workers:     1,
		QueueSize:   1,
		MaxAttempts: 1,
		RetryDelay:  time.Millisecond,
	}, zap.NewNop())
	// Not started: nothing drains the queue

	require.NoError(t, r.Enqueue(&Task{ID: uuid.New(), Run: func(ctx context.Context) error { return nil }}))
	err := r.Enqueue(&Task{ID: uuid.New(), Run: func(ctx context.Context) error { return nil }})
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestRunner_EnqueueAfterStop(t *testing.T) {
	r, _ := newTestRunner(t, 1, 1)
	r.Start()
	stopRunner(t, r)

	err := r.Enqueue(&Task{ID: uuid.New(), Run: func(ctx context.Context) error { return nil }})
	assert.ErrorIs(t, err, ErrRunnerStopped)
}

func TestRunner_StopIsIdempotent(t *testing.T) {
	r, _ := newTestRunner(t, 1, 1)
	r.Start()
	stopRunner(t, r)
	stopRunner(t, r)
}
