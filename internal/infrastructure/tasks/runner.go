package tasks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shoptag/backend/internal/infrastructure/config"
)

// Errors for the task runner
var (
	ErrQueueFull     = errors.New("tasks: queue is full")
	ErrRunnerStopped = errors.New("tasks: runner is stopped")
)

// Task is a unit of deferred work executed by the runner with at-least-once
// semantics. Run is attempted up to the configured maximum; if every attempt
// fails, OnTerminalFailure is invoked with the last error.
type Task struct {
	ID   uuid.UUID
	Name string
	Run  func(ctx context.Context) error

	// OnTerminalFailure is optional. It runs after the final failed attempt.
	OnTerminalFailure func(ctx context.Context, err error)
}

// Runner executes deferred tasks on a bounded worker pool
type Runner struct {
	workers     int
	maxAttempts int
	retryDelay  time.Duration
	queue       chan *Task
	logger      *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	stopped bool

	// sleep is swappable so tests can observe retry pacing without waiting
	sleep func(time.Duration)
}

// NewRunner creates a task runner from configuration
func NewRunner(cfg config.TasksConfig, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		workers:     cfg.Workers,
		maxAttempts: cfg.MaxAttempts,
		retryDelay:  cfg.RetryDelay,
		queue:       make(chan *Task, cfg.QueueSize),
		logger:      logger.Named("tasks"),
		ctx:         ctx,
		cancel:      cancel,
		sleep:       time.Sleep,
	}
}

// Start launches the worker pool
func (r *Runner) Start() {
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker()
	}
	r.logger.Info("task runner started", zap.Int("workers", r.workers))
}

// Enqueue submits a task for execution. It never blocks: a full queue is
// reported to the caller instead of stalling the request path.
func (r *Runner) Enqueue(task *Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return ErrRunnerStopped
	}

	select {
	case r.queue <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop closes the queue and waits for in-flight tasks to finish, or until
// ctx expires.
func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return nil
	}
	r.stopped = true
	close(r.queue)
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.cancel()
		return nil
	case <-ctx.Done():
		r.cancel()
		return ctx.Err()
	}
}

func (r *Runner) worker() {
	defer r.wg.Done()

	for task := range r.queue {
		r.runTask(task)
	}
}

// runTask executes one task with bounded retries
func (r *Runner) runTask(task *Task) {
	var lastErr error

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		err := r.safeRun(task)
		if err == nil {
			if attempt > 1 {
				r.logger.Info("task recovered after retry",
					zap.String("task_id", task.ID.String()),
					zap.String("task", task.Name),
					zap.Int("attempt", attempt))
			}
			return
		}

		lastErr = err
		r.logger.Warn("task attempt failed",
			zap.String("task_id", task.ID.String()),
			zap.String("task", task.Name),
			zap.Int("attempt", attempt),
			zap.Error(err))

		if attempt < r.maxAttempts {
			r.sleep(r.retryDelay)
		}
	}

	r.logger.Error("task failed permanently",
		zap.String("task_id", task.ID.String()),
		zap.String("task", task.Name),
		zap.Int("attempts", r.maxAttempts),
		zap.Error(lastErr))

	if task.OnTerminalFailure != nil {
		task.OnTerminalFailure(r.ctx, lastErr)
	}
}

// safeRun isolates panics in task code so one bad task cannot kill a worker
func (r *Runner) safeRun(task *Task) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.New("tasks: panic in task")
			r.logger.Error("task panicked",
				zap.String("task_id", task.ID.String()),
				zap.String("task", task.Name),
				zap.Any("panic", rec),
				zap.Stack("stacktrace"))
		}
	}()
	return task.Run(r.ctx)
}
