// Package taskqueue runs best-effort background work on a bounded queue.
package taskqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/target/vms-jobdist/internal/observability/metrics"
	"github.com/target/vms-jobdist/internal/observability/statsd"
)

const (
	defaultWorkers     = 4
	defaultQueueSize   = 256
	defaultTaskTimeout = 30 * time.Second
)

// ErrClosed is returned by Shutdown when the queue was already shut down.
var ErrClosed = errors.New("task queue closed")

// Options configures a Queue.
type Options struct {
	Workers     int
	QueueSize   int
	TaskTimeout time.Duration
	Metrics     statsd.Sink
	Logger      *slog.Logger
}

type task struct {
	name string
	fn   func(ctx context.Context) error
}

// Queue executes submitted tasks on a fixed set of workers. Submit never
// blocks: a full or closed queue drops the task. Task failures are logged
// and never retried.
type Queue struct {
	tasks   chan task
	group   *errgroup.Group
	base    context.Context
	cancel  context.CancelFunc
	timeout time.Duration
	metrics statsd.Sink
	logger  *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// New creates a Queue and starts its workers.
func New(opts Options) *Queue {
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	size := opts.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}
	timeout := opts.TaskTimeout
	if timeout <= 0 {
		timeout = defaultTaskTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	base, cancel := context.WithCancel(context.Background())
	q := &Queue{
		tasks:   make(chan task, size),
		group:   &errgroup.Group{},
		base:    base,
		cancel:  cancel,
		timeout: timeout,
		metrics: opts.Metrics,
		logger:  logger.With("component", "taskqueue"),
	}
	for range workers {
		q.group.Go(q.work)
	}
	return q
}

// Submit enqueues fn under name. It reports false when the task was dropped.
func (q *Queue) Submit(name string, fn func(ctx context.Context) error) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.drop(name, "closed")
		return false
	}
	select {
	case q.tasks <- task{name: name, fn: fn}:
		return true
	default:
		q.drop(name, "full")
		return false
	}
}

func (q *Queue) drop(name, reason string) {
	q.logger.Warn("background task dropped", "task", name, "reason", reason)
	metrics.EmitTask(q.metrics, metrics.TaskMetric{Task: name, Result: metrics.ResultDropped})
}

func (q *Queue) work() error {
	for t := range q.tasks {
		q.run(t)
	}
	return nil
}

func (q *Queue) run(t task) {
	ctx, cancel := context.WithTimeout(q.base, q.timeout)
	defer cancel()

	start := time.Now()
	err := safeCall(ctx, t.fn)
	elapsed := time.Since(start)

	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
		q.logger.Warn("background task failed",
			"task", t.name,
			"duration", elapsed,
			"error", err,
		)
	}
	metrics.EmitTask(q.metrics, metrics.TaskMetric{Task: t.name, Result: result, Duration: elapsed, Err: err})
}

func safeCall(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx)
}

// Shutdown stops accepting tasks and waits for queued ones to finish. When
// ctx ends first, running tasks are cancelled and ctx's error is returned.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.closed = true
	close(q.tasks)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		_ = q.group.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.cancel()
		<-done
		return ctx.Err()
	}
}
