// Package scheduler runs the distribution sweep on a fixed interval.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/target/vms-jobdist/internal/domain/model"
	"github.com/target/vms-jobdist/internal/observability/statsd"
)

// DefaultInterval is the sweep period when none is configured.
const DefaultInterval = 5 * time.Minute

// lockName is the advisory lock shared by every replica's sweep.
const lockName = "distribution-sweep"

// Sweeper evaluates every scheduled distribution once.
type Sweeper interface {
	Sweep(ctx context.Context) (model.SweepResult, error)
}

// Locker runs fn only when the named lock is free.
type Locker interface {
	TryWithLock(ctx context.Context, name string, fn func(context.Context) error) (bool, error)
}

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	Sweeper  Sweeper
	Interval time.Duration
	// Locker is optional; without it every replica sweeps.
	Locker  Locker
	Metrics statsd.Sink
	Logger  *slog.Logger
}

// Runner ticks the sweep until its context ends.
type Runner struct {
	sweeper  Sweeper
	interval time.Duration
	locker   Locker
	metrics  statsd.Sink
	logger   *slog.Logger
}

// NewRunner creates a Runner.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Sweeper == nil {
		return nil, errors.New("sweeper is required")
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Runner{
		sweeper:  opts.Sweeper,
		interval: opts.Interval,
		locker:   opts.Locker,
		metrics:  opts.Metrics,
		logger:   opts.Logger.With("component", "sweep_runner"),
	}, nil
}

// Run sweeps every interval until ctx is cancelled. Sweep errors are logged
// and never stop the loop.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting distribution sweep runner", "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "distribution sweep runner stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case <-ticker.C:
			r.Tick(ctx)
		}
	}
}

// Tick runs one sweep, under the shared lock when a Locker is configured.
// It reports whether this replica performed the sweep.
func (r *Runner) Tick(ctx context.Context) bool {
	var res model.SweepResult
	sweep := func(ctx context.Context) error {
		var err error
		res, err = r.sweeper.Sweep(ctx)
		return err
	}

	ran := true
	var err error
	if r.locker != nil {
		ran, err = r.locker.TryWithLock(ctx, lockName, sweep)
	} else {
		err = sweep(ctx)
	}

	switch {
	case err != nil:
		r.logger.ErrorContext(ctx, "distribution sweep failed", "error", err)
	case !ran:
		r.count("skipped")
		r.logger.DebugContext(ctx, "distribution sweep held by another replica")
	case res.Promoted > 0 || res.Failed > 0:
		r.logger.InfoContext(ctx, "distribution sweep finished",
			"scanned", res.Scanned,
			"promoted", res.Promoted,
			"failed", res.Failed,
		)
	}
	if err == nil && ran && r.metrics != nil {
		r.metrics.Gauge("distribution.sweep.last_success_epoch", float64(time.Now().Unix()), nil)
	}
	return ran
}

func (r *Runner) count(result string) {
	if r.metrics == nil {
		return
	}
	r.metrics.Count("distribution.sweep.tick", 1, map[string]string{"result": result})
}
