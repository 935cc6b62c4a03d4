package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	schedrunner "github.com/target/vms-jobdist/internal/adapters/scheduler"
	"github.com/target/vms-jobdist/internal/data"
	"github.com/target/vms-jobdist/internal/observability/statsd"
)

// SweepRunnerConfig contains configuration for the distribution sweep loop.
type SweepRunnerConfig struct {
	// DB backs the advisory lock shared by replicas; without it every
	// replica sweeps.
	DB       *sql.DB
	Sweeper  schedrunner.Sweeper
	Interval time.Duration
	Metrics  statsd.Sink
	Logger   *slog.Logger
}

// RunDistributionSweep runs the distribution sweep until ctx is cancelled.
func RunDistributionSweep(ctx context.Context, cfg SweepRunnerConfig) error {
	if cfg.Sweeper == nil {
		return errors.New("distribution sweep requires a sweeper")
	}
	opts := schedrunner.RunnerOptions{
		Sweeper:  cfg.Sweeper,
		Interval: cfg.Interval,
		Metrics:  cfg.Metrics,
		Logger:   cfg.Logger,
	}
	if cfg.DB != nil {
		opts.Locker = data.NewTaskLock(cfg.DB)
	}
	runner, err := schedrunner.NewRunner(opts)
	if err != nil {
		return fmt.Errorf("create sweep runner: %w", err)
	}
	return runner.Run(ctx)
}
