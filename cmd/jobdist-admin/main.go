// Command jobdist-admin runs operator tasks against the job distribution
// database and cache.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/target/vms-jobdist/internal/bootstrap"
)

func main() {
	logger := bootstrap.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(func(ctx context.Context) (*runtime, error) {
		cfg, err := bootstrap.LoadConfig()
		if err != nil {
			return nil, err
		}
		return loadRuntime(ctx, cfg, logger)
	})
	if err := root.ExecuteContext(ctx); err != nil {
		logger.ErrorContext(ctx, "command failed", "error", err)
		stop()
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}
