package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/target/vms-jobdist/internal/domain/model"
)

const defaultCommandTimeout = 5 * time.Minute

type historyReader interface {
	List(ctx context.Context, opts model.HistoryListOptions) ([]model.HistorySummary, error)
	GetRevision(ctx context.Context, programID, jobID string, revision int) (*model.HistoryRevision, error)
}

type cacheFlusher interface {
	Flush(ctx context.Context) (int, error)
}

// runtime is what the commands operate on. Close releases every connection.
type runtime struct {
	Migrate func(ctx context.Context) ([]string, error)
	Sweep   func(ctx context.Context) (model.SweepResult, error)
	History historyReader
	Cache   cacheFlusher
	Close   func()
}

type runtimeLoader func(ctx context.Context) (*runtime, error)

func newRootCmd(load runtimeLoader) *cobra.Command {
	var timeout time.Duration

	root := &cobra.Command{
		Use:           "jobdist-admin",
		Short:         "Operator tasks for the job distribution service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().DurationVar(&timeout, "timeout", defaultCommandTimeout, "Abort the command after this long")

	// withRuntime loads the runtime lazily so --help never touches the database.
	withRuntime := func(fn func(ctx context.Context, rt *runtime, out io.Writer) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			rt, err := load(ctx)
			if err != nil {
				return err
			}
			if rt.Close != nil {
				defer rt.Close()
			}
			return fn(ctx, rt, cmd.OutOrStdout())
		}
	}

	root.AddCommand(
		migrateCmd(withRuntime),
		sweepCmd(withRuntime),
		historyCmd(load, &timeout),
		cacheClearCmd(withRuntime),
	)
	return root
}

type runtimeRunner func(fn func(ctx context.Context, rt *runtime, out io.Writer) error) func(*cobra.Command, []string) error

func migrateCmd(withRuntime runtimeRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: withRuntime(func(ctx context.Context, rt *runtime, out io.Writer) error {
			applied, err := rt.Migrate(ctx)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				_, err = fmt.Fprintln(out, "schema is up to date")
				return err
			}
			for _, v := range applied {
				if _, err = fmt.Fprintf(out, "applied %s\n", v); err != nil {
					return err
				}
			}
			return nil
		}),
	}
}

func sweepCmd(withRuntime runtimeRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run one distribution sweep now",
		Args:  cobra.NoArgs,
		RunE: withRuntime(func(ctx context.Context, rt *runtime, out io.Writer) error {
			res, err := rt.Sweep(ctx)
			if err != nil {
				return fmt.Errorf("sweep: %w", err)
			}
			_, err = fmt.Fprintf(out, "scanned=%d promoted=%d skipped=%d failed=%d\n",
				res.Scanned, res.Promoted, res.Skipped, res.Failed)
			return err
		}),
	}
}

type historyFlags struct {
	revision  int
	eventType string
	limit     int
	offset    int
}

func historyCmd(load runtimeLoader, timeout *time.Duration) *cobra.Command {
	var flags historyFlags

	cmd := &cobra.Command{
		Use:   "history <program_id> <job_id>",
		Short: "Print a job's history summaries, or one populated revision",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.revision < 0 {
				return errors.New("--revision must be positive")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), *timeout)
			defer cancel()

			rt, err := load(ctx)
			if err != nil {
				return err
			}
			if rt.Close != nil {
				defer rt.Close()
			}

			var doc any
			if flags.revision > 0 {
				doc, err = rt.History.GetRevision(ctx, args[0], args[1], flags.revision)
			} else {
				opts := model.HistoryListOptions{
					ProgramID: args[0],
					JobID:     args[1],
					Limit:     flags.limit,
					Offset:    flags.offset,
				}
				if flags.eventType != "" {
					opts.EventType = &flags.eventType
				}
				doc, err = rt.History.List(ctx, opts)
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), doc)
		},
	}
	cmd.Flags().IntVar(&flags.revision, "revision", 0, "Print this revision with references populated")
	cmd.Flags().StringVar(&flags.eventType, "event-type", "", "Only list entries of this event type")
	cmd.Flags().IntVar(&flags.limit, "limit", 50, "Maximum entries to list")
	cmd.Flags().IntVar(&flags.offset, "offset", 0, "Entries to skip")
	return cmd
}

func cacheClearCmd(withRuntime runtimeRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "cache-clear",
		Short: "Drop cached populate lookups",
		Args:  cobra.NoArgs,
		RunE: withRuntime(func(ctx context.Context, rt *runtime, out io.Writer) error {
			n, err := rt.Cache.Flush(ctx)
			if err != nil {
				return fmt.Errorf("flush populate cache: %w", err)
			}
			_, err = fmt.Fprintf(out, "removed %d shared cache entries\n", n)
			return err
		}),
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
