package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/target/vms-jobdist/internal/core"
	"github.com/target/vms-jobdist/internal/data"
	"github.com/target/vms-jobdist/internal/domain/distribution"
	"github.com/target/vms-jobdist/internal/domain/model"
	apperrors "github.com/target/vms-jobdist/internal/errors"
	"github.com/target/vms-jobdist/internal/observability/metrics"
	"github.com/target/vms-jobdist/internal/observability/notify"
	"github.com/target/vms-jobdist/internal/observability/statsd"
)

const defaultSweepBatchSize = 500

// SweepAlerter receives a summary of sweeps that had row failures.
type SweepAlerter interface {
	NotifySweepFailure(ctx context.Context, payload notify.SweepFailurePayload)
}

// DistributionSweepServiceOptions bundles dependencies for NewDistributionSweepService.
type DistributionSweepServiceOptions struct {
	Distributions core.DistributionRepository
	Jobs          core.JobRepository
	Schedules     core.ScheduleRepository
	BatchSize     int
	TimeProvider  data.TimeProvider
	Alerter       SweepAlerter // Optional
	Metrics       statsd.Sink  // Optional
	Logger        *slog.Logger
}

// DistributionSweepService promotes scheduled distributions whose delay has
// passed and whose schedule condition holds.
type DistributionSweepService struct {
	distributions core.DistributionRepository
	jobs          core.JobRepository
	schedules     core.ScheduleRepository
	batchSize     int
	clock         data.TimeProvider
	alerter       SweepAlerter
	metrics       statsd.Sink
	logger        *slog.Logger
}

// NewDistributionSweepService creates a DistributionSweepService.
func NewDistributionSweepService(opts DistributionSweepServiceOptions) *DistributionSweepService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default().With("component", "distribution_sweep")
	}
	clock := opts.TimeProvider
	if clock == nil {
		clock = data.RealTimeProvider{}
	}
	batch := opts.BatchSize
	if batch <= 0 {
		batch = defaultSweepBatchSize
	}
	return &DistributionSweepService{
		distributions: opts.Distributions,
		jobs:          opts.Jobs,
		schedules:     opts.Schedules,
		batchSize:     batch,
		clock:         clock,
		alerter:       opts.Alerter,
		metrics:       opts.Metrics,
		logger:        logger,
	}
}

// Sweep evaluates every scheduled distribution once, reading them in pages
// of batchSize ordered by (created_on, id). A failing row is counted and
// logged and never stops the sweep; only failing to list a page fails the
// sweep itself.
func (s *DistributionSweepService) Sweep(ctx context.Context) (model.SweepResult, error) {
	var res model.SweepResult
	start := s.clock.Now()
	began := time.Now()

	var (
		failures *multierror.Error
		cursor   *model.ScheduledCursor
	)
	for {
		rows, err := s.distributions.ListScheduled(ctx, cursor, s.batchSize)
		if err != nil {
			s.emit(res, time.Since(began), err)
			return res, fmt.Errorf("list scheduled distributions: %w", err)
		}
		res.Scanned += len(rows)

		for _, row := range rows {
			if err := ctx.Err(); err != nil {
				s.emit(res, time.Since(began), err)
				return res, err
			}
			promoted, err := s.evaluateRow(ctx, row, start)
			switch {
			case err != nil:
				res.Failed++
				failures = multierror.Append(failures, fmt.Errorf("distribution %s: %w", row.ID, err))
				s.logger.WarnContext(ctx, "scheduled distribution failed",
					"distribution_id", row.ID,
					"job_id", row.JobID,
					"error", err,
				)
			case promoted:
				res.Promoted++
			default:
				res.Skipped++
			}
		}

		if len(rows) < s.batchSize {
			break
		}
		cursor = model.CursorAfter(rows[len(rows)-1])
	}

	if failures != nil {
		s.logger.ErrorContext(ctx, "distribution sweep finished with failures",
			"failed", res.Failed,
			"scanned", res.Scanned,
			"errors", failures.Error(),
		)
		s.alert(ctx, res, failures, start)
	}
	s.emit(res, time.Since(began), nil)
	return res, nil
}

// evaluateRow promotes row when both its time and condition checks pass.
// Panics are converted to errors so one row cannot end the sweep.
func (s *DistributionSweepService) evaluateRow(
	ctx context.Context,
	row *model.JobDistribution,
	now time.Time,
) (promoted bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	detail, err := s.scheduleDetail(ctx, row)
	if err != nil || detail == nil {
		return false, err
	}

	if !distribution.ShouldDistributeByTime(row.CreatedOn, now, detail.Duration, detail.MeasureUnit) {
		return false, nil
	}

	submissions := 0
	if distribution.NeedsSubmissionCount(detail.Condition) {
		submissions, err = s.schedules.CountSubmissions(ctx, row.JobID)
		if err != nil {
			return false, fmt.Errorf("count submissions: %w", err)
		}
	}
	if !distribution.ShouldDistributeByCondition(detail.Condition, submissions) {
		return false, nil
	}

	promoted, err = s.distributions.Promote(ctx, row.ID, now)
	if err != nil {
		return false, fmt.Errorf("promote: %w", err)
	}
	if promoted {
		s.logger.InfoContext(ctx, "scheduled distribution released",
			"distribution_id", row.ID,
			"job_id", row.JobID,
			"vendor_id", row.VendorID,
		)
	}
	return promoted, nil
}

// scheduleDetail returns the template schedule entry covering the row, or
// nil when the job, its schedule or a matching entry is missing.
func (s *DistributionSweepService) scheduleDetail(
	ctx context.Context,
	row *model.JobDistribution,
) (*model.ScheduleDetail, error) {
	job, err := s.jobs.GetWithTemplate(ctx, row.ProgramID, row.JobID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("load job: %w", err)
	}
	if job.DistributionScheduleID == nil || *job.DistributionScheduleID == "" {
		return nil, nil
	}

	details, err := s.schedules.DetailsForSchedule(ctx, *job.DistributionScheduleID)
	if err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}
	for i := range details {
		if details[i].Matches(row.VendorID, row.VendorGroupID) {
			return &details[i], nil
		}
	}
	return nil, nil
}

func (s *DistributionSweepService) alert(
	ctx context.Context,
	res model.SweepResult,
	failures *multierror.Error,
	at time.Time,
) {
	if s.alerter == nil {
		return
	}
	msgs := make([]string, 0, len(failures.Errors))
	for _, e := range failures.Errors {
		msgs = append(msgs, e.Error())
	}
	s.alerter.NotifySweepFailure(ctx, notify.SweepFailurePayload{
		Scanned:    res.Scanned,
		Promoted:   res.Promoted,
		Failed:     res.Failed,
		Errors:     msgs,
		OccurredAt: at,
	})
}

func (s *DistributionSweepService) emit(res model.SweepResult, elapsed time.Duration, err error) {
	metrics.EmitSweep(s.metrics, metrics.SweepMetric{
		Scanned:  res.Scanned,
		Promoted: res.Promoted,
		Failed:   res.Failed,
		Duration: elapsed,
		Err:      err,
	})
}
