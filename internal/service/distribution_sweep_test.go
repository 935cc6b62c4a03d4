package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/vms-jobdist/internal/data"
	"github.com/target/vms-jobdist/internal/domain/model"
	apperrors "github.com/target/vms-jobdist/internal/errors"
	"github.com/target/vms-jobdist/internal/mocks"
	"github.com/target/vms-jobdist/internal/observability/metrics"
	"github.com/target/vms-jobdist/internal/observability/notify"
)

var sweepNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type recordingAlerter struct {
	payloads []notify.SweepFailurePayload
}

func (a *recordingAlerter) NotifySweepFailure(_ context.Context, p notify.SweepFailurePayload) {
	a.payloads = append(a.payloads, p)
}

type sweepFixture struct {
	distributions *mocks.MockDistributionRepository
	jobs          *mocks.MockJobRepository
	schedules     *mocks.MockScheduleRepository
	alerter       *recordingAlerter
	sink          *recordingSink
	svc           *DistributionSweepService
}

func newSweepService(t *testing.T) *sweepFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &sweepFixture{
		distributions: mocks.NewMockDistributionRepository(ctrl),
		jobs:          mocks.NewMockJobRepository(ctrl),
		schedules:     mocks.NewMockScheduleRepository(ctrl),
		alerter:       &recordingAlerter{},
		sink:          &recordingSink{},
	}
	f.svc = NewDistributionSweepService(DistributionSweepServiceOptions{
		Distributions: f.distributions,
		Jobs:          f.jobs,
		Schedules:     f.schedules,
		BatchSize:     50,
		TimeProvider:  data.NewFixedTimeProvider(sweepNow),
		Alerter:       f.alerter,
		Metrics:       f.sink,
	})
	return f
}

func scheduledRow(id, jobID, vendorID string, age time.Duration) *model.JobDistribution {
	return &model.JobDistribution{
		ID:        id,
		ProgramID: testProgramID,
		JobID:     jobID,
		VendorID:  vendorID,
		Status:    model.DistributionStatusScheduled,
		CreatedOn: sweepNow.Add(-age),
	}
}

func scheduledJob(jobID string) *model.JobWithTemplate {
	return &model.JobWithTemplate{
		Job:              model.Job{ID: jobID, ProgramID: testProgramID, Status: model.JobStatusSourcing},
		JobTemplateFlags: model.JobTemplateFlags{DistributionScheduleID: stringPtr("sched-1")},
	}
}

func TestDistributionSweep_PromotesOnlyDueRows(t *testing.T) {
	t.Parallel()
	f := newSweepService(t)
	ctx := context.Background()

	due := scheduledRow("d-1", "job-1", "v-1", 3*time.Hour)
	early := scheduledRow("d-2", "job-1", "v-1", time.Hour)
	f.distributions.EXPECT().ListScheduled(ctx, nil, 50).Return([]*model.JobDistribution{due, early}, nil)
	f.jobs.EXPECT().GetWithTemplate(ctx, testProgramID, "job-1").Return(scheduledJob("job-1"), nil).Times(2)
	f.schedules.EXPECT().DetailsForSchedule(ctx, "sched-1").Return([]model.ScheduleDetail{
		{ID: "sd-1", VendorIDs: []string{"v-1"}, Duration: 2, MeasureUnit: model.MeasureUnitHours},
	}, nil).Times(2)
	f.distributions.EXPECT().Promote(ctx, "d-1", sweepNow).Return(true, nil)

	res, err := f.svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.SweepResult{Scanned: 2, Promoted: 1, Skipped: 1}, res)
	assert.Empty(t, f.alerter.payloads)
	assert.Equal(t, []string{metrics.ResultSuccess}, f.sink.results("distribution.sweep"))
}

func TestDistributionSweep_ConditionGatesRelease(t *testing.T) {
	t.Parallel()
	f := newSweepService(t)
	ctx := context.Background()
	gt5 := &model.DistributionCondition{Field: "submissions", Operator: ">", Value: 5}

	few := scheduledRow("d-1", "job-1", "v-1", 3*time.Hour)
	many := scheduledRow("d-2", "job-2", "v-1", 3*time.Hour)
	f.distributions.EXPECT().ListScheduled(ctx, nil, 50).Return([]*model.JobDistribution{few, many}, nil)
	f.jobs.EXPECT().GetWithTemplate(ctx, testProgramID, "job-1").Return(scheduledJob("job-1"), nil)
	f.jobs.EXPECT().GetWithTemplate(ctx, testProgramID, "job-2").Return(scheduledJob("job-2"), nil)
	f.schedules.EXPECT().DetailsForSchedule(ctx, "sched-1").Return([]model.ScheduleDetail{
		{VendorIDs: []string{"v-1"}, Duration: 2, MeasureUnit: model.MeasureUnitHours, Condition: gt5},
	}, nil).Times(2)
	f.schedules.EXPECT().CountSubmissions(ctx, "job-1").Return(3, nil)
	f.schedules.EXPECT().CountSubmissions(ctx, "job-2").Return(6, nil)
	f.distributions.EXPECT().Promote(ctx, "d-2", sweepNow).Return(true, nil)

	res, err := f.svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Promoted)
	assert.Equal(t, 1, res.Skipped)
}

func TestDistributionSweep_SkipsRowsWithoutSchedule(t *testing.T) {
	t.Parallel()
	f := newSweepService(t)
	ctx := context.Background()

	noSchedule := scheduledJob("job-1")
	noSchedule.DistributionScheduleID = nil
	rows := []*model.JobDistribution{
		scheduledRow("d-1", "job-1", "v-1", 10*time.Hour),
		scheduledRow("d-2", "job-gone", "v-1", 10*time.Hour),
		scheduledRow("d-3", "job-3", "v-other", 10*time.Hour),
	}
	f.distributions.EXPECT().ListScheduled(ctx, nil, 50).Return(rows, nil)
	f.jobs.EXPECT().GetWithTemplate(ctx, testProgramID, "job-1").Return(noSchedule, nil)
	f.jobs.EXPECT().GetWithTemplate(ctx, testProgramID, "job-gone").Return(nil, apperrors.NotFound("job not found"))
	f.jobs.EXPECT().GetWithTemplate(ctx, testProgramID, "job-3").Return(scheduledJob("job-3"), nil)
	f.schedules.EXPECT().DetailsForSchedule(ctx, "sched-1").Return([]model.ScheduleDetail{
		{VendorIDs: []string{"v-1"}, Duration: 1, MeasureUnit: model.MeasureUnitHours},
	}, nil)

	res, err := f.svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.SweepResult{Scanned: 3, Skipped: 3}, res)
}

func TestDistributionSweep_IsolatesRowFailures(t *testing.T) {
	t.Parallel()
	f := newSweepService(t)
	ctx := context.Background()

	rows := []*model.JobDistribution{
		scheduledRow("d-1", "job-1", "v-1", 5*time.Hour),
		scheduledRow("d-2", "job-2", "v-1", 5*time.Hour),
	}
	f.distributions.EXPECT().ListScheduled(ctx, nil, 50).Return(rows, nil)
	f.jobs.EXPECT().GetWithTemplate(ctx, testProgramID, "job-1").Return(nil, errors.New("connection refused"))
	f.jobs.EXPECT().GetWithTemplate(ctx, testProgramID, "job-2").Return(scheduledJob("job-2"), nil)
	f.schedules.EXPECT().DetailsForSchedule(ctx, "sched-1").Return([]model.ScheduleDetail{
		{VendorIDs: []string{"v-1"}, Duration: 1, MeasureUnit: model.MeasureUnitHours},
	}, nil)
	f.distributions.EXPECT().Promote(ctx, "d-2", sweepNow).Return(true, nil)

	res, err := f.svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.SweepResult{Scanned: 2, Promoted: 1, Failed: 1}, res)

	require.Len(t, f.alerter.payloads, 1)
	payload := f.alerter.payloads[0]
	assert.Equal(t, 1, payload.Failed)
	assert.Equal(t, sweepNow, payload.OccurredAt)
	require.Len(t, payload.Errors, 1)
	assert.Contains(t, payload.Errors[0], "distribution d-1")
	assert.Contains(t, payload.Errors[0], "connection refused")
}

func TestDistributionSweep_RecoversPanics(t *testing.T) {
	t.Parallel()
	f := newSweepService(t)
	ctx := context.Background()

	f.distributions.EXPECT().ListScheduled(ctx, nil, 50).
		Return([]*model.JobDistribution{scheduledRow("d-1", "job-1", "v-1", 5*time.Hour)}, nil)
	f.jobs.EXPECT().GetWithTemplate(ctx, testProgramID, "job-1").DoAndReturn(
		func(context.Context, string, string) (*model.JobWithTemplate, error) {
			panic("nil map write")
		})

	res, err := f.svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, f.alerter.payloads, 1)
	assert.Contains(t, f.alerter.payloads[0].Errors[0], "panic: nil map write")
}

func TestDistributionSweep_ListFailure(t *testing.T) {
	t.Parallel()
	f := newSweepService(t)
	ctx := context.Background()

	f.distributions.EXPECT().ListScheduled(ctx, nil, 50).Return(nil, errors.New("timeout"))

	_, err := f.svc.Sweep(ctx)
	require.Error(t, err)
	assert.Equal(t, []string{metrics.ResultError}, f.sink.results("distribution.sweep"))
}

func TestDistributionSweep_StopsOnCancel(t *testing.T) {
	t.Parallel()
	f := newSweepService(t)
	ctx, cancel := context.WithCancel(context.Background())

	f.distributions.EXPECT().ListScheduled(ctx, nil, 50).DoAndReturn(func(context.Context, *model.ScheduledCursor, int) ([]*model.JobDistribution, error) {
		cancel()
		return []*model.JobDistribution{scheduledRow("d-1", "job-1", "v-1", time.Hour)}, nil
	})

	_, err := f.svc.Sweep(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDistributionSweep_PagesThroughEveryScheduledRow(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	distributions := mocks.NewMockDistributionRepository(ctrl)
	jobs := mocks.NewMockJobRepository(ctrl)
	schedules := mocks.NewMockScheduleRepository(ctrl)
	svc := NewDistributionSweepService(DistributionSweepServiceOptions{
		Distributions: distributions,
		Jobs:          jobs,
		Schedules:     schedules,
		BatchSize:     1,
		TimeProvider:  data.NewFixedTimeProvider(sweepNow),
	})
	ctx := context.Background()
	gt5 := &model.DistributionCondition{Field: "submissions", Operator: ">", Value: 5}

	blocked := scheduledRow("d-blocked", "job-quiet", "v-1", 10*time.Hour)
	due := scheduledRow("d-due", "job-busy", "v-1", 3*time.Hour)
	gomock.InOrder(
		distributions.EXPECT().ListScheduled(ctx, nil, 1).Return([]*model.JobDistribution{blocked}, nil),
		distributions.EXPECT().ListScheduled(ctx, model.CursorAfter(blocked), 1).Return([]*model.JobDistribution{due}, nil),
		distributions.EXPECT().ListScheduled(ctx, model.CursorAfter(due), 1).Return(nil, nil),
	)
	jobs.EXPECT().GetWithTemplate(ctx, testProgramID, "job-quiet").Return(scheduledJob("job-quiet"), nil)
	jobs.EXPECT().GetWithTemplate(ctx, testProgramID, "job-busy").Return(scheduledJob("job-busy"), nil)
	schedules.EXPECT().DetailsForSchedule(ctx, "sched-1").Return([]model.ScheduleDetail{
		{VendorIDs: []string{"v-1"}, Duration: 2, MeasureUnit: model.MeasureUnitHours, Condition: gt5},
	}, nil).Times(2)
	schedules.EXPECT().CountSubmissions(ctx, "job-quiet").Return(0, nil)
	schedules.EXPECT().CountSubmissions(ctx, "job-busy").Return(9, nil)
	distributions.EXPECT().Promote(ctx, "d-due", sweepNow).Return(true, nil)

	res, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.SweepResult{Scanned: 2, Promoted: 1, Skipped: 1}, res)
}

func TestDistributionSweep_PageFailureAfterFirstPage(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	distributions := mocks.NewMockDistributionRepository(ctrl)
	jobs := mocks.NewMockJobRepository(ctrl)
	svc := NewDistributionSweepService(DistributionSweepServiceOptions{
		Distributions: distributions,
		Jobs:          jobs,
		Schedules:     mocks.NewMockScheduleRepository(ctrl),
		BatchSize:     1,
		TimeProvider:  data.NewFixedTimeProvider(sweepNow),
	})
	ctx := context.Background()

	first := scheduledRow("d-1", "job-gone", "v-1", time.Hour)
	distributions.EXPECT().ListScheduled(ctx, nil, 1).Return([]*model.JobDistribution{first}, nil)
	distributions.EXPECT().ListScheduled(ctx, model.CursorAfter(first), 1).Return(nil, errors.New("timeout"))
	jobs.EXPECT().GetWithTemplate(ctx, testProgramID, "job-gone").Return(nil, apperrors.NotFound("job not found"))

	res, err := svc.Sweep(ctx)
	require.Error(t, err)
	assert.Equal(t, model.SweepResult{Scanned: 1, Skipped: 1}, res)
}
