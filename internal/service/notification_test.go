package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/vms-jobdist/internal/domain/model"
	"github.com/target/vms-jobdist/internal/mocks"
	"github.com/target/vms-jobdist/internal/observability/metrics"
)

type notificationFixture struct {
	client  *mocks.MockNotificationClient
	users   *mocks.MockUserDirectory
	vendors *mocks.MockVendorRepository
	jobs    *mocks.MockJobRepository
	queue   *inlineQueue
	sink    *recordingSink
}

func newNotificationFixture(t *testing.T) *notificationFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	return &notificationFixture{
		client:  mocks.NewMockNotificationClient(ctrl),
		users:   mocks.NewMockUserDirectory(ctrl),
		vendors: mocks.NewMockVendorRepository(ctrl),
		jobs:    mocks.NewMockJobRepository(ctrl),
		queue:   &inlineQueue{},
		sink:    &recordingSink{},
	}
}

func (f *notificationFixture) dispatcher(t *testing.T, expr string) *NotificationDispatcher {
	t.Helper()
	d, err := NewNotificationDispatcher(NotificationDispatcherOptions{
		Client:      f.client,
		Users:       f.users,
		Vendors:     f.vendors,
		Jobs:        f.jobs,
		Background:  f.queue,
		PayloadExpr: expr,
		Metrics:     f.sink,
	})
	require.NoError(t, err)
	return d
}

func jobDetails() *model.JobNotificationDetails {
	return &model.JobNotificationDetails{
		JobID:            "job-1",
		JobCode:          "JOB-0001",
		Title:            "Engineer",
		WorkLocationName: stringPtr("Dallas"),
	}
}

func TestNotificationDispatcher_SendsResolvedPayload(t *testing.T) {
	t.Parallel()
	f := newNotificationFixture(t)
	d := f.dispatcher(t, "")
	ctx := context.Background()

	f.jobs.EXPECT().NotificationDetails(ctx, testProgramID, "job-1").Return(jobDetails(), nil)
	f.client.EXPECT().
		Send(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, p model.NotificationPayload) error {
			assert.Equal(t, model.NotifyJobHold, p.EventCode)
			assert.Equal(t, []string{"v-1"}, p.VendorIDs)
			assert.Equal(t, "user-1", p.ActorID)
			assert.Equal(t, model.UserTypeMSP, p.ActorType)
			assert.Equal(t, "JOB-0001", p.JobDetails["job_code"])
			assert.Equal(t, "Dallas", p.JobDetails["work_location_name"])
			return nil
		})

	sent, err := d.Dispatch(ctx, model.NotificationEvent{
		Code:      model.NotifyJobHold,
		ProgramID: testProgramID,
		JobID:     "job-1",
		Actor:     model.Actor{Subject: "user-1", UserType: model.UserTypeMSP},
		VendorIDs: []string{"v-1"},
	})
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Equal(t, []string{metrics.ResultSuccess}, f.sink.results("notification.dispatch"))
}

func TestNotificationDispatcher_AccessGate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name     string
		code     model.NotificationCode
		userType model.UserType
	}{
		{"vendor raising hold", model.NotifyJobHold, model.UserTypeVendor},
		{"client raising opt in", model.NotifyJobOptIn, model.UserTypeClient},
		{"unknown type raising distribution", model.NotifyJobDistributed, model.UserType("auditor")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newNotificationFixture(t)
			d := f.dispatcher(t, "")

			sent, err := d.Dispatch(ctx, model.NotificationEvent{
				Code:      tt.code,
				ProgramID: testProgramID,
				JobID:     "job-1",
				Actor:     model.Actor{Subject: "user-1", UserType: tt.userType},
				VendorIDs: []string{"v-1"},
			})
			require.NoError(t, err)
			assert.False(t, sent)
			assert.Equal(t, []string{metrics.ResultNoop}, f.sink.results("notification.dispatch"))
		})
	}
}

func TestNotificationDispatcher_UserTypeFromDirectory(t *testing.T) {
	t.Parallel()
	f := newNotificationFixture(t)
	d := f.dispatcher(t, "")
	ctx := context.Background()

	f.users.EXPECT().UserType(ctx, "vendor-user").Return(model.UserTypeVendor, nil)
	f.jobs.EXPECT().NotificationDetails(ctx, testProgramID, "job-1").Return(jobDetails(), nil)
	f.client.EXPECT().Send(ctx, gomock.Any()).Return(nil)

	sent, err := d.Dispatch(ctx, model.NotificationEvent{
		Code:      model.NotifyJobOptIn,
		ProgramID: testProgramID,
		JobID:     "job-1",
		Actor:     model.Actor{Subject: "vendor-user"},
		VendorIDs: []string{"v-1"},
	})
	require.NoError(t, err)
	assert.True(t, sent)
}

func TestNotificationDispatcher_FallsBackToDistributedVendors(t *testing.T) {
	t.Parallel()
	f := newNotificationFixture(t)
	d := f.dispatcher(t, "")
	ctx := context.Background()
	event := model.NotificationEvent{
		Code:      model.NotifyGlobalSubmissionLimitUpdated,
		ProgramID: testProgramID,
		JobID:     "job-1",
		Actor:     model.Actor{Subject: "user-1", UserType: model.UserTypeClient},
	}

	f.vendors.EXPECT().DistributedVendorIDs(ctx, testProgramID, "job-1").Return([]string{"v-1", "v-2"}, nil)
	f.jobs.EXPECT().NotificationDetails(ctx, testProgramID, "job-1").Return(jobDetails(), nil)
	f.client.EXPECT().
		Send(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, p model.NotificationPayload) error {
			assert.Equal(t, []string{"v-1", "v-2"}, p.VendorIDs)
			return nil
		})

	sent, err := d.Dispatch(ctx, event)
	require.NoError(t, err)
	assert.True(t, sent)

	f.vendors.EXPECT().DistributedVendorIDs(ctx, testProgramID, "job-1").Return(nil, nil)
	sent, err = d.Dispatch(ctx, event)
	require.NoError(t, err)
	assert.False(t, sent, "no distributed vendors means nobody to notify")
}

func TestNotificationDispatcher_ProjectsJobDetails(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	event := model.NotificationEvent{
		Code:      model.NotifyJobHalt,
		ProgramID: testProgramID,
		JobID:     "job-1",
		Actor:     model.Actor{Subject: "user-1", UserType: model.UserTypeClient},
		VendorIDs: []string{"v-1"},
	}

	f := newNotificationFixture(t)
	d := f.dispatcher(t, "{code: job_code, where: work_location_name}")
	f.jobs.EXPECT().NotificationDetails(ctx, testProgramID, "job-1").Return(jobDetails(), nil)
	f.client.EXPECT().
		Send(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, p model.NotificationPayload) error {
			assert.Equal(t, map[string]any{"code": "JOB-0001", "where": "Dallas"}, p.JobDetails)
			return nil
		})
	_, err := d.Dispatch(ctx, event)
	require.NoError(t, err)

	scalar := newNotificationFixture(t)
	ds := scalar.dispatcher(t, "title")
	scalar.jobs.EXPECT().NotificationDetails(ctx, testProgramID, "job-1").Return(jobDetails(), nil)
	scalar.client.EXPECT().
		Send(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, p model.NotificationPayload) error {
			assert.Equal(t, map[string]any{"value": "Engineer"}, p.JobDetails)
			return nil
		})
	_, err = ds.Dispatch(ctx, event)
	require.NoError(t, err)
}

func TestNewNotificationDispatcher_RejectsBadExpression(t *testing.T) {
	t.Parallel()
	_, err := NewNotificationDispatcher(NotificationDispatcherOptions{PayloadExpr: "[?"})
	require.Error(t, err)
}

func TestNotificationDispatcher_SendFailure(t *testing.T) {
	t.Parallel()
	f := newNotificationFixture(t)
	d := f.dispatcher(t, "")
	ctx := context.Background()

	f.jobs.EXPECT().NotificationDetails(ctx, testProgramID, "job-1").Return(jobDetails(), nil)
	f.client.EXPECT().Send(ctx, gomock.Any()).Return(errors.New("503 service unavailable"))

	sent, err := d.Dispatch(ctx, model.NotificationEvent{
		Code:      model.NotifyJobHold,
		ProgramID: testProgramID,
		JobID:     "job-1",
		Actor:     model.Actor{Subject: "user-1", UserType: model.UserTypeClient},
		VendorIDs: []string{"v-1"},
	})
	require.Error(t, err)
	assert.False(t, sent)
	assert.Equal(t, []string{metrics.ResultError}, f.sink.results("notification.dispatch"))
}

func TestNotificationDispatcher_NotifyRunsInBackground(t *testing.T) {
	t.Parallel()
	f := newNotificationFixture(t)
	d := f.dispatcher(t, "")
	event := model.NotificationEvent{
		Code:      model.NotifyJobHold,
		ProgramID: testProgramID,
		JobID:     "job-1",
		Actor:     model.Actor{Subject: "user-1", UserType: model.UserTypeClient},
		VendorIDs: []string{"v-1"},
	}

	f.jobs.EXPECT().NotificationDetails(gomock.Any(), testProgramID, "job-1").Return(jobDetails(), nil)
	f.client.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)

	d.Notify(context.Background(), event)
	assert.Equal(t, []string{"notify:job_hold"}, f.queue.submitted())

	f.queue.reject = true
	d.Notify(context.Background(), event)
	assert.Equal(t,
		[]string{metrics.ResultSuccess, metrics.ResultDropped},
		f.sink.results("notification.dispatch"),
	)
}
