package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/vms-jobdist/internal/core"
	"github.com/target/vms-jobdist/internal/domain/model"
	apperrors "github.com/target/vms-jobdist/internal/errors"
	"github.com/target/vms-jobdist/internal/mocks"
)

type historyFixture struct {
	tx      *mocks.MockTxRunner
	repo    *mocks.MockHistoryRepository
	users   *mocks.MockUserDirectory
	lookups *mocks.MockLookupRepository
	svc     *HistoryService
}

func newHistoryService(t *testing.T) *historyFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	f := &historyFixture{
		tx:      mocks.NewMockTxRunner(ctrl),
		repo:    mocks.NewMockHistoryRepository(ctrl),
		users:   mocks.NewMockUserDirectory(ctrl),
		lookups: mocks.NewMockLookupRepository(ctrl),
	}
	f.svc = NewHistoryService(HistoryServiceOptions{
		Tx:        f.tx,
		Repo:      f.repo,
		Users:     f.users,
		Populator: NewPopulator(PopulatorOptions{Lookups: f.lookups}),
	})
	return f
}

func TestHistoryService_RecordEvent_FirstCreationIsRevisionZero(t *testing.T) {
	t.Parallel()
	f := newHistoryService(t)
	ctx := context.Background()
	snapshot := map[string]any{"id": "job-1", "status": "draft"}

	expectTx(f.tx)
	gomock.InOrder(
		f.repo.EXPECT().LockJobTx(gomock.Any(), nil, testProgramID, "job-1").Return(nil),
		f.repo.EXPECT().MaxRevisionTx(gomock.Any(), nil, testProgramID, "job-1").Return(nil, nil),
		f.repo.EXPECT().
			InsertTx(gomock.Any(), nil, model.NewHistoryRow{
				ProgramID:   testProgramID,
				JobID:       "job-1",
				Revision:    0,
				EventType:   model.EventJobCreated,
				Status:      "DRAFT",
				NewMetaData: snapshot,
				ActorID:     "user-1",
			}).
			Return(&model.JobHistory{ID: "h-1", Revision: 0}, nil),
	)

	rec, err := f.svc.RecordEvent(ctx, model.RecordEventParams{
		ProgramID: testProgramID,
		JobID:     "job-1",
		NewData:   snapshot,
		ActorID:   "user-1",
		EventType: model.EventJobCreated,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Revision)
}

func TestHistoryService_RecordEventTx_IncrementsRevision(t *testing.T) {
	t.Parallel()
	f := newHistoryService(t)
	ctx := context.Background()
	tree := map[string]any{
		"status": map[string]any{"key": "Status", "slug": "status", "new_value": "HOLD", "old_value": "OPEN"},
	}

	f.repo.EXPECT().LockJobTx(ctx, nil, testProgramID, "job-1").Return(nil)
	f.repo.EXPECT().MaxRevisionTx(ctx, nil, testProgramID, "job-1").Return(intPtr(4), nil)
	f.repo.EXPECT().
		InsertTx(ctx, nil, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ pgx.Tx, row model.NewHistoryRow) (*model.JobHistory, error) {
			assert.Equal(t, 5, row.Revision)
			assert.Equal(t, "HOLD", row.Status)
			assert.Nil(t, row.NewMetaData)
			assert.Equal(t, tree, row.CompareMetaData)
			return &model.JobHistory{Revision: row.Revision}, nil
		})

	rec, err := f.svc.RecordEventTx(ctx, nil, model.RecordEventParams{
		ProgramID:       testProgramID,
		JobID:           "job-1",
		NewData:         map[string]any{"status": "open"},
		EventType:       model.EventJobUpdated,
		CompareMetaData: tree,
		StatusOverride:  stringPtr("hold"),
	})
	require.NoError(t, err)
	assert.Equal(t, 5, rec.Revision)
}

func TestHistoryService_RecordEventTx_Validation(t *testing.T) {
	t.Parallel()
	f := newHistoryService(t)

	_, err := f.svc.RecordEventTx(context.Background(), nil, model.RecordEventParams{
		ProgramID: testProgramID,
		EventType: model.EventJobUpdated,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "job_id", apperrors.GetField(err))
}

func TestHistoryService_RecordEvent_PropagatesInsertFailure(t *testing.T) {
	t.Parallel()
	f := newHistoryService(t)
	ctx := context.Background()

	expectTx(f.tx)
	f.repo.EXPECT().LockJobTx(gomock.Any(), nil, testProgramID, "job-1").Return(nil)
	f.repo.EXPECT().MaxRevisionTx(gomock.Any(), nil, testProgramID, "job-1").Return(intPtr(1), nil)
	f.repo.EXPECT().InsertTx(gomock.Any(), nil, gomock.Any()).Return(nil, apperrors.Conflict("duplicate revision"))

	_, err := f.svc.RecordEvent(ctx, model.RecordEventParams{
		ProgramID: testProgramID,
		JobID:     "job-1",
		EventType: model.EventJobUpdated,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestHistoryService_Create_ComputesDiffFromOldData(t *testing.T) {
	t.Parallel()
	f := newHistoryService(t)
	ctx := context.Background()

	expectTx(f.tx)
	f.repo.EXPECT().LockJobTx(gomock.Any(), nil, testProgramID, "job-1").Return(nil)
	f.repo.EXPECT().MaxRevisionTx(gomock.Any(), nil, testProgramID, "job-1").Return(intPtr(0), nil)
	f.repo.EXPECT().
		InsertTx(gomock.Any(), nil, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ pgx.Tx, row model.NewHistoryRow) (*model.JobHistory, error) {
			assert.Equal(t, 1, row.Revision)
			assert.Equal(t, "author-1", row.ActorID)
			require.Contains(t, row.CompareMetaData, "title")
			assert.NotContains(t, row.CompareMetaData, "updated_on")
			leaf := row.CompareMetaData["title"].(map[string]any)
			assert.Equal(t, "Senior Engineer", leaf["new_value"])
			return &model.JobHistory{Revision: row.Revision}, nil
		})

	_, err := f.svc.Create(ctx, testProgramID, &model.Actor{Subject: "author-1"}, model.CreateHistoryRequest{
		JobID:     "job-1",
		EventType: model.EventJobUpdated,
		OldData:   map[string]any{"title": "Engineer", "updated_on": "2025-01-01"},
		NewData:   map[string]any{"title": "Senior Engineer", "updated_on": "2025-02-01"},
	})
	require.NoError(t, err)
}

func TestHistoryService_Create_RequiresActor(t *testing.T) {
	t.Parallel()
	f := newHistoryService(t)

	_, err := f.svc.Create(context.Background(), testProgramID, nil, model.CreateHistoryRequest{JobID: "job-1"})
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestHistoryService_List_ResolvesUsersAndIsShow(t *testing.T) {
	t.Parallel()
	f := newHistoryService(t)
	ctx := context.Background()
	opts := model.HistoryListOptions{ProgramID: testProgramID, JobID: "job-1"}
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	f.repo.EXPECT().List(ctx, opts).Return([]*model.JobHistory{
		{ID: "h-0", Revision: 0, CreatedBy: stringPtr("u-1"), UpdatedBy: stringPtr("u-1"), CreatedOn: now},
		{ID: "h-1", Revision: 1, CreatedBy: stringPtr("u-2"), UpdatedBy: stringPtr("u-2")},
		{
			ID:        "h-2",
			Revision:  2,
			CreatedBy: stringPtr("u-1"),
			CompareMetaData: map[string]any{
				"status": map[string]any{"key": "Status", "slug": "status", "new_value": "HOLD", "old_value": "OPEN"},
			},
		},
	}, nil)
	f.users.EXPECT().
		UsersByIDs(ctx, testProgramID, []string{"u-1", "u-2"}).
		Return(map[string]model.UserRef{"u-1": {ID: "u-1", FirstName: stringPtr("Ada")}}, nil)

	got, err := f.svc.List(ctx, opts)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.True(t, got[0].IsShow)
	assert.False(t, got[1].IsShow)
	assert.True(t, got[2].IsShow)

	require.NotNil(t, got[0].CreatedBy)
	assert.Equal(t, "Ada", *got[0].CreatedBy.FirstName)
	assert.Nil(t, got[1].CreatedBy, "unknown users are left unresolved")
	assert.Nil(t, got[2].UpdatedBy)
}

func TestHistoryService_List_UserLookupFailureDegrades(t *testing.T) {
	t.Parallel()
	f := newHistoryService(t)
	ctx := context.Background()
	opts := model.HistoryListOptions{ProgramID: testProgramID, JobID: "job-1"}

	f.repo.EXPECT().List(ctx, opts).Return([]*model.JobHistory{{Revision: 0, CreatedBy: stringPtr("u-1")}}, nil)
	f.users.EXPECT().UsersByIDs(ctx, testProgramID, gomock.Any()).Return(nil, errors.New("db down"))

	got, err := f.svc.List(ctx, opts)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].CreatedBy)
}

func TestHistoryService_GetRevision_Populates(t *testing.T) {
	t.Parallel()
	f := newHistoryService(t)
	ctx := context.Background()

	f.repo.EXPECT().GetRevision(ctx, testProgramID, "job-1", 0).Return(&model.JobHistory{
		ID:       "h-0",
		Revision: 0,
		NewMetaData: map[string]any{
			"title":            "Engineer",
			"work_location_id": "wl-1",
		},
	}, nil)
	f.lookups.EXPECT().
		Lookup(gomock.Any(), core.LookupSpec{
			Table:         "work_locations",
			MatchColumn:   "id",
			DisplayFields: []string{"name"},
		}, []string{"wl-1"}).
		Return(map[string]map[string]any{"wl-1": {"name": "Dallas"}}, nil)

	got, err := f.svc.GetRevision(ctx, testProgramID, "job-1", 0)
	require.NoError(t, err)
	assert.True(t, got.IsShow)
	assert.Equal(t, "Engineer", got.NewMetaData["title"])
	assert.Equal(t, map[string]any{"id": "wl-1", "name": "Dallas"}, got.NewMetaData["work_location_id"])
	assert.Nil(t, got.CompareMetaData)
}

func TestHistoryService_GetRevision_NotFound(t *testing.T) {
	t.Parallel()
	f := newHistoryService(t)
	ctx := context.Background()

	f.repo.EXPECT().GetRevision(ctx, testProgramID, "job-1", 7).Return(nil, apperrors.NotFound("revision 7 of job job-1 not found"))

	_, err := f.svc.GetRevision(ctx, testProgramID, "job-1", 7)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = f.svc.GetRevision(ctx, testProgramID, "job-1", -1)
	assert.True(t, apperrors.IsValidation(err))
}
