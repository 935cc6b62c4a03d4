package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/vms-jobdist/internal/core"
	"github.com/target/vms-jobdist/internal/data/pgxutil"
	"github.com/target/vms-jobdist/internal/domain/model"
	apperrors "github.com/target/vms-jobdist/internal/errors"
	"github.com/target/vms-jobdist/internal/testutil"
)

func TestHistoryRepo_Integration_RevisionsAndLatest(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		clock := NewFixedTimeProvider(testutil.TestTime())
		repo := NewHistoryRepo(db, clock)
		runner := pgxutil.NewTxRunner(db)

		write := func(revision int, event, status string, compare map[string]any) {
			err := runner.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
				if err := repo.LockJobTx(ctx, tx, "p1", "j1"); err != nil {
					return err
				}
				_, err := repo.InsertTx(ctx, tx, model.NewHistoryRow{
					ProgramID: "p1", JobID: "j1", Revision: revision, EventType: event,
					Status: status, CompareMetaData: compare, ActorID: "u1",
				})
				return err
			})
			require.NoError(t, err)
			clock.AddTime(time.Minute)
		}

		var maxRev *int
		err := runner.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
			var err error
			maxRev, err = repo.MaxRevisionTx(ctx, tx, "p1", "j1")
			return err
		})
		require.NoError(t, err)
		assert.Nil(t, maxRev)

		write(0, model.EventJobCreated, "OPEN", nil)
		write(1, model.EventJobUpdated, "HOLD", map[string]any{"status": map[string]any{"new_value": "HOLD"}})
		write(2, model.EventJobUpdated, "HALTED", map[string]any{"status": map[string]any{"new_value": "HALTED"}})

		err = runner.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
			var err error
			maxRev, err = repo.MaxRevisionTx(ctx, tx, "p1", "j1")
			return err
		})
		require.NoError(t, err)
		require.NotNil(t, maxRev)
		assert.Equal(t, 2, *maxRev)

		list, err := repo.List(ctx, model.HistoryListOptions{ProgramID: "p1", JobID: "j1"})
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, 0, list[0].Revision)
		assert.Nil(t, list[0].CompareMetaData)
		assert.NotNil(t, list[1].CompareMetaData)

		latest, err := repo.LatestByEventType(ctx, "p1", "j1", model.EventJobUpdated)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, "HALTED", latest.Status)

		none, err := repo.LatestByEventType(ctx, "p1", "j1", model.EventJobDistributed)
		require.NoError(t, err)
		assert.Nil(t, none)

		rev, err := repo.GetRevision(ctx, "p1", "j1", 1)
		require.NoError(t, err)
		assert.Equal(t, "HOLD", rev.Status)

		_, err = repo.GetRevision(ctx, "p1", "j1", 7)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestHistoryRepo_Integration_DuplicateRevisionConflicts(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewHistoryRepo(db, nil)
		runner := pgxutil.NewTxRunner(db)
		insert := func() error {
			return runner.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
				_, err := repo.InsertTx(ctx, tx, model.NewHistoryRow{
					ProgramID: "p1", JobID: "j2", Revision: 0, EventType: model.EventJobCreated, Status: "OPEN",
				})
				return err
			})
		}
		require.NoError(t, insert())
		err := insert()
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))
	})
}

func TestLookupAndUserRepos_Integration(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		fx := testutil.NewFixtures(t, db)
		loc := fx.WorkLocation("Dallas")
		fx.Currency("USD", "US Dollar", "$")
		fx.User("u1", model.UserTypeClient, "", "Ann", "Lee")

		lookups := NewLookupRepo(db)
		got, err := lookups.Lookup(ctx, core.LookupSpec{
			Table: "work_locations", MatchColumn: "id", DisplayFields: []string{"name"},
		}, []string{loc, "missing"})
		require.NoError(t, err)
		assert.Equal(t, map[string]map[string]any{loc: {"name": "Dallas"}}, got)

		got, err = lookups.Lookup(ctx, core.LookupSpec{
			Table: "currencies", MatchColumn: "code", DisplayFields: []string{"name", "label", "symbol", "code"},
		}, []string{"USD"})
		require.NoError(t, err)
		assert.Equal(t, "$", got["USD"]["symbol"])
		assert.Equal(t, "USD", got["USD"]["code"])

		users := NewUserRepo(db)
		refs, err := users.UsersByIDs(ctx, fx.ProgramID, []string{"u1", "ghost"})
		require.NoError(t, err)
		require.Contains(t, refs, "u1")
		assert.Equal(t, "Ann", *refs["u1"].FirstName)
		assert.NotContains(t, refs, "ghost")

		typ, err := users.UserType(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, model.UserTypeClient, typ)
	})
}
