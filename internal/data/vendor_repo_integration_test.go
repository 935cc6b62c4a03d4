package data

import (
	"context"
	"database/sql"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/vms-jobdist/internal/data/pgxutil"
	"github.com/target/vms-jobdist/internal/domain/model"
	"github.com/target/vms-jobdist/internal/testutil"
)

func TestVendorRepo_Integration_MatchActive(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		fx := testutil.NewFixtures(t, db)

		hierarchyMatch := fx.Vendor(testutil.VendorFixture{Name: "A", HierarchyIDs: []string{"h1"}, AllLabor: true})
		allHierarchy := fx.Vendor(testutil.VendorFixture{
			Name: "B", AllHierarchy: true, IndustryIDs: []string{"lc1"}, AutoOptIn: true,
		})
		wrongHierarchy := fx.Vendor(testutil.VendorFixture{Name: "C", HierarchyIDs: []string{"h9"}, AllLabor: true})
		wrongLabor := fx.Vendor(testutil.VendorFixture{Name: "D", AllHierarchy: true, IndustryIDs: []string{"lc9"}})
		inactive := fx.Vendor(testutil.VendorFixture{Name: "E", Status: "Inactive", AllHierarchy: true, AllLabor: true})
		group := fx.VendorGroup("preferred", hierarchyMatch, wrongLabor)

		repo := NewVendorRepo(db)
		lc := "lc1"
		var matches []model.VendorMatch
		var groups []model.VendorGroupMembers
		err := pgxutil.NewTxRunner(db).WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
			var err error
			groups, err = repo.ExpandGroupsTx(ctx, tx, fx.ProgramID, []string{group, "unknown"})
			if err != nil {
				return err
			}
			matches, err = repo.MatchActiveTx(ctx, tx, model.VendorMatchQuery{
				ProgramID:       fx.ProgramID,
				CandidateIDs:    []string{hierarchyMatch, allHierarchy, wrongHierarchy, wrongLabor, inactive},
				HierarchyIDs:    []string{"h1", "h2"},
				LaborCategoryID: &lc,
			})
			return err
		})
		require.NoError(t, err)

		require.Len(t, groups, 1)
		assert.ElementsMatch(t, []string{hierarchyMatch, wrongLabor}, groups[0].VendorIDs)

		require.Len(t, matches, 2)
		assert.Equal(t, hierarchyMatch, matches[0].VendorID)
		assert.False(t, matches[0].IsJobAutoOptIn)
		assert.Equal(t, allHierarchy, matches[1].VendorID)
		assert.True(t, matches[1].IsJobAutoOptIn)
	})
}

func TestVendorRepo_Integration_ResolveForUser(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		fx := testutil.NewFixtures(t, db)
		vendor := fx.Vendor(testutil.VendorFixture{Name: "A"})
		fx.User("vendor-user", model.UserTypeVendor, vendor, "Val", "Vendor")
		fx.User("client-user", model.UserTypeClient, "", "Cal", "Client")

		repo := NewVendorRepo(db)

		got, err := repo.ResolveForUser(ctx, fx.ProgramID, "vendor-user")
		require.NoError(t, err)
		assert.Equal(t, vendor, got)

		got, err = repo.ResolveForUser(ctx, fx.ProgramID, "client-user")
		require.NoError(t, err)
		assert.Empty(t, got)

		got, err = repo.ResolveForUser(ctx, fx.ProgramID, "nobody")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
