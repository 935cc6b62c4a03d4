package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/target/vms-jobdist/internal/data/database"
	"github.com/target/vms-jobdist/internal/data/pgxutil"
	"github.com/target/vms-jobdist/internal/domain/model"
)

// VendorRepo resolves program vendors and vendor groups.
type VendorRepo struct {
	DB *sql.DB
}

// NewVendorRepo creates a VendorRepo.
func NewVendorRepo(db *sql.DB) *VendorRepo {
	return &VendorRepo{DB: db}
}

// ExpandGroupsTx returns the members of each requested group in the program.
// Unknown or deleted groups are omitted.
func (r *VendorRepo) ExpandGroupsTx(
	ctx context.Context,
	tx pgx.Tx,
	programID string,
	groupIDs []string,
) ([]model.VendorGroupMembers, error) {
	if tx == nil {
		return nil, ErrTxRequired
	}
	if len(groupIDs) == 0 {
		return nil, nil
	}
	query, args := database.Select("vendor_groups", "id", "vendor_ids").
		Where(
			database.Where("program_id", database.Eq, programID),
			database.Where("id", database.AnyOf, groupIDs),
			database.Where("is_deleted", database.Eq, false),
		).
		OrderBy("id", database.Asc).
		Build()
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err, "")
	}
	groups, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.VendorGroupMembers])
	if err != nil {
		return nil, fmt.Errorf("expand vendor groups: %w", err)
	}
	return groups, nil
}

// MatchActiveTx returns the candidates that are active in the program and
// whose hierarchy and labor category filters accept the job. A job without
// hierarchies or labor category does not filter on that dimension.
func (r *VendorRepo) MatchActiveTx(
	ctx context.Context,
	tx pgx.Tx,
	q model.VendorMatchQuery,
) ([]model.VendorMatch, error) {
	if tx == nil {
		return nil, ErrTxRequired
	}
	if len(q.CandidateIDs) == 0 {
		return nil, nil
	}
	hierarchies := q.HierarchyIDs
	if hierarchies == nil {
		hierarchies = []string{}
	}
	query, args := database.Select("program_vendors", "id", "vendor_name", "is_job_auto_opt_in").
		Where(
			database.Where("program_id", database.Eq, q.ProgramID),
			database.Where("id", database.AnyOf, q.CandidateIDs),
			database.Where("status", database.Eq, model.VendorStatusActive),
			database.Where("is_deleted", database.Eq, false),
			database.Raw("(is_all_hierarchy OR cardinality($1::text[]) = 0 OR hierarchy_ids && $1::text[])", hierarchies),
			database.Raw("(is_all_labor_category OR $1::text IS NULL OR $1::text = ANY(industry_ids))", q.LaborCategoryID),
		).
		OrderBy("vendor_name", database.Asc).
		Build()
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err, "")
	}
	matches, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.VendorMatch])
	if err != nil {
		return nil, fmt.Errorf("match vendors: %w", err)
	}
	return matches, nil
}

// ResolveForUser returns the vendor the user acts for in the program, or an
// empty string when the user has none.
func (r *VendorRepo) ResolveForUser(ctx context.Context, programID, userID string) (string, error) {
	var vendorID *string
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, `
			SELECT vendor_id FROM "user"
			WHERE program_id = $1 AND user_id = $2 AND is_deleted = false`,
			programID, userID).Scan(&vendorID)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", mapErr(err, "")
	}
	if vendorID == nil {
		return "", nil
	}
	return *vendorID, nil
}

// DistributedVendorIDs lists the vendors with a live distribution of the job.
func (r *VendorRepo) DistributedVendorIDs(ctx context.Context, programID, jobID string) ([]string, error) {
	var ids []string
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT DISTINCT vendor_id FROM job_distributions
			WHERE program_id = $1 AND job_id = $2 AND is_deleted = false AND status <> $3
			ORDER BY vendor_id`,
			programID, jobID, string(model.DistributionStatusScheduled))
		if err != nil {
			return err
		}
		ids, err = pgx.CollectRows(rows, pgx.RowTo[string])
		return err
	})
	if err != nil {
		return nil, mapErr(err, "")
	}
	return ids, nil
}
