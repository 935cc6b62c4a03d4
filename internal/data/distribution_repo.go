package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	// Registers the postgres dialect.
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jackc/pgx/v5"

	"github.com/target/vms-jobdist/internal/core"
	"github.com/target/vms-jobdist/internal/data/database"
	"github.com/target/vms-jobdist/internal/data/pgxutil"
	"github.com/target/vms-jobdist/internal/domain/model"
	apperrors "github.com/target/vms-jobdist/internal/errors"
)

const distributionsTable = "job_distributions"

var distributionColumns = []string{
	"id", "program_id", "job_id", "vendor_id", "vendor_group_id", "status", "submission_limit",
	"opt_status", "opt_status_date", "opt_out_reason", "notes", "distribution_date", "duration",
	"measure_unit", "distributed_by", "is_deleted", "created_by", "updated_by", "created_on", "updated_on",
}

var pg = goqu.Dialect("postgres")

func returningDistribution() []any {
	cols := make([]any, len(distributionColumns))
	for i, c := range distributionColumns {
		cols[i] = goqu.C(c)
	}
	return cols
}

// DistributionRepo persists job distributions.
type DistributionRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewDistributionRepo creates a DistributionRepo. A nil TimeProvider uses the
// system clock.
func NewDistributionRepo(db *sql.DB, tp TimeProvider) *DistributionRepo {
	return &DistributionRepo{DB: db, timeProvider: orRealTime(tp)}
}

// DeleteScheduledTx removes scheduled rows for the vendors so a new request
// can replace them.
func (r *DistributionRepo) DeleteScheduledTx(
	ctx context.Context,
	tx pgx.Tx,
	jobID string,
	vendorIDs []string,
) (int64, error) {
	if tx == nil {
		return 0, ErrTxRequired
	}
	if len(vendorIDs) == 0 {
		return 0, nil
	}
	tag, err := tx.Exec(ctx, `
		DELETE FROM job_distributions
		WHERE job_id = $1 AND vendor_id = ANY($2) AND status = $3 AND is_deleted = false`,
		jobID, vendorIDs, string(model.DistributionStatusScheduled))
	if err != nil {
		return 0, mapErr(err, "")
	}
	return tag.RowsAffected(), nil
}

// BulkInsertTx inserts rows in one statement. Rows that collide with an active
// distribution for the same job, vendor and group are skipped; only inserted
// rows are returned.
func (r *DistributionRepo) BulkInsertTx(
	ctx context.Context,
	tx pgx.Tx,
	rows []model.NewDistribution,
) ([]*model.JobDistribution, error) {
	if tx == nil {
		return nil, ErrTxRequired
	}
	if len(rows) == 0 {
		return nil, nil
	}

	now := r.timeProvider.Now()
	records := make([]any, len(rows))
	for i, d := range rows {
		records[i] = goqu.Record{
			"program_id":        d.ProgramID,
			"job_id":            d.JobID,
			"vendor_id":         d.VendorID,
			"vendor_group_id":   nullable(d.VendorGroupID),
			"status":            string(d.Status),
			"submission_limit":  nullableInt(d.SubmissionLimit),
			"opt_status":        nullableString(d.OptStatus),
			"opt_status_date":   nullableTime(d.OptStatusDate),
			"distribution_date": nullableTime(d.DistributionDate),
			"duration":          nullableInt(d.Duration),
			"measure_unit":      nullableString(d.MeasureUnit),
			"distributed_by":    d.DistributedBy,
			"created_by":        d.DistributedBy,
			"updated_by":        d.DistributedBy,
			"created_on":        now,
			"updated_on":        now,
		}
	}

	query, args, err := pg.Insert(distributionsTable).
		Rows(records...).
		OnConflict(goqu.DoNothing()).
		Returning(returningDistribution()...).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build distribution insert: %w", err)
	}

	res, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err, "")
	}
	inserted, err := pgx.CollectRows(res, pgx.RowToStructByName[model.JobDistribution])
	if err != nil {
		return nil, mapErr(err, "")
	}
	return toPtrs(inserted), nil
}

// List returns one page of live distributions and the total matching count.
func (r *DistributionRepo) List(
	ctx context.Context,
	opts model.DistributionListOptions,
) (*model.DistributionListPage, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := max(opts.Offset, 0)

	q := database.Select(distributionsTable, distributionColumns...).
		Where(
			database.Where("program_id", database.Eq, opts.ProgramID),
			database.Where("is_deleted", database.Eq, false),
		)
	database.WhereSet(q, "status", opts.Status)
	database.WhereSet(q, "job_id", opts.JobID)
	database.WhereSet(q, "submission_limit", opts.SubmissionLimit)
	database.WhereSet(q, "opt_status", opts.OptStatus)
	database.WhereSet(q, "distributed_by", opts.DistributedBy)
	database.WhereSet(q, "vendor_id", opts.VendorID)

	countSQL, countArgs := q.BuildCount()
	listSQL, listArgs := q.OrderBy("created_on", database.Desc).OrderBy("id", database.Asc).Page(limit, offset).Build()

	page := &model.DistributionListPage{Page: offset/limit + 1, Limit: limit}
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		if err := conn.QueryRow(ctx, countSQL, countArgs...).Scan(&page.Total); err != nil {
			return err
		}
		rows, err := conn.Query(ctx, listSQL, listArgs...)
		if err != nil {
			return err
		}
		items, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.JobDistribution])
		page.Items = toPtrs(items)
		return err
	})
	if err != nil {
		return nil, mapErr(err, "")
	}
	return page, nil
}

// GetByID returns a live distribution.
func (r *DistributionRepo) GetByID(ctx context.Context, programID, id string) (*model.JobDistribution, error) {
	query, args := database.Select(distributionsTable, distributionColumns...).
		Where(
			database.Where("program_id", database.Eq, programID),
			database.Where("id", database.Eq, id),
			database.Where("is_deleted", database.Eq, false),
		).
		Build()
	var out model.JobDistribution
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.JobDistribution])
		return err
	})
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("job distribution %s not found", id))
	}
	return &out, nil
}

// Update applies the non-nil fields of params to one live distribution.
func (r *DistributionRepo) Update(
	ctx context.Context,
	params core.UpdateDistributionParams,
) (*model.JobDistribution, error) {
	set := goqu.Record{
		"updated_by": params.ActorID,
		"updated_on": r.timeProvider.Now(),
	}
	if params.Status != nil {
		set["status"] = string(*params.Status)
	}
	if params.SubmissionLimit != nil {
		set["submission_limit"] = *params.SubmissionLimit
	}
	if params.OptStatus != nil {
		set["opt_status"] = string(*params.OptStatus)
	}
	if params.OptStatusDate != nil {
		set["opt_status_date"] = *params.OptStatusDate
	}
	if params.OptOutReason != nil {
		set["opt_out_reason"] = *params.OptOutReason
	}
	if params.Notes != nil {
		set["notes"] = *params.Notes
	}

	ds := pg.Update(distributionsTable).Set(set).Where(
		goqu.C("program_id").Eq(params.ProgramID),
		goqu.C("id").Eq(params.ID),
		goqu.C("is_deleted").IsFalse(),
	)
	rows, err := r.updateReturning(ctx, ds)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NotFoundf("job distribution %s not found", params.ID)
	}
	return rows[0], nil
}

// UpdateLimitByJob sets the submission limit on every live distribution of
// the job and returns the number of rows changed.
func (r *DistributionRepo) UpdateLimitByJob(ctx context.Context, params core.UpdateJobLimitParams) (int64, error) {
	query, args, err := pg.Update(distributionsTable).
		Set(goqu.Record{
			"submission_limit": nullableInt(params.SubmissionLimit),
			"updated_by":       params.ActorID,
			"updated_on":       r.timeProvider.Now(),
		}).
		Where(
			goqu.C("program_id").Eq(params.ProgramID),
			goqu.C("job_id").Eq(params.JobID),
			goqu.C("is_deleted").IsFalse(),
		).
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build limit update: %w", err)
	}
	var affected int64
	err = pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx, query, args...)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return 0, mapErr(err, "")
	}
	return affected, nil
}

// UpdateVendorOpt records a vendor's opt decision on its live distributions
// of the job and returns the most recently created one.
func (r *DistributionRepo) UpdateVendorOpt(
	ctx context.Context,
	params core.UpdateVendorOptParams,
) (*model.JobDistribution, error) {
	set := goqu.Record{
		"opt_status":      string(params.OptStatus),
		"opt_status_date": params.OptStatusDate,
		"updated_by":      params.ActorID,
		"updated_on":      r.timeProvider.Now(),
	}
	if params.OptOutReason != nil {
		set["opt_out_reason"] = *params.OptOutReason
	}
	if params.Notes != nil {
		set["notes"] = *params.Notes
	}
	ds := pg.Update(distributionsTable).Set(set).Where(
		goqu.C("program_id").Eq(params.ProgramID),
		goqu.C("job_id").Eq(params.JobID),
		goqu.C("vendor_id").Eq(params.VendorID),
		goqu.C("is_deleted").IsFalse(),
	)
	rows, err := r.updateReturning(ctx, ds)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NotFoundf("no distribution of job %s to vendor %s", params.JobID, params.VendorID)
	}
	latest := rows[0]
	for _, d := range rows[1:] {
		if d.CreatedOn.After(latest.CreatedOn) {
			latest = d
		}
	}
	return latest, nil
}

// SoftDelete flags a live distribution as deleted. It reports false when no
// live row matched.
func (r *DistributionRepo) SoftDelete(ctx context.Context, programID, id, actorID string) (bool, error) {
	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx, `
			UPDATE job_distributions SET is_deleted = true, updated_by = $3, updated_on = $4
			WHERE program_id = $1 AND id = $2 AND is_deleted = false`,
			programID, id, actorID, r.timeProvider.Now())
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return false, mapErr(err, "")
	}
	return affected > 0, nil
}

// ListScheduled returns up to limit scheduled rows ordered by (created_on, id),
// starting strictly after the cursor when one is given.
func (r *DistributionRepo) ListScheduled(
	ctx context.Context,
	after *model.ScheduledCursor,
	limit int,
) ([]*model.JobDistribution, error) {
	if limit <= 0 {
		limit = 500
	}
	q := database.Select(distributionsTable, distributionColumns...).
		Where(
			database.Where("status", database.Eq, string(model.DistributionStatusScheduled)),
			database.Where("is_deleted", database.Eq, false),
		)
	if after != nil {
		q = q.Where(database.Raw("(created_on, id) > ($1, $2)", after.CreatedOn, after.ID))
	}
	query, args := q.
		OrderBy("created_on", database.Asc).
		OrderBy("id", database.Asc).
		Page(limit, -1).
		Build()
	var out []model.JobDistribution
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.JobDistribution])
		return err
	})
	if err != nil {
		return nil, mapErr(err, "")
	}
	return toPtrs(out), nil
}

// Promote marks a scheduled row distributed at now. The opt status date is
// stamped only when an opt status is already set. It reports false when the
// row is no longer scheduled.
func (r *DistributionRepo) Promote(ctx context.Context, id string, now time.Time) (bool, error) {
	query, args, err := pg.Update(distributionsTable).
		Set(goqu.Record{
			"status":            string(model.DistributionStatusDistributed),
			"distribution_date": now,
			"opt_status_date": goqu.Case().
				When(goqu.C("opt_status").IsNotNull(), now).
				Else(goqu.C("opt_status_date")),
			"updated_on": now,
		}).
		Where(
			goqu.C("id").Eq(id),
			goqu.C("status").Eq(string(model.DistributionStatusScheduled)),
			goqu.C("is_deleted").IsFalse(),
		).
		Prepared(true).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build promote: %w", err)
	}
	var affected int64
	err = pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx, query, args...)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return false, mapErr(err, "")
	}
	return affected > 0, nil
}

func (r *DistributionRepo) updateReturning(
	ctx context.Context,
	ds *goqu.UpdateDataset,
) ([]*model.JobDistribution, error) {
	query, args, err := ds.Returning(returningDistribution()...).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build distribution update: %w", err)
	}
	var out []model.JobDistribution
	err = pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.JobDistribution])
		return err
	})
	if err != nil {
		return nil, mapErr(err, "")
	}
	return toPtrs(out), nil
}

func toPtrs[T any](in []T) []*T {
	out := make([]*T, len(in))
	for i := range in {
		out[i] = &in[i]
	}
	return out
}

// goqu renders untyped nil as NULL; typed nil pointers are unwrapped here.

func nullable(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableString[T ~string](v *T) any {
	if v == nil {
		return nil
	}
	return string(*v)
}
