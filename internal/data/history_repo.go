package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/target/vms-jobdist/internal/data/database"
	"github.com/target/vms-jobdist/internal/data/pgxutil"
	"github.com/target/vms-jobdist/internal/domain/model"
)

const historyTable = "job_history"

var historyColumns = []string{
	"id", "program_id", "job_id", "revision", "event_type", "status", "new_meta_data", "compare_meta_data",
	"reason", "note", "created_by", "updated_by", "created_on", "updated_on",
}

// HistoryRepo stores job history revisions. Rows are never updated.
type HistoryRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewHistoryRepo creates a HistoryRepo. A nil TimeProvider uses the system clock.
func NewHistoryRepo(db *sql.DB, tp TimeProvider) *HistoryRepo {
	return &HistoryRepo{DB: db, timeProvider: orRealTime(tp)}
}

// LockJobTx takes a transaction-scoped advisory lock on the job's history.
func (r *HistoryRepo) LockJobTx(ctx context.Context, tx pgx.Tx, programID, jobID string) error {
	if tx == nil {
		return ErrTxRequired
	}
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`,
		"job_history:"+programID+":"+jobID); err != nil {
		return mapErr(err, "")
	}
	return nil
}

// MaxRevisionTx returns the highest stored revision or nil.
func (r *HistoryRepo) MaxRevisionTx(ctx context.Context, tx pgx.Tx, programID, jobID string) (*int, error) {
	if tx == nil {
		return nil, ErrTxRequired
	}
	var rev *int
	if err := tx.QueryRow(ctx,
		`SELECT MAX(revision) FROM job_history WHERE program_id = $1 AND job_id = $2`,
		programID, jobID).Scan(&rev); err != nil {
		return nil, mapErr(err, "")
	}
	return rev, nil
}

// InsertTx appends a revision.
func (r *HistoryRepo) InsertTx(ctx context.Context, tx pgx.Tx, row model.NewHistoryRow) (*model.JobHistory, error) {
	if tx == nil {
		return nil, ErrTxRequired
	}
	now := r.timeProvider.Now()
	rows, err := tx.Query(ctx, `
		INSERT INTO job_history (
			program_id, job_id, revision, event_type, status, new_meta_data, compare_meta_data,
			reason, note, created_by, updated_by, created_on, updated_on
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10, $11, $11)
		RETURNING `+columnList(historyColumns),
		row.ProgramID, row.JobID, row.Revision, row.EventType, row.Status,
		jsonArg(row.NewMetaData), jsonArg(row.CompareMetaData),
		row.Reason, row.Note, row.ActorID, now)
	if err != nil {
		return nil, mapErr(err, "")
	}
	out, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.JobHistory])
	if err != nil {
		return nil, mapErr(err, "")
	}
	return &out, nil
}

// List returns revisions in ascending order.
func (r *HistoryRepo) List(ctx context.Context, opts model.HistoryListOptions) ([]*model.JobHistory, error) {
	q := database.Select(historyTable, historyColumns...).Where(
		database.Where("program_id", database.Eq, opts.ProgramID),
		database.Where("job_id", database.Eq, opts.JobID),
	)
	database.WhereSet(q, "event_type", opts.EventType)
	limit := opts.Limit
	if limit <= 0 {
		limit = -1
	}
	query, args := q.OrderBy("revision", database.Asc).Page(limit, max(opts.Offset, 0)).Build()
	return r.collect(ctx, query, args)
}

// GetRevision returns one revision.
func (r *HistoryRepo) GetRevision(
	ctx context.Context,
	programID, jobID string,
	revision int,
) (*model.JobHistory, error) {
	query, args := database.Select(historyTable, historyColumns...).Where(
		database.Where("program_id", database.Eq, programID),
		database.Where("job_id", database.Eq, jobID),
		database.Where("revision", database.Eq, revision),
	).Build()
	var out model.JobHistory
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.JobHistory])
		return err
	})
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("revision %d of job %s not found", revision, jobID))
	}
	return &out, nil
}

// LatestByEventType returns the most recently updated record of the event
// type, or nil when none exists.
func (r *HistoryRepo) LatestByEventType(
	ctx context.Context,
	programID, jobID, eventType string,
) (*model.JobHistory, error) {
	query, args := database.Select(historyTable, historyColumns...).Where(
		database.Where("program_id", database.Eq, programID),
		database.Where("job_id", database.Eq, jobID),
		database.Where("event_type", database.Eq, eventType),
	).OrderBy("updated_on", database.Desc).OrderBy("revision", database.Desc).Page(1, -1).Build()
	rows, err := r.collect(ctx, query, args)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *HistoryRepo) collect(ctx context.Context, query string, args []any) ([]*model.JobHistory, error) {
	var out []model.JobHistory
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.JobHistory])
		return err
	})
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, mapErr(err, "")
	}
	return toPtrs(out), nil
}

// jsonArg sends empty documents as SQL NULL.
func jsonArg(m map[string]any) any {
	if len(m) == 0 {
		return nil
	}
	return m
}

func columnList(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}
