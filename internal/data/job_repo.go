package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/target/vms-jobdist/internal/core"
	"github.com/target/vms-jobdist/internal/data/pgxutil"
	"github.com/target/vms-jobdist/internal/domain/model"
	apperrors "github.com/target/vms-jobdist/internal/errors"
)

// The template join is outer so a missing template is reported separately
// from a missing job.
const jobWithTemplateQuery = `
	SELECT j.id, j.program_id, j.job_code, j.title, j.status, j.hierarchy_ids, j.labor_category_id,
	       j.work_location_id, j.job_template_id, j.job_manager_id, j.is_deleted, j.created_on, j.updated_on,
	       COALESCE(t.id, '') AS template_id,
	       COALESCE(t.template_name, '') AS template_name,
	       COALESCE(t.is_manual_distribute_submit, false) AS is_manual_distribute_submit,
	       COALESCE(t.is_review_configured_or_submit, false) AS is_review_configured_or_submit,
	       t.submission_limit_vendor,
	       t.distribution_schedule_id
	FROM jobs j
	LEFT JOIN job_templates t ON t.id = j.job_template_id
	WHERE j.program_id = $1 AND j.id = $2 AND j.is_deleted = false`

// JobRepo reads jobs and writes their status.
type JobRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewJobRepo creates a JobRepo. A nil TimeProvider uses the system clock.
func NewJobRepo(db *sql.DB, tp TimeProvider) *JobRepo {
	return &JobRepo{DB: db, timeProvider: orRealTime(tp)}
}

// GetWithTemplateForUpdateTx loads the job with its template flags and locks
// the job row for the rest of the transaction.
func (r *JobRepo) GetWithTemplateForUpdateTx(
	ctx context.Context,
	tx pgx.Tx,
	programID, jobID string,
) (*model.JobWithTemplate, error) {
	if tx == nil {
		return nil, ErrTxRequired
	}
	return collectJobWithTemplate(ctx, tx, jobWithTemplateQuery+" FOR UPDATE OF j", programID, jobID)
}

// GetWithTemplate loads the job with its template flags.
func (r *JobRepo) GetWithTemplate(ctx context.Context, programID, jobID string) (*model.JobWithTemplate, error) {
	var out *model.JobWithTemplate
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		var err error
		out, err = collectJobWithTemplate(ctx, conn, jobWithTemplateQuery, programID, jobID)
		return err
	})
	return out, err
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func collectJobWithTemplate(
	ctx context.Context,
	q querier,
	query, programID, jobID string,
) (*model.JobWithTemplate, error) {
	rows, err := q.Query(ctx, query, programID, jobID)
	if err != nil {
		return nil, mapErr(err, "")
	}
	job, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.JobWithTemplate])
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("job %s not found", jobID))
	}
	if job.TemplateID == "" {
		return nil, apperrors.NotFoundf("job template for job %s not found", jobID)
	}
	return &job, nil
}

// UpdateStatusTx sets the job status on the caller's transaction.
func (r *JobRepo) UpdateStatusTx(ctx context.Context, tx pgx.Tx, params core.UpdateJobStatusParams) error {
	if tx == nil {
		return ErrTxRequired
	}
	tag, err := tx.Exec(ctx, `
		UPDATE jobs SET status = $3, updated_by = $4, updated_on = $5
		WHERE program_id = $1 AND id = $2 AND is_deleted = false`,
		params.ProgramID, params.JobID, string(params.Status), params.ActorID, r.timeProvider.Now())
	if err != nil {
		return mapErr(err, "")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFoundf("job %s not found", params.JobID)
	}
	return nil
}

// NotificationDetails loads the job fields rendered in notifications.
func (r *JobRepo) NotificationDetails(
	ctx context.Context,
	programID, jobID string,
) (*model.JobNotificationDetails, error) {
	var out model.JobNotificationDetails
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT j.id, j.job_code, j.title,
			       wl.name AS work_location_name,
			       NULLIF(concat_ws(' ', u.first_name, u.last_name), '') AS job_manager_name
			FROM jobs j
			LEFT JOIN work_locations wl ON wl.id = j.work_location_id
			LEFT JOIN "user" u ON u.user_id = j.job_manager_id AND u.program_id = j.program_id
			WHERE j.program_id = $1 AND j.id = $2`, programID, jobID)
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.JobNotificationDetails])
		return err
	})
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("job %s not found", jobID))
	}
	return &out, nil
}
