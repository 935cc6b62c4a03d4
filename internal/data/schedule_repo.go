package data

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5"

	"github.com/target/vms-jobdist/internal/data/database"
	"github.com/target/vms-jobdist/internal/data/pgxutil"
	"github.com/target/vms-jobdist/internal/domain/model"
)

// ScheduleRepo reads template distribution schedules.
type ScheduleRepo struct {
	DB *sql.DB
}

// NewScheduleRepo creates a ScheduleRepo.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo {
	return &ScheduleRepo{DB: db}
}

// DetailsForSchedule returns the detail rows of a schedule.
func (r *ScheduleRepo) DetailsForSchedule(ctx context.Context, scheduleID string) ([]model.ScheduleDetail, error) {
	query, args := database.Select("distribution_schedule_details",
		"id", "distribution_schedule_id", "vendor_ids", "vendor_group_ids", "duration", "measure_unit", "condition").
		Where(database.Where("distribution_schedule_id", database.Eq, scheduleID)).
		OrderBy("id", database.Asc).
		Build()
	var out []model.ScheduleDetail
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.ScheduleDetail])
		return err
	})
	if err != nil {
		return nil, mapErr(err, "")
	}
	return out, nil
}

// CountSubmissions counts live submissions for the job.
func (r *ScheduleRepo) CountSubmissions(ctx context.Context, jobID string) (int, error) {
	query, args := database.Select("submissions").
		Where(
			database.Where("job_id", database.Eq, jobID),
			database.Where("is_deleted", database.Eq, false),
		).
		BuildCount()
	var n int
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, query, args...).Scan(&n)
	})
	if err != nil {
		return 0, mapErr(err, "")
	}
	return n, nil
}
