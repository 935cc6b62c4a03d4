// Package core defines the ports between the distribution services and their
// adapters, plus the small services that sit directly on those ports.
package core

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/target/vms-jobdist/internal/domain/model"
)

// Repository interfaces are implemented by internal/data. Methods suffixed
// Tx run on the caller's transaction.

// TxRunner runs fn inside one database transaction. The transaction commits
// when fn returns nil and rolls back otherwise.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
}

// UpdateJobStatusParams groups parameters for JobRepository.UpdateStatusTx.
type UpdateJobStatusParams struct {
	ProgramID string
	JobID     string
	Status    model.JobStatus
	ActorID   string
}

// JobRepository reads jobs and moves their status.
type JobRepository interface {
	// GetWithTemplateForUpdateTx loads a job and its template flags and locks
	// the job row until the transaction ends.
	GetWithTemplateForUpdateTx(ctx context.Context, tx pgx.Tx, programID, jobID string) (*model.JobWithTemplate, error)
	GetWithTemplate(ctx context.Context, programID, jobID string) (*model.JobWithTemplate, error)
	UpdateStatusTx(ctx context.Context, tx pgx.Tx, params UpdateJobStatusParams) error
	NotificationDetails(ctx context.Context, programID, jobID string) (*model.JobNotificationDetails, error)
}

// VendorRepository resolves the vendors a job can be distributed to.
type VendorRepository interface {
	ExpandGroupsTx(ctx context.Context, tx pgx.Tx, programID string, groupIDs []string) ([]model.VendorGroupMembers, error)
	MatchActiveTx(ctx context.Context, tx pgx.Tx, q model.VendorMatchQuery) ([]model.VendorMatch, error)
	// ResolveForUser returns the program vendor the user belongs to, or an
	// empty string when the user is not a vendor user of the program.
	ResolveForUser(ctx context.Context, programID, userID string) (string, error)
	DistributedVendorIDs(ctx context.Context, programID, jobID string) ([]string, error)
}

// UpdateDistributionParams groups parameters for DistributionRepository.Update.
// Nil fields are left unchanged.
type UpdateDistributionParams struct {
	ProgramID       string
	ID              string
	Status          *model.DistributionStatus
	SubmissionLimit *int
	OptStatus       *model.OptStatus
	OptStatusDate   *time.Time
	OptOutReason    *string
	Notes           *string
	ActorID         string
}

// UpdateVendorOptParams groups parameters for DistributionRepository.UpdateVendorOpt.
type UpdateVendorOptParams struct {
	ProgramID     string
	JobID         string
	VendorID      string
	OptStatus     model.OptStatus
	OptStatusDate time.Time
	OptOutReason  *string
	Notes         *string
	ActorID       string
}

// UpdateJobLimitParams groups parameters for DistributionRepository.UpdateLimitByJob.
type UpdateJobLimitParams struct {
	ProgramID       string
	JobID           string
	SubmissionLimit *int
	ActorID         string
}

// DistributionRepository persists job distributions.
type DistributionRepository interface {
	// DeleteScheduledTx removes scheduled rows for the job and vendors so they
	// can be replaced.
	DeleteScheduledTx(ctx context.Context, tx pgx.Tx, jobID string, vendorIDs []string) (int64, error)
	// BulkInsertTx inserts rows, skipping pairs that already have an active row.
	BulkInsertTx(ctx context.Context, tx pgx.Tx, rows []model.NewDistribution) ([]*model.JobDistribution, error)
	List(ctx context.Context, opts model.DistributionListOptions) (*model.DistributionListPage, error)
	GetByID(ctx context.Context, programID, id string) (*model.JobDistribution, error)
	Update(ctx context.Context, params UpdateDistributionParams) (*model.JobDistribution, error)
	UpdateLimitByJob(ctx context.Context, params UpdateJobLimitParams) (int64, error)
	UpdateVendorOpt(ctx context.Context, params UpdateVendorOptParams) (*model.JobDistribution, error)
	SoftDelete(ctx context.Context, programID, id, actorID string) (bool, error)
	ListScheduled(ctx context.Context, after *model.ScheduledCursor, limit int) ([]*model.JobDistribution, error)
	// Promote moves a scheduled row to distributed. It reports false when the
	// row is no longer scheduled.
	Promote(ctx context.Context, id string, now time.Time) (bool, error)
}

// HistoryRepository persists job history revisions.
type HistoryRepository interface {
	// LockJobTx serializes history writes for one job until the transaction ends.
	LockJobTx(ctx context.Context, tx pgx.Tx, programID, jobID string) error
	// MaxRevisionTx returns the highest revision, or nil when the job has none.
	MaxRevisionTx(ctx context.Context, tx pgx.Tx, programID, jobID string) (*int, error)
	InsertTx(ctx context.Context, tx pgx.Tx, row model.NewHistoryRow) (*model.JobHistory, error)
	List(ctx context.Context, opts model.HistoryListOptions) ([]*model.JobHistory, error)
	GetRevision(ctx context.Context, programID, jobID string, revision int) (*model.JobHistory, error)
	// LatestByEventType returns the most recently updated record of the event
	// type, or nil when none exists.
	LatestByEventType(ctx context.Context, programID, jobID, eventType string) (*model.JobHistory, error)
}

// UserDirectory resolves actors for display and access checks.
type UserDirectory interface {
	// UsersByIDs resolves users of the program, plus super users of any program.
	UsersByIDs(ctx context.Context, programID string, ids []string) (map[string]model.UserRef, error)
	UserType(ctx context.Context, userID string) (model.UserType, error)
}

// ScheduleRepository reads template schedules for the distribution sweep.
type ScheduleRepository interface {
	DetailsForSchedule(ctx context.Context, scheduleID string) ([]model.ScheduleDetail, error)
	CountSubmissions(ctx context.Context, jobID string) (int, error)
}

// LookupSpec names a reference table and the columns rendered for a match.
type LookupSpec struct {
	Table         string
	MatchColumn   string
	DisplayFields []string
}

// LookupRepository fetches reference rows for populating history views.
type LookupRepository interface {
	// Lookup returns display rows keyed by the match column value.
	Lookup(ctx context.Context, spec LookupSpec, values []string) (map[string]map[string]any, error)
}

// NotificationClient posts events to the notification service.
type NotificationClient interface {
	Send(ctx context.Context, payload model.NotificationPayload) error
}

// BackgroundQueue runs best-effort tasks outside the request. Submit never
// blocks; it reports false when the task was dropped.
type BackgroundQueue interface {
	Submit(name string, task func(ctx context.Context) error) bool
}

// TokenVerifier decodes a raw bearer token into an actor.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*model.Actor, error)
}

// HistoryWriter records job history revisions. Implemented by
// service.HistoryService.
type HistoryWriter interface {
	RecordEventTx(ctx context.Context, tx pgx.Tx, params model.RecordEventParams) (*model.JobHistory, error)
	RecordEvent(ctx context.Context, params model.RecordEventParams) (*model.JobHistory, error)
}

// EventNotifier hands business events to the notification dispatch adapter.
// Notify never blocks on delivery and never reports delivery failures.
type EventNotifier interface {
	Notify(ctx context.Context, event model.NotificationEvent)
}
