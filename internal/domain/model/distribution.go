package model

import (
	"strings"
	"time"
)

// DistributionStatus is the state of one job distribution row. Stored values
// mix lower-case scheduling states and upper-case vendor control states.
type DistributionStatus string

const (
	DistributionStatusScheduled   DistributionStatus = "scheduled"
	DistributionStatusDistributed DistributionStatus = "distributed"
	DistributionStatusHold        DistributionStatus = "HOLD"
	DistributionStatusHalted      DistributionStatus = "HALTED"
	DistributionStatusRelease     DistributionStatus = "RELEASE"
)

// Normalized returns the status upper-cased for comparisons.
func (s DistributionStatus) Normalized() string {
	return strings.ToUpper(strings.TrimSpace(string(s)))
}

// Canonical returns the stored spelling of s, matched ignoring case and
// surrounding space. ok is false for an unknown status.
func (s DistributionStatus) Canonical() (status DistributionStatus, ok bool) {
	for _, known := range []DistributionStatus{
		DistributionStatusScheduled,
		DistributionStatusDistributed,
		DistributionStatusHold,
		DistributionStatusHalted,
		DistributionStatusRelease,
	} {
		if s.Is(known) {
			return known, true
		}
	}
	return s, false
}

// Is reports whether s equals other ignoring case.
func (s DistributionStatus) Is(other DistributionStatus) bool {
	return s.Normalized() == other.Normalized()
}

// OptStatus records whether a vendor opted in to or out of a distributed job.
type OptStatus string

const (
	OptStatusIn  OptStatus = "OPT_IN"
	OptStatusOut OptStatus = "OPT_OUT"
)

// Valid reports whether the opt status is one of the known values.
func (o OptStatus) Valid() bool {
	return o == OptStatusIn || o == OptStatusOut
}

// MeasureUnit is the unit a schedule duration is expressed in.
type MeasureUnit string

const (
	MeasureUnitHours MeasureUnit = "hours"
	MeasureUnitDays  MeasureUnit = "days"
	MeasureUnitWeeks MeasureUnit = "weeks"
)

// JobDistribution is one (job, vendor) or (job, vendor group member) release.
type JobDistribution struct {
	ID               string             `json:"id"                        db:"id"`
	ProgramID        string             `json:"program_id"                db:"program_id"`
	JobID            string             `json:"job_id"                    db:"job_id"`
	VendorID         string             `json:"vendor_id"                 db:"vendor_id"`
	VendorGroupID    *string            `json:"vendor_group_id"           db:"vendor_group_id"`
	Status           DistributionStatus `json:"status"                    db:"status"`
	SubmissionLimit  *int               `json:"submission_limit"          db:"submission_limit"`
	OptStatus        *OptStatus         `json:"opt_status"                db:"opt_status"`
	OptStatusDate    *time.Time         `json:"opt_status_date"           db:"opt_status_date"`
	OptOutReason     *string            `json:"opt_out_reason,omitempty"  db:"opt_out_reason"`
	Notes            *string            `json:"notes,omitempty"           db:"notes"`
	DistributionDate *time.Time         `json:"distribution_date"         db:"distribution_date"`
	Duration         *int               `json:"duration"                  db:"duration"`
	MeasureUnit      *MeasureUnit       `json:"measure_unit"              db:"measure_unit"`
	DistributedBy    *string            `json:"distributed_by"            db:"distributed_by"`
	IsDeleted        bool               `json:"is_deleted"                db:"is_deleted"`
	CreatedBy        *string            `json:"created_by,omitempty"      db:"created_by"`
	UpdatedBy        *string            `json:"updated_by,omitempty"      db:"updated_by"`
	CreatedOn        time.Time          `json:"created_on"                db:"created_on"`
	UpdatedOn        time.Time          `json:"updated_on"                db:"updated_on"`
}

// DistributionSchedule is one entry of a create request: a set of vendors or
// vendor groups released together after an optional delay.
type DistributionSchedule struct {
	VendorIDs      []string     `json:"vendor_id"`
	VendorGroupIDs []string     `json:"vendor_group_id"`
	Duration       *int         `json:"duration"`
	MeasureUnit    *MeasureUnit `json:"measure_unit"`
}

// CreateDistributionRequest is the body of POST /program/{id}/job-distribution.
type CreateDistributionRequest struct {
	JobID            string                 `json:"job_id"`
	DistributeMethod string                 `json:"distribute_method"`
	Status           *DistributionStatus    `json:"status"`
	Schedules        []DistributionSchedule `json:"schedules"`
}

// NewDistribution is a fully resolved row ready for insertion.
type NewDistribution struct {
	ProgramID        string
	JobID            string
	VendorID         string
	VendorGroupID    *string
	Status           DistributionStatus
	SubmissionLimit  *int
	OptStatus        *OptStatus
	OptStatusDate    *time.Time
	DistributionDate *time.Time
	Duration         *int
	MeasureUnit      *MeasureUnit
	DistributedBy    string
}

// UpdateDistributionRequest is a partial update of one distribution row.
// Nil fields are left unchanged.
type UpdateDistributionRequest struct {
	Status          *DistributionStatus `json:"status"`
	SubmissionLimit *int                `json:"submission_limit"`
	OptStatus       *OptStatus          `json:"opt_status"`
	OptOutReason    *string             `json:"opt_out_reason"`
	Notes           *string             `json:"notes"`
}

// IsEmpty reports whether the request changes nothing.
func (r UpdateDistributionRequest) IsEmpty() bool {
	return r.Status == nil && r.SubmissionLimit == nil && r.OptStatus == nil &&
		r.OptOutReason == nil && r.Notes == nil
}

// SubmissionLimitQuery holds the identifying query parameters of
// PUT /program/{id}/submission-limit.
type SubmissionLimitQuery struct {
	DistributionID string
	JobID          string
	VendorID       string
}

// SubmissionLimitRequest is the body of PUT /program/{id}/submission-limit.
type SubmissionLimitRequest struct {
	SubmissionLimit *int                `json:"submission_limit"`
	Status          *DistributionStatus `json:"status"`
	OptStatus       *OptStatus          `json:"opt_status"`
	OptOutReason    *string             `json:"opt_out_reason"`
	Notes           *string             `json:"notes"`
}

// DistributionListOptions filters GET /program/{id}/job-distribution.
// Unset filters contribute no predicate.
type DistributionListOptions struct {
	ProgramID       string
	Status          *string
	JobID           *string
	SubmissionLimit *int
	OptStatus       *string
	DistributedBy   *string
	VendorID        *string
	Limit           int
	Offset          int
}

// DistributionListPage is one page of distributions plus the unpaged total.
type DistributionListPage struct {
	Items []*JobDistribution `json:"items"`
	Total int                `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// ScheduledDistribution is a scheduled row joined with what the sweep needs
// to evaluate it.
type ScheduledDistribution struct {
	JobDistribution
	ScheduleID *string `db:"distribution_schedule_id"`
}

// CreateDistributionResult reports the outcome of a distribution request.
type CreateDistributionResult struct {
	JobID         string             `json:"job_id"`
	JobStatus     JobStatus          `json:"job_status"`
	Distributions []*JobDistribution `json:"distributions"`
	// Ineligible lists requested vendors that are inactive or whose filters
	// reject the job.
	Ineligible []string `json:"ineligible_vendor_ids"`
}

// SubmissionLimitResult reports the outcome of a submission-limit update.
type SubmissionLimitResult struct {
	Mode         string           `json:"mode"`
	Updated      int64            `json:"updated"`
	Distribution *JobDistribution `json:"distribution,omitempty"`
}

// ScheduledCursor is the keyset position of the last scheduled row a sweep
// has read.
type ScheduledCursor struct {
	CreatedOn time.Time
	ID        string
}

// CursorAfter returns the position just past d.
func CursorAfter(d *JobDistribution) *ScheduledCursor {
	return &ScheduledCursor{CreatedOn: d.CreatedOn, ID: d.ID}
}
