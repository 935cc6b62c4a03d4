// Package model defines the data types shared by the job distribution
// service: jobs, distributions, history revisions and request payloads.
package model

import (
	"strings"
	"time"
)

// JobStatus is the lifecycle status of a job.
type JobStatus string

const (
	JobStatusPendingApproval         JobStatus = "PENDING_APPROVAL"
	JobStatusPendingApprovalSourcing JobStatus = "PENDING_APPROVAL_SOURCING"
	JobStatusSourcing                JobStatus = "SOURCING"
	JobStatusOpen                    JobStatus = "OPEN"
	JobStatusHold                    JobStatus = "HOLD"
	JobStatusHalted                  JobStatus = "HALTED"
	JobStatusPendingReview           JobStatus = "PENDING_REVIEW"
	JobStatusDraft                   JobStatus = "DRAFT"
	JobStatusFilled                  JobStatus = "FILLED"
	JobStatusClosed                  JobStatus = "CLOSED"
	JobStatusRejected                JobStatus = "REJECTED"
)

// Normalize returns the status upper-cased with surrounding space removed.
func (s JobStatus) Normalize() JobStatus {
	return JobStatus(strings.ToUpper(strings.TrimSpace(string(s))))
}

// Job is the aggregate the distribution engine releases to vendors. Only the
// attributes the engine reads or writes are mapped.
type Job struct {
	ID              string    `json:"id"                          db:"id"`
	ProgramID       string    `json:"program_id"                  db:"program_id"`
	Code            string    `json:"job_code"                    db:"job_code"`
	Title           string    `json:"title"                       db:"title"`
	Status          JobStatus `json:"status"                      db:"status"`
	HierarchyIDs    []string  `json:"hierarchy_ids"               db:"hierarchy_ids"`
	LaborCategoryID *string   `json:"labor_category_id,omitempty" db:"labor_category_id"`
	WorkLocationID  *string   `json:"work_location_id,omitempty"  db:"work_location_id"`
	JobTemplateID   *string   `json:"job_template_id,omitempty"   db:"job_template_id"`
	JobManagerID    *string   `json:"job_manager_id,omitempty"    db:"job_manager_id"`
	IsDeleted       bool      `json:"is_deleted"                  db:"is_deleted"`
	CreatedOn       time.Time `json:"created_on"                  db:"created_on"`
	UpdatedOn       time.Time `json:"updated_on"                  db:"updated_on"`
}

// JobTemplateFlags are the template settings consulted when a job is distributed.
type JobTemplateFlags struct {
	TemplateID                 string  `json:"template_id"                    db:"template_id"`
	TemplateName               string  `json:"template_name"                  db:"template_name"`
	IsManualDistributeSubmit   bool    `json:"is_manual_distribute_submit"    db:"is_manual_distribute_submit"`
	IsReviewConfiguredOrSubmit bool    `json:"is_review_configured_or_submit" db:"is_review_configured_or_submit"`
	SubmissionLimitVendor      *int    `json:"submission_limit_vendor"        db:"submission_limit_vendor"`
	DistributionScheduleID     *string `json:"distribution_schedule_id"       db:"distribution_schedule_id"`
}

// JobWithTemplate is a job loaded together with its template's distribution
// flags in one round trip.
type JobWithTemplate struct {
	Job
	JobTemplateFlags
}

// Snapshot renders the job as the loosely typed document stored in history
// records and compared by the diff engine.
func (j *Job) Snapshot() map[string]any {
	out := map[string]any{
		"id":            j.ID,
		"job_code":      j.Code,
		"title":         j.Title,
		"status":        string(j.Status),
		"hierarchy_ids": stringsToAny(j.HierarchyIDs),
	}
	setOptional(out, "labor_category_id", j.LaborCategoryID)
	setOptional(out, "work_location_id", j.WorkLocationID)
	setOptional(out, "job_template_id", j.JobTemplateID)
	setOptional(out, "job_manager_id", j.JobManagerID)
	return out
}

func setOptional(m map[string]any, key string, v *string) {
	if v == nil {
		m[key] = nil
		return
	}
	m[key] = *v
}

func stringsToAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
