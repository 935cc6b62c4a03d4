package model

import "time"

// History event types written by the service.
const (
	EventJobCreated             = "Job Created"
	EventJobUpdated             = "Job Updated"
	EventJobDistributed         = "Job Distributed"
	EventDistributionUpdated    = "Job Distribution Updated"
	EventSubmissionLimitUpdated = "Submission Limit Updated"
	EventVendorOptStatusUpdated = "Vendor Opt Status Updated"
)

// JobHistory is one immutable revision of a job's audit trail.
type JobHistory struct {
	ID              string         `json:"id"                          db:"id"`
	ProgramID       string         `json:"program_id"                  db:"program_id"`
	JobID           string         `json:"job_id"                      db:"job_id"`
	Revision        int            `json:"revision"                    db:"revision"`
	EventType       string         `json:"event_type"                  db:"event_type"`
	Status          string         `json:"status"                      db:"status"`
	NewMetaData     map[string]any `json:"new_meta_data,omitempty"     db:"new_meta_data"`
	CompareMetaData map[string]any `json:"compare_meta_data,omitempty" db:"compare_meta_data"`
	Reason          *string        `json:"reason,omitempty"            db:"reason"`
	Note            *string        `json:"note,omitempty"              db:"note"`
	CreatedBy       *string        `json:"created_by,omitempty"        db:"created_by"`
	UpdatedBy       *string        `json:"updated_by,omitempty"        db:"updated_by"`
	CreatedOn       time.Time      `json:"created_on"                  db:"created_on"`
	UpdatedOn       time.Time      `json:"updated_on"                  db:"updated_on"`
}

// RecordEventParams describes one history write.
type RecordEventParams struct {
	ProgramID string
	JobID     string
	// NewData is the job snapshot after the change.
	NewData   map[string]any
	ActorID   string
	EventType string
	// CompareMetaData is the structured diff tree; empty trees are not stored.
	CompareMetaData map[string]any
	// StatusOverride wins over NewData["status"] when set.
	StatusOverride *string
	Reason         *string
	Note           *string
}

// NewHistoryRow is a fully resolved history row ready for insertion.
type NewHistoryRow struct {
	ProgramID       string
	JobID           string
	Revision        int
	EventType       string
	Status          string
	NewMetaData     map[string]any
	CompareMetaData map[string]any
	Reason          *string
	Note            *string
	ActorID         string
}

// CreateHistoryRequest is the body of POST /program/{id}/job-history. When
// OldData is supplied the diff is computed from OldData and NewData;
// otherwise CompareMetaData is stored as given.
type CreateHistoryRequest struct {
	JobID           string         `json:"job_id"`
	EventType       string         `json:"event_type"`
	NewData         map[string]any `json:"new_data"`
	OldData         map[string]any `json:"old_data"`
	CompareMetaData map[string]any `json:"compare_meta_data"`
	Status          *string        `json:"status"`
	Reason          *string        `json:"reason"`
	Note            *string        `json:"note"`
}

// HistoryListOptions scopes a revision listing.
type HistoryListOptions struct {
	ProgramID string
	JobID     string
	EventType *string
	Limit     int
	Offset    int
}

// UserRef is the display form of an actor on a history record.
type UserRef struct {
	ID         string  `json:"id"          db:"user_id"`
	FirstName  *string `json:"first_name"  db:"first_name"`
	MiddleName *string `json:"middle_name" db:"middle_name"`
	LastName   *string `json:"last_name"   db:"last_name"`
}

// HistorySummary is one entry of a revision listing.
type HistorySummary struct {
	ID        string    `json:"id"`
	Revision  int       `json:"revision"`
	EventType string    `json:"event_type"`
	Status    string    `json:"status"`
	Reason    *string   `json:"reason,omitempty"`
	Note      *string   `json:"note,omitempty"`
	CreatedBy *UserRef  `json:"created_by"`
	UpdatedBy *UserRef  `json:"updated_by"`
	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
	// IsShow is false for revisions that carry no visible change.
	IsShow bool `json:"is_show"`
}

// HistoryRevision is a single revision with reference ids resolved to
// display values.
type HistoryRevision struct {
	HistorySummary
	NewMetaData     map[string]any `json:"new_meta_data"`
	CompareMetaData map[string]any `json:"compare_meta_data"`
}
