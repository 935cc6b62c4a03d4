package model

// NotificationCode identifies a notification event understood by the
// notification service.
type NotificationCode string

const (
	NotifyJobDistributed                  NotificationCode = "JOB_DISTRIBUTED"
	NotifyGlobalSubmissionLimitUpdated    NotificationCode = "GLOBAL_SUBMISSION_LIMIT_UPDATED"
	NotifyIndividualSubmissionLimitUpdate NotificationCode = "INDIVIDUAL_SUBMISSION_LIMIT_UPDATE"
	NotifyJobHold                         NotificationCode = "JOB_HOLD"
	NotifyJobHalt                         NotificationCode = "JOB_HALT"
	NotifyJobHoldIndividual               NotificationCode = "JOB_HOLD_INDIVIDUAL"
	NotifyJobHaltIndividual               NotificationCode = "JOB_HALT_INDIVIDUAL"
	NotifyJobReleaseFromHold              NotificationCode = "JOB_RELEASE_FROM_HOLD"
	NotifyJobReleaseFromHalt              NotificationCode = "JOB_RELEASE_FROM_HALT"
	NotifyJobReleaseFromHoldVendor        NotificationCode = "JOB_RELEASE_FROM_HOLD_VENDOR"
	NotifyJobOptIn                        NotificationCode = "JOB_OPT_IN"
	NotifyJobOptOut                       NotificationCode = "JOB_OPT_OUT"
)

// NotificationEvent is a business event handed to the dispatch adapter.
type NotificationEvent struct {
	Code      NotificationCode
	ProgramID string
	JobID     string
	Actor     Actor
	// VendorIDs is the affected vendor set. Empty means every vendor the job
	// is currently distributed to.
	VendorIDs []string
}

// NotificationPayload is the document posted to the notification service.
type NotificationPayload struct {
	EventCode  NotificationCode `json:"event_code"`
	ProgramID  string           `json:"program_id"`
	JobID      string           `json:"job_id"`
	VendorIDs  []string         `json:"vendor_ids"`
	ActorID    string           `json:"actor_id"`
	ActorType  UserType         `json:"actor_type"`
	JobDetails map[string]any   `json:"job_details"`
}

// JobNotificationDetails are the display fields included with a notification.
type JobNotificationDetails struct {
	JobID            string  `json:"job_id"             db:"id"`
	JobCode          string  `json:"job_code"           db:"job_code"`
	Title            string  `json:"title"              db:"title"`
	WorkLocationName *string `json:"work_location_name" db:"work_location_name"`
	JobManagerName   *string `json:"job_manager_name"   db:"job_manager_name"`
}
