// Package distribution holds the pure business rules of job distribution:
// which job states may be distributed, when a scheduled release is due and
// which notification a change produces.
package distribution

import (
	"errors"
	"fmt"
	"time"

	"github.com/target/vms-jobdist/internal/domain/model"
)

// BlockedError reports that a job's status does not permit distribution.
type BlockedError struct {
	Status model.JobStatus
	Reason string
}

func (e *BlockedError) Error() string { return e.Reason }

// blockedReasons lists statuses that never accept a new distribution.
var blockedReasons = map[model.JobStatus]string{
	model.JobStatusHold:          "Job distribution is not allowed for jobs on hold",
	model.JobStatusPendingReview: "Job distribution is not allowed for jobs pending review",
	model.JobStatusDraft:         "Job distribution is not allowed for draft jobs",
	model.JobStatusFilled:        "Job distribution is not allowed for filled jobs",
	model.JobStatusClosed:        "Job distribution is not allowed for closed jobs",
	model.JobStatusRejected:      "Job distribution is not allowed for rejected jobs",
}

// CheckDistributable validates the job's status and returns the status the
// job moves to once distributed. Jobs pending approval may only be
// distributed when the template allows both manual distribution and review
// submission; they then move to PENDING_APPROVAL_SOURCING. All other
// permitted jobs move to SOURCING.
func CheckDistributable(job *model.JobWithTemplate) (model.JobStatus, error) {
	status := job.Status.Normalize()
	if reason, blocked := blockedReasons[status]; blocked {
		return "", &BlockedError{Status: status, Reason: reason}
	}

	switch status {
	case model.JobStatusPendingApproval, model.JobStatusPendingApprovalSourcing:
		if !job.IsManualDistributeSubmit || !job.IsReviewConfiguredOrSubmit {
			return "", &BlockedError{
				Status: status,
				Reason: "Job distribution is not allowed for jobs pending approval",
			}
		}
		return model.JobStatusPendingApprovalSourcing, nil
	default:
		return model.JobStatusSourcing, nil
	}
}

// unitDuration maps a measure unit to its length. Unknown units are absent.
var unitDuration = map[model.MeasureUnit]time.Duration{
	model.MeasureUnitHours: time.Hour,
	model.MeasureUnitDays:  24 * time.Hour,
	model.MeasureUnitWeeks: 7 * 24 * time.Hour,
}

// ShouldDistributeByTime reports whether at least duration units have
// elapsed since createdOn. Unrecognized units never satisfy the check.
func ShouldDistributeByTime(createdOn, now time.Time, duration int, unit model.MeasureUnit) bool {
	d, ok := unitDuration[unit]
	if !ok {
		return false
	}
	return now.Sub(createdOn) >= time.Duration(duration)*d
}

// ConditionFieldSubmissions is the only condition field understood by the sweep.
const ConditionFieldSubmissions = "submissions"

// NeedsSubmissionCount reports whether evaluating cond requires the job's
// current submission count.
func NeedsSubmissionCount(cond *model.DistributionCondition) bool {
	return cond != nil && cond.Field == ConditionFieldSubmissions
}

// ShouldDistributeByCondition evaluates a schedule condition. A missing
// condition is always satisfied; unknown fields and operators never are.
func ShouldDistributeByCondition(cond *model.DistributionCondition, submissions int) bool {
	if cond == nil {
		return true
	}
	if cond.Field != ConditionFieldSubmissions {
		return false
	}
	n := float64(submissions)
	switch cond.Operator {
	case ">":
		return n > cond.Value
	case "<":
		return n < cond.Value
	case "=":
		return n == cond.Value
	default:
		return false
	}
}

// LimitMode selects which submission-limit update applies.
type LimitMode int

const (
	// LimitModeGlobal updates every distribution of a job.
	LimitModeGlobal LimitMode = iota + 1
	// LimitModeIndividual updates one distribution.
	LimitModeIndividual
	// LimitModeVendorOpt records a vendor's opt in or opt out.
	LimitModeVendorOpt
)

func (m LimitMode) String() string {
	switch m {
	case LimitModeGlobal:
		return "global"
	case LimitModeIndividual:
		return "individual"
	case LimitModeVendorOpt:
		return "vendor_opt"
	default:
		return fmt.Sprintf("LimitMode(%d)", int(m))
	}
}

// ErrLimitModeUnknown is returned when the query identifies no update mode.
var ErrLimitModeUnknown = errors.New(
	"submission limit update requires job_id, distribution_id with vendor_id, or job_id with vendor_id")

// SelectLimitMode picks the update mode from the identifiers present.
func SelectLimitMode(q model.SubmissionLimitQuery) (LimitMode, error) {
	switch {
	case q.DistributionID != "" && q.VendorID != "":
		return LimitModeIndividual, nil
	case q.JobID != "" && q.VendorID != "":
		return LimitModeVendorOpt, nil
	case q.JobID != "" && q.DistributionID == "":
		return LimitModeGlobal, nil
	default:
		return 0, ErrLimitModeUnknown
	}
}

// ResolveIndividualStatus returns the status to store for a single
// distribution. A distribution cannot be live without a distribution date,
// so DISTRIBUTED or RELEASE on an undated row is stored as scheduled.
func ResolveIndividualStatus(
	requested *model.DistributionStatus,
	current model.DistributionStatus,
	distributionDate *time.Time,
) model.DistributionStatus {
	status := current
	if requested != nil {
		status = *requested
	}
	if canonical, ok := status.Canonical(); ok {
		status = canonical
	}
	if distributionDate == nil &&
		(status.Is(model.DistributionStatusDistributed) || status.Is(model.DistributionStatusRelease)) {
		return model.DistributionStatusScheduled
	}
	return status
}
