package distribution

import (
	"errors"

	"github.com/target/vms-jobdist/internal/domain/model"
)

// IndividualLimitCode picks the notification for a single distribution
// update from the status that was stored. A request that asked for no status
// change only announces the limit update, and a release stored as scheduled
// announces nothing beyond it either.
func IndividualLimitCode(requested *model.DistributionStatus, stored model.DistributionStatus) model.NotificationCode {
	if requested == nil {
		return model.NotifyIndividualSubmissionLimitUpdate
	}
	switch {
	case stored.Is(model.DistributionStatusHold):
		return model.NotifyJobHoldIndividual
	case stored.Is(model.DistributionStatusRelease):
		return model.NotifyJobReleaseFromHoldVendor
	case stored.Is(model.DistributionStatusHalted):
		return model.NotifyJobHaltIndividual
	default:
		return model.NotifyIndividualSubmissionLimitUpdate
	}
}

// OptCode picks the notification for a vendor opt status change.
func OptCode(opt model.OptStatus) model.NotificationCode {
	if opt == model.OptStatusOut {
		return model.NotifyJobOptOut
	}
	return model.NotifyJobOptIn
}

// ErrNoPriorUpdate is returned when a release has no earlier "Job Updated"
// record to recover the held or halted state from.
var ErrNoPriorUpdate = errors.New("no prior job update found to release from")

// UpdateCode picks the notification for a generic distribution update.
// A release consults the previous job status recorded on the latest
// "Job Updated" history entry; previous is nil when no entry exists.
// An empty code means the update notifies nobody.
func UpdateCode(req model.UpdateDistributionRequest, previous *model.JobHistory) (model.NotificationCode, error) {
	if req.Status != nil {
		switch {
		case req.Status.Is(model.DistributionStatusHold):
			return model.NotifyJobHold, nil
		case req.Status.Is(model.DistributionStatusHalted):
			return model.NotifyJobHalt, nil
		case req.Status.Is(model.DistributionStatusRelease):
			if previous == nil {
				return "", ErrNoPriorUpdate
			}
			if model.JobStatus(previous.Status).Normalize() == model.JobStatusHalted {
				return model.NotifyJobReleaseFromHalt, nil
			}
			return model.NotifyJobReleaseFromHold, nil
		}
	}
	if req.SubmissionLimit != nil {
		return model.NotifyIndividualSubmissionLimitUpdate, nil
	}
	return "", nil
}

// vendorOnlyCodes may only be raised by vendor actors.
var vendorOnlyCodes = map[model.NotificationCode]struct{}{
	model.NotifyJobOptIn:  {},
	model.NotifyJobOptOut: {},
}

// CanNotify reports whether an actor of the given type may raise code.
// Opt in and opt out are vendor-only; every other event is restricted to
// clients, MSPs and super users.
func CanNotify(code model.NotificationCode, userType model.UserType) bool {
	actor := model.Actor{UserType: userType}
	if _, vendorOnly := vendorOnlyCodes[code]; vendorOnly {
		return actor.IsVendor()
	}
	return actor.IsProgramManager()
}
