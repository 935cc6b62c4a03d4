package distribution

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/target/vms-jobdist/internal/domain/model"
)

// Target is one requested (vendor, group) release together with the
// schedule entry that requested it. VendorGroupID is nil for direct requests.
type Target struct {
	VendorID      string
	VendorGroupID *string
	Schedule      model.DistributionSchedule
}

func (t Target) key() string {
	if t.VendorGroupID == nil {
		return t.VendorID + "|"
	}
	return t.VendorID + "|" + *t.VendorGroupID
}

// ExpandTargets flattens schedule entries into targets, replacing each vendor
// group with its members. A pair requested more than once keeps its first
// schedule. Groups absent from groups contribute nothing.
func ExpandTargets(schedules []model.DistributionSchedule, groups []model.VendorGroupMembers) []Target {
	members := make(map[string][]string, len(groups))
	for _, g := range groups {
		members[g.GroupID] = g.VendorIDs
	}

	seen := map[string]struct{}{}
	var out []Target
	add := func(t Target) {
		if t.VendorID == "" {
			return
		}
		if _, dup := seen[t.key()]; dup {
			return
		}
		seen[t.key()] = struct{}{}
		out = append(out, t)
	}

	for _, sched := range schedules {
		for _, vendorID := range sched.VendorIDs {
			add(Target{VendorID: vendorID, Schedule: sched})
		}
		for _, groupID := range sched.VendorGroupIDs {
			for _, vendorID := range members[groupID] {
				add(Target{VendorID: vendorID, VendorGroupID: &groupID, Schedule: sched})
			}
		}
	}
	return out
}

// GroupIDs returns the distinct vendor group ids named by the schedules.
func GroupIDs(schedules []model.DistributionSchedule) []string {
	var out []string
	for _, sched := range schedules {
		for _, id := range sched.VendorGroupIDs {
			if id != "" && !slices.Contains(out, id) {
				out = append(out, id)
			}
		}
	}
	return out
}

// CandidateVendorIDs returns the distinct vendor ids of targets in order.
func CandidateVendorIDs(targets []Target) []string {
	out := make([]string, 0, len(targets))
	for _, t := range targets {
		if !slices.Contains(out, t.VendorID) {
			out = append(out, t.VendorID)
		}
	}
	return out
}

// InitialStatus returns the status and distribution date of a new row.
// Delayed schedules start scheduled and undated; immediate ones take the
// requested status, defaulting to distributed, and are dated now unless the
// requested status is itself scheduled.
func InitialStatus(
	sched model.DistributionSchedule,
	requested *model.DistributionStatus,
	now time.Time,
) (model.DistributionStatus, *time.Time) {
	if sched.Duration != nil && *sched.Duration > 0 {
		return model.DistributionStatusScheduled, nil
	}
	status := model.DistributionStatusDistributed
	if requested != nil && *requested != "" {
		status = *requested
	}
	if canonical, ok := status.Canonical(); ok {
		status = canonical
	}
	if status.Is(model.DistributionStatusScheduled) {
		return model.DistributionStatusScheduled, nil
	}
	return status, &now
}

// RowsParams groups the inputs of BuildRows.
type RowsParams struct {
	Job       *model.JobWithTemplate
	Targets   []Target
	Matches   []model.VendorMatch
	Requested *model.DistributionStatus
	ActorID   string
	Now       time.Time
}

// BuildRows turns targets into rows for the vendors in Matches. It also
// returns the candidate vendors that had no match.
func BuildRows(p RowsParams) ([]model.NewDistribution, []string) {
	matched := make(map[string]model.VendorMatch, len(p.Matches))
	for _, m := range p.Matches {
		matched[m.VendorID] = m
	}

	var rows []model.NewDistribution
	var ineligible []string
	for _, t := range p.Targets {
		m, ok := matched[t.VendorID]
		if !ok {
			if !slices.Contains(ineligible, t.VendorID) {
				ineligible = append(ineligible, t.VendorID)
			}
			continue
		}
		status, distributedOn := InitialStatus(t.Schedule, p.Requested, p.Now)
		row := model.NewDistribution{
			ProgramID:        p.Job.ProgramID,
			JobID:            p.Job.ID,
			VendorID:         t.VendorID,
			VendorGroupID:    t.VendorGroupID,
			Status:           status,
			SubmissionLimit:  p.Job.SubmissionLimitVendor,
			DistributionDate: distributedOn,
			Duration:         t.Schedule.Duration,
			MeasureUnit:      t.Schedule.MeasureUnit,
			DistributedBy:    p.ActorID,
		}
		if m.IsJobAutoOptIn {
			opt := model.OptStatusIn
			now := p.Now
			row.OptStatus = &opt
			row.OptStatusDate = &now
		}
		rows = append(rows, row)
	}
	return rows, ineligible
}

// ValidateSchedules checks that every schedule names at least one vendor or
// vendor group and that delayed schedules use a known unit.
func ValidateSchedules(schedules []model.DistributionSchedule) error {
	if len(schedules) == 0 {
		return errors.New("at least one schedule is required")
	}
	for i, sched := range schedules {
		if len(sched.VendorIDs) == 0 && len(sched.VendorGroupIDs) == 0 {
			return fmt.Errorf("schedule %d names no vendor or vendor group", i)
		}
		if sched.Duration == nil || *sched.Duration <= 0 {
			continue
		}
		if sched.MeasureUnit == nil {
			return fmt.Errorf("schedule %d has a duration without a measure unit", i)
		}
		if _, ok := unitDuration[*sched.MeasureUnit]; !ok {
			return fmt.Errorf("schedule %d has unknown measure unit %q", i, *sched.MeasureUnit)
		}
	}
	return nil
}
