// Package history holds the revision rules of the job audit trail.
package history

import (
	"strings"

	"github.com/target/vms-jobdist/internal/domain/diff"
	"github.com/target/vms-jobdist/internal/domain/model"
)

// IsCreationEvent reports whether the event starts a job's history. Creation
// events carry the full job snapshot.
func IsCreationEvent(eventType string) bool {
	return eventType == model.EventJobCreated
}

// NextRevision returns the revision for a new record given the highest stored
// revision, or nil when the job has no history yet. A first creation event is
// revision 0; any other first event starts at 1.
func NextRevision(previous *int, eventType string) int {
	if previous != nil {
		return *previous + 1
	}
	if IsCreationEvent(eventType) {
		return 0
	}
	return 1
}

// ResolveStatus returns the upper-cased status stored on a record: the
// override when set, else the snapshot's status, else OPEN.
func ResolveStatus(override *string, newData map[string]any) string {
	if override != nil && strings.TrimSpace(*override) != "" {
		return strings.ToUpper(strings.TrimSpace(*override))
	}
	if s, ok := newData["status"].(string); ok && strings.TrimSpace(s) != "" {
		return strings.ToUpper(strings.TrimSpace(s))
	}
	return string(model.JobStatusOpen)
}

// BuildRow resolves params into the row stored for revision rev.
func BuildRow(params model.RecordEventParams, rev int) model.NewHistoryRow {
	row := model.NewHistoryRow{
		ProgramID: params.ProgramID,
		JobID:     params.JobID,
		Revision:  rev,
		EventType: params.EventType,
		Status:    ResolveStatus(params.StatusOverride, params.NewData),
		Reason:    params.Reason,
		Note:      params.Note,
		ActorID:   params.ActorID,
	}
	if IsCreationEvent(params.EventType) {
		row.NewMetaData = params.NewData
	}
	if !diff.IsEmpty(params.CompareMetaData) {
		row.CompareMetaData = params.CompareMetaData
	}
	return row
}

// IsShow reports whether a revision carries anything worth displaying.
func IsShow(h *model.JobHistory) bool {
	return h.Revision == 0 || !diff.IsEmpty(h.CompareMetaData)
}
