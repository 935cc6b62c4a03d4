package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseUserType(t *testing.T) {
	tests := map[string]UserType{
		"vendor":      UserTypeVendor,
		" MSP ":       UserTypeMSP,
		"Super User":  UserTypeSuperUser,
		"super-user":  UserTypeSuperUser,
		"Client":      UserTypeClient,
		"contractor":  UserType("contractor"),
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseUserType(in), in)
	}
}

func TestActorRoles(t *testing.T) {
	var nilActor *Actor
	assert.False(t, nilActor.IsVendor())
	assert.False(t, nilActor.IsProgramManager())

	assert.True(t, (&Actor{UserType: UserTypeVendor}).IsVendor())
	assert.False(t, (&Actor{UserType: UserTypeVendor}).IsProgramManager())
	for _, ut := range []UserType{UserTypeClient, UserTypeMSP, UserTypeSuperUser} {
		assert.True(t, (&Actor{UserType: ut}).IsProgramManager(), ut)
	}
}

func TestDistributionStatusIsCaseInsensitive(t *testing.T) {
	assert.True(t, DistributionStatus("hold").Is(DistributionStatusHold))
	assert.True(t, DistributionStatus(" Scheduled ").Is(DistributionStatusScheduled))
	assert.False(t, DistributionStatusHold.Is(DistributionStatusHalted))
	assert.Equal(t, JobStatusOpen, JobStatus(" open ").Normalize())
}

func TestOptStatusValid(t *testing.T) {
	assert.True(t, OptStatusIn.Valid())
	assert.True(t, OptStatusOut.Valid())
	assert.False(t, OptStatus("opt_in").Valid())
}

func TestScheduleDetailMatches(t *testing.T) {
	group := "g-1"
	other := "g-2"
	d := &ScheduleDetail{VendorIDs: []string{"v-1"}, VendorGroupIDs: []string{group}}

	assert.True(t, d.Matches("v-1", nil))
	assert.True(t, d.Matches("v-9", &group))
	assert.False(t, d.Matches("v-9", &other))
	assert.False(t, d.Matches("v-9", nil))
}

func TestJobSnapshot(t *testing.T) {
	loc := "loc-1"
	j := &Job{ID: "j-1", Code: "J1", Title: "Welder", Status: JobStatusOpen, WorkLocationID: &loc}

	snap := j.Snapshot()
	assert.Equal(t, "j-1", snap["id"])
	assert.Equal(t, "OPEN", snap["status"])
	assert.Equal(t, "loc-1", snap["work_location_id"])
	assert.Nil(t, snap["labor_category_id"])
	assert.Equal(t, []any{}, snap["hierarchy_ids"])
}

func TestDistributionStatusCanonical(t *testing.T) {
	for in, want := range map[DistributionStatus]DistributionStatus{
		"SCHEDULED":     DistributionStatusScheduled,
		" Scheduled ":   DistributionStatusScheduled,
		"Distributed":   DistributionStatusDistributed,
		"hold":          DistributionStatusHold,
		"halted":        DistributionStatusHalted,
		"release":       DistributionStatusRelease,
	} {
		got, ok := in.Canonical()
		assert.True(t, ok, "status %q", in)
		assert.Equal(t, want, got, "status %q", in)
	}

	_, ok := DistributionStatus("paused").Canonical()
	assert.False(t, ok)
}
