package model

// DistributionCondition gates a scheduled release on current job state.
type DistributionCondition struct {
	Field    string  `json:"field"`
	Operator string  `json:"operator"`
	Value    float64 `json:"value"`
}

// ScheduleDetail is one row of a template's distribution schedule. It
// applies to the listed vendors or vendor groups.
type ScheduleDetail struct {
	ID             string                 `db:"id"`
	ScheduleID     string                 `db:"distribution_schedule_id"`
	VendorIDs      []string               `db:"vendor_ids"`
	VendorGroupIDs []string               `db:"vendor_group_ids"`
	Duration       int                    `db:"duration"`
	MeasureUnit    MeasureUnit            `db:"measure_unit"`
	Condition      *DistributionCondition `db:"condition"`
}

// Matches reports whether the detail covers the given vendor or group.
func (d *ScheduleDetail) Matches(vendorID string, vendorGroupID *string) bool {
	for _, id := range d.VendorIDs {
		if id == vendorID {
			return true
		}
	}
	if vendorGroupID == nil {
		return false
	}
	for _, id := range d.VendorGroupIDs {
		if id == *vendorGroupID {
			return true
		}
	}
	return false
}

// SweepResult summarizes one distribution sweep.
type SweepResult struct {
	Scanned  int `json:"scanned"`
	Promoted int `json:"promoted"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}
