package model

// VendorStatusActive is the program_vendors status eligible for distribution.
const VendorStatusActive = "Active"

// VendorMatch is an active vendor whose hierarchy and labor category filters
// accept a job.
type VendorMatch struct {
	VendorID       string `json:"vendor_id"         db:"id"`
	VendorName     string `json:"vendor_name"       db:"vendor_name"`
	IsJobAutoOptIn bool   `json:"is_job_auto_opt_in" db:"is_job_auto_opt_in"`
}

// VendorMatchQuery selects the candidates eligible for a job.
type VendorMatchQuery struct {
	ProgramID       string
	CandidateIDs    []string
	HierarchyIDs    []string
	LaborCategoryID *string
}

// VendorGroupMembers is a vendor group with its member vendor ids.
type VendorGroupMembers struct {
	GroupID   string   `db:"id"`
	VendorIDs []string `db:"vendor_ids"`
}
