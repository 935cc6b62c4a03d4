package testutil

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/target/vms-jobdist/internal/domain/model"
)

// Fixtures inserts reference rows for repository and handler tests. Every
// helper fails the test on error and returns the new row id.
type Fixtures struct {
	t         TestingTB
	db        *sql.DB
	ProgramID string
}

// NewFixtures binds fixtures to a fresh program id.
func NewFixtures(t TestingTB, db *sql.DB) *Fixtures {
	return &Fixtures{t: t, db: db, ProgramID: uuid.NewString()}
}

func (f *Fixtures) exec(query string, args ...any) {
	f.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := f.db.ExecContext(ctx, query, args...); err != nil {
		f.t.Fatalf("fixture insert failed: %v\n%s", err, query)
	}
}

// VendorFixture describes a program vendor.
type VendorFixture struct {
	Name         string
	Status       string
	HierarchyIDs []string
	AllHierarchy bool
	IndustryIDs  []string
	AllLabor     bool
	AutoOptIn    bool
}

// Vendor inserts a program vendor. An empty status means Active.
func (f *Fixtures) Vendor(v VendorFixture) string {
	f.t.Helper()
	id := uuid.NewString()
	if v.Status == "" {
		v.Status = model.VendorStatusActive
	}
	if v.HierarchyIDs == nil {
		v.HierarchyIDs = []string{}
	}
	if v.IndustryIDs == nil {
		v.IndustryIDs = []string{}
	}
	f.exec(`INSERT INTO program_vendors
		(id, program_id, vendor_name, status, hierarchy_ids, is_all_hierarchy, industry_ids, is_all_labor_category, is_job_auto_opt_in)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, f.ProgramID, v.Name, v.Status, v.HierarchyIDs, v.AllHierarchy, v.IndustryIDs, v.AllLabor, v.AutoOptIn)
	return id
}

// VendorGroup inserts a vendor group with the given members.
func (f *Fixtures) VendorGroup(name string, vendorIDs ...string) string {
	f.t.Helper()
	id := uuid.NewString()
	f.exec(`INSERT INTO vendor_groups (id, program_id, group_name, vendor_ids) VALUES ($1, $2, $3, $4)`,
		id, f.ProgramID, name, vendorIDs)
	return id
}

// User inserts a program user. vendorID may be empty.
func (f *Fixtures) User(userID string, userType model.UserType, vendorID, first, last string) {
	f.t.Helper()
	var vendor *string
	if vendorID != "" {
		vendor = &vendorID
	}
	f.exec(`INSERT INTO "user" (user_id, program_id, user_type, vendor_id, first_name, last_name)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		userID, f.ProgramID, string(userType), vendor, first, last)
}

// Schedule inserts a distribution schedule with one detail row.
func (f *Fixtures) Schedule(detail model.ScheduleDetail) string {
	f.t.Helper()
	id := uuid.NewString()
	f.exec(`INSERT INTO distribution_schedules (id, program_id, name) VALUES ($1, $2, $3)`, id, f.ProgramID, "schedule")
	var cond []byte
	if detail.Condition != nil {
		b, err := json.Marshal(detail.Condition)
		if err != nil {
			f.t.Fatal(err)
		}
		cond = b
	}
	if detail.VendorIDs == nil {
		detail.VendorIDs = []string{}
	}
	if detail.VendorGroupIDs == nil {
		detail.VendorGroupIDs = []string{}
	}
	f.exec(`INSERT INTO distribution_schedule_details
		(distribution_schedule_id, vendor_ids, vendor_group_ids, duration, measure_unit, condition)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb)`,
		id, detail.VendorIDs, detail.VendorGroupIDs, detail.Duration, string(detail.MeasureUnit), cond)
	return id
}

// Template inserts a job template.
func (f *Fixtures) Template(flags model.JobTemplateFlags) string {
	f.t.Helper()
	id := uuid.NewString()
	if flags.TemplateName == "" {
		flags.TemplateName = "Template"
	}
	f.exec(`INSERT INTO job_templates
		(id, program_id, template_name, is_manual_distribute_submit, is_review_configured_or_submit,
		 submission_limit_vendor, distribution_schedule_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, f.ProgramID, flags.TemplateName, flags.IsManualDistributeSubmit, flags.IsReviewConfiguredOrSubmit,
		flags.SubmissionLimitVendor, flags.DistributionScheduleID)
	return id
}

// JobFixture describes a job.
type JobFixture struct {
	Code            string
	Status          model.JobStatus
	TemplateID      string
	HierarchyIDs    []string
	LaborCategoryID *string
	WorkLocationID  *string
	ManagerID       *string
}

// Job inserts a job.
func (f *Fixtures) Job(j JobFixture) string {
	f.t.Helper()
	id := uuid.NewString()
	if j.Code == "" {
		j.Code = "JOB-" + id[:8]
	}
	if j.HierarchyIDs == nil {
		j.HierarchyIDs = []string{}
	}
	var tmpl *string
	if j.TemplateID != "" {
		tmpl = &j.TemplateID
	}
	f.exec(`INSERT INTO jobs
		(id, program_id, job_code, title, status, hierarchy_ids, labor_category_id, work_location_id, job_template_id, job_manager_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		id, f.ProgramID, j.Code, "Engineer", string(j.Status), j.HierarchyIDs, j.LaborCategoryID,
		j.WorkLocationID, tmpl, j.ManagerID)
	return id
}

// Submissions inserts n live submissions for a job.
func (f *Fixtures) Submissions(jobID string, n int) {
	f.t.Helper()
	for range n {
		f.exec(`INSERT INTO submissions (job_id) VALUES ($1)`, jobID)
	}
}

// WorkLocation inserts a work location.
func (f *Fixtures) WorkLocation(name string) string {
	f.t.Helper()
	id := uuid.NewString()
	f.exec(`INSERT INTO work_locations (id, program_id, name) VALUES ($1, $2, $3)`, id, f.ProgramID, name)
	return id
}

// Hierarchy inserts a hierarchy node.
func (f *Fixtures) Hierarchy(name string) string {
	f.t.Helper()
	id := uuid.NewString()
	f.exec(`INSERT INTO hierarchies (id, program_id, name) VALUES ($1, $2, $3)`, id, f.ProgramID, name)
	return id
}

// Currency inserts a currency.
func (f *Fixtures) Currency(code, name, symbol string) {
	f.t.Helper()
	f.exec(`INSERT INTO currencies (code, name, label, symbol) VALUES ($1, $2, $3, $4)
		ON CONFLICT (code) DO NOTHING`, code, name, code+" - "+name, symbol)
}

// BackdateDistributions moves created_on of every row for the job into the past.
func (f *Fixtures) BackdateDistributions(jobID string, age time.Duration) {
	f.t.Helper()
	f.exec(`UPDATE job_distributions SET created_on = now() - make_interval(secs => $2) WHERE job_id = $1`,
		jobID, age.Seconds())
}
