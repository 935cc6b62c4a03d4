package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/target/vms-jobdist/internal/core"
	"github.com/target/vms-jobdist/internal/data"
	"github.com/target/vms-jobdist/internal/domain/diff"
	"github.com/target/vms-jobdist/internal/domain/distribution"
	"github.com/target/vms-jobdist/internal/domain/model"
	apperrors "github.com/target/vms-jobdist/internal/errors"
)

// DistributionServiceOptions bundles dependencies for NewDistributionService.
type DistributionServiceOptions struct {
	Tx            core.TxRunner
	Jobs          core.JobRepository
	Vendors       core.VendorRepository
	Distributions core.DistributionRepository
	// History is the writer used for best-effort audit records.
	History core.HistoryWriter
	// HistoryReader answers the release lookups of UpdateByID.
	HistoryReader core.HistoryRepository
	Notifier      core.EventNotifier
	Background    core.BackgroundQueue
	Verifier      core.TokenVerifier
	TimeProvider  data.TimeProvider
	Logger        *slog.Logger
}

// DistributionService releases jobs to vendors and manages the resulting
// distribution rows.
type DistributionService struct {
	tx            core.TxRunner
	jobs          core.JobRepository
	vendors       core.VendorRepository
	distributions core.DistributionRepository
	history       core.HistoryWriter
	historyReader core.HistoryRepository
	notifier      core.EventNotifier
	background    core.BackgroundQueue
	verifier      core.TokenVerifier
	clock         data.TimeProvider
	logger        *slog.Logger
}

// NewDistributionService creates a DistributionService.
func NewDistributionService(opts DistributionServiceOptions) *DistributionService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default().With("component", "distribution_service")
	}
	clock := opts.TimeProvider
	if clock == nil {
		clock = data.RealTimeProvider{}
	}
	return &DistributionService{
		tx:            opts.Tx,
		jobs:          opts.Jobs,
		vendors:       opts.Vendors,
		distributions: opts.Distributions,
		history:       opts.History,
		historyReader: opts.HistoryReader,
		notifier:      opts.Notifier,
		background:    opts.Background,
		verifier:      opts.Verifier,
		clock:         clock,
		logger:        logger,
	}
}

// createOutcome carries what the post-commit side effects need.
type createOutcome struct {
	job      *model.JobWithTemplate
	next     model.JobStatus
	matches  []model.VendorMatch
	inserted []*model.JobDistribution
}

// Create distributes a job to the requested vendors and vendor groups. The
// job row is locked for the whole transaction, so concurrent requests for
// the same job are serialized. History and notifications follow the commit
// and never fail the request.
func (s *DistributionService) Create(
	ctx context.Context,
	programID string,
	actor *model.Actor,
	req model.CreateDistributionRequest,
) (*model.CreateDistributionResult, error) {
	if actor == nil || actor.Subject == "" {
		return nil, apperrors.Unauthorized("authentication required")
	}
	if strings.TrimSpace(req.JobID) == "" {
		return nil, apperrors.ValidationField("job_id", "job_id is required")
	}
	if err := distribution.ValidateSchedules(req.Schedules); err != nil {
		return nil, apperrors.ValidationField("schedules", err.Error())
	}
	status, err := canonicalStatus(req.Status)
	if err != nil {
		return nil, err
	}
	req.Status = status

	var out createOutcome
	var ineligible []string
	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		out, ineligible, err = s.createTx(ctx, tx, programID, actor, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterCreate(ctx, programID, *actor, out)

	return &model.CreateDistributionResult{
		JobID:         req.JobID,
		JobStatus:     out.next,
		Distributions: out.inserted,
		Ineligible:    ineligible,
	}, nil
}

func (s *DistributionService) createTx(
	ctx context.Context,
	tx pgx.Tx,
	programID string,
	actor *model.Actor,
	req model.CreateDistributionRequest,
) (createOutcome, []string, error) {
	job, err := s.jobs.GetWithTemplateForUpdateTx(ctx, tx, programID, req.JobID)
	if err != nil {
		return createOutcome{}, nil, fmt.Errorf("load job: %w", err)
	}

	next, err := distribution.CheckDistributable(job)
	if err != nil {
		var blocked *distribution.BlockedError
		if errors.As(err, &blocked) {
			return createOutcome{}, nil, apperrors.Validation(blocked.Reason)
		}
		return createOutcome{}, nil, err
	}

	var groups []model.VendorGroupMembers
	if groupIDs := distribution.GroupIDs(req.Schedules); len(groupIDs) > 0 {
		groups, err = s.vendors.ExpandGroupsTx(ctx, tx, programID, groupIDs)
		if err != nil {
			return createOutcome{}, nil, fmt.Errorf("expand vendor groups: %w", err)
		}
	}
	targets := distribution.ExpandTargets(req.Schedules, groups)
	candidates := distribution.CandidateVendorIDs(targets)
	if len(candidates) == 0 {
		return createOutcome{}, nil, apperrors.ValidationField("schedules", "the requested vendor groups have no members")
	}

	matches, err := s.vendors.MatchActiveTx(ctx, tx, model.VendorMatchQuery{
		ProgramID:       programID,
		CandidateIDs:    candidates,
		HierarchyIDs:    job.HierarchyIDs,
		LaborCategoryID: job.LaborCategoryID,
	})
	if err != nil {
		return createOutcome{}, nil, fmt.Errorf("match vendors: %w", err)
	}

	rows, ineligible := distribution.BuildRows(distribution.RowsParams{
		Job:       job,
		Targets:   targets,
		Matches:   matches,
		Requested: req.Status,
		ActorID:   actor.Subject,
		Now:       s.clock.Now(),
	})
	if len(rows) == 0 {
		return createOutcome{}, nil, apperrors.Validation("none of the requested vendors are active and eligible for this job")
	}

	if _, err := s.distributions.DeleteScheduledTx(ctx, tx, job.ID, candidates); err != nil {
		return createOutcome{}, nil, fmt.Errorf("delete superseded schedules: %w", err)
	}
	inserted, err := s.distributions.BulkInsertTx(ctx, tx, rows)
	if err != nil {
		return createOutcome{}, nil, fmt.Errorf("insert distributions: %w", err)
	}
	if err := s.jobs.UpdateStatusTx(ctx, tx, core.UpdateJobStatusParams{
		ProgramID: programID,
		JobID:     job.ID,
		Status:    next,
		ActorID:   actor.Subject,
	}); err != nil {
		return createOutcome{}, nil, fmt.Errorf("update job status: %w", err)
	}

	return createOutcome{job: job, next: next, matches: matches, inserted: inserted}, ineligible, nil
}

// afterCreate queues the "Job Distributed" history record and the
// distribution notification.
func (s *DistributionService) afterCreate(ctx context.Context, programID string, actor model.Actor, out createOutcome) {
	tree, err := distributedChanges(out.job.Status, out.next, out.matches)
	if err != nil {
		s.logger.ErrorContext(ctx, "build distribution changes", "job_id", out.job.ID, "error", err)
	}
	snapshot := out.job.Snapshot()
	snapshot["status"] = string(out.next)

	s.submit("history:job_distributed", func(ctx context.Context) error {
		_, err := s.history.RecordEvent(ctx, model.RecordEventParams{
			ProgramID:       programID,
			JobID:           out.job.ID,
			NewData:         snapshot,
			ActorID:         actor.Subject,
			EventType:       model.EventJobDistributed,
			CompareMetaData: tree,
		})
		return err
	})

	var released []string
	for _, d := range out.inserted {
		if !d.Status.Is(model.DistributionStatusScheduled) {
			released = append(released, d.VendorID)
		}
	}
	if len(released) > 0 {
		s.notify(ctx, model.NotificationEvent{
			Code:      model.NotifyJobDistributed,
			ProgramID: programID,
			JobID:     out.job.ID,
			Actor:     actor,
			VendorIDs: released,
		})
	}
}

// distributedChanges merges the job status change with the list of matched
// vendors into one diff tree.
func distributedChanges(prev, next model.JobStatus, matches []model.VendorMatch) (diff.ChangeTree, error) {
	tree := diff.BuildStructured(diff.Compare(
		map[string]any{"status": string(prev)},
		map[string]any{"status": string(next)},
	))
	vendors := make([]any, 0, len(matches))
	for _, m := range matches {
		vendors = append(vendors, map[string]any{"id": m.VendorID, "name": m.VendorName})
	}
	vendorTree := diff.ChangeTree{
		"vendors": diff.NewChangeRecord("vendors", diff.FieldChange{New: vendors}).AsMap(),
	}
	return diff.Merge(tree, vendorTree)
}

// List returns one page of distributions.
func (s *DistributionService) List(
	ctx context.Context,
	opts model.DistributionListOptions,
) (*model.DistributionListPage, error) {
	if opts.Limit < 0 || opts.Offset < 0 {
		return nil, apperrors.Validation("page and limit must be positive")
	}
	page, err := s.distributions.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list distributions: %w", err)
	}
	return page, nil
}

// UpdateByID applies a partial update to one distribution. A release looks up
// the latest "Job Updated" record to tell a release from hold apart from a
// release from halt, and fails when there is none.
func (s *DistributionService) UpdateByID(
	ctx context.Context,
	programID, id string,
	actor *model.Actor,
	req model.UpdateDistributionRequest,
) (*model.JobDistribution, error) {
	if actor == nil || actor.Subject == "" {
		return nil, apperrors.Unauthorized("authentication required")
	}
	if req.IsEmpty() {
		return nil, apperrors.Validation("update changes nothing")
	}
	if req.OptStatus != nil && !req.OptStatus.Valid() {
		return nil, apperrors.ValidationField("opt_status", "opt_status must be OPT_IN or OPT_OUT")
	}
	status, err := canonicalStatus(req.Status)
	if err != nil {
		return nil, err
	}
	req.Status = status

	current, err := s.distributions.GetByID(ctx, programID, id)
	if err != nil {
		return nil, fmt.Errorf("get distribution: %w", err)
	}

	var previous *model.JobHistory
	if req.Status != nil && req.Status.Is(model.DistributionStatusRelease) {
		previous, err = s.historyReader.LatestByEventType(ctx, programID, current.JobID, model.EventJobUpdated)
		if err != nil {
			return nil, fmt.Errorf("find previous job update: %w", err)
		}
	}
	code, err := distribution.UpdateCode(req, previous)
	if err != nil {
		if errors.Is(err, distribution.ErrNoPriorUpdate) {
			return nil, apperrors.Validation(err.Error())
		}
		return nil, err
	}

	params := core.UpdateDistributionParams{
		ProgramID:       programID,
		ID:              id,
		Status:          req.Status,
		SubmissionLimit: req.SubmissionLimit,
		OptStatus:       req.OptStatus,
		OptOutReason:    req.OptOutReason,
		Notes:           req.Notes,
		ActorID:         actor.Subject,
	}
	if req.OptStatus != nil {
		now := s.clock.Now()
		params.OptStatusDate = &now
	}
	updated, err := s.distributions.Update(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("update distribution: %w", err)
	}

	s.recordDistributionChange(programID, *actor, model.EventDistributionUpdated, current, updated)
	if code != "" {
		s.notify(ctx, model.NotificationEvent{
			Code:      code,
			ProgramID: programID,
			JobID:     updated.JobID,
			Actor:     *actor,
			VendorIDs: []string{updated.VendorID},
		})
	}
	return updated, nil
}

// UpdateSubmissionLimit applies one of three updates chosen by the query:
// every distribution of a job, one distribution, or the calling vendor's opt
// status. The raw token is verified here as well as by the route.
func (s *DistributionService) UpdateSubmissionLimit(
	ctx context.Context,
	programID, rawToken string,
	q model.SubmissionLimitQuery,
	req model.SubmissionLimitRequest,
) (*model.SubmissionLimitResult, error) {
	actor, err := s.authenticate(ctx, rawToken)
	if err != nil {
		return nil, err
	}
	mode, err := distribution.SelectLimitMode(q)
	if err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	var res *model.SubmissionLimitResult
	switch mode {
	case distribution.LimitModeGlobal:
		res, err = s.updateGlobalLimit(ctx, programID, actor, q, req)
	case distribution.LimitModeIndividual:
		res, err = s.updateIndividualLimit(ctx, programID, actor, q, req)
	case distribution.LimitModeVendorOpt:
		res, err = s.updateVendorOpt(ctx, programID, actor, q, req)
	}
	if err != nil {
		return nil, err
	}
	res.Mode = mode.String()
	return res, nil
}

func (s *DistributionService) authenticate(ctx context.Context, rawToken string) (*model.Actor, error) {
	if strings.TrimSpace(rawToken) == "" || s.verifier == nil {
		return nil, apperrors.Unauthorized("bearer token required")
	}
	actor, err := s.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, "invalid bearer token")
	}
	if actor == nil || actor.Subject == "" {
		return nil, apperrors.Unauthorized("invalid bearer token")
	}
	return actor, nil
}

func (s *DistributionService) updateGlobalLimit(
	ctx context.Context,
	programID string,
	actor *model.Actor,
	q model.SubmissionLimitQuery,
	req model.SubmissionLimitRequest,
) (*model.SubmissionLimitResult, error) {
	if req.SubmissionLimit == nil {
		return nil, apperrors.ValidationField("submission_limit", "submission_limit is required")
	}
	n, err := s.distributions.UpdateLimitByJob(ctx, core.UpdateJobLimitParams{
		ProgramID:       programID,
		JobID:           q.JobID,
		SubmissionLimit: req.SubmissionLimit,
		ActorID:         actor.Subject,
	})
	if err != nil {
		return nil, fmt.Errorf("update job submission limit: %w", err)
	}
	if n == 0 {
		return nil, apperrors.NotFoundf("no distributions found for job %s", q.JobID)
	}

	limit := *req.SubmissionLimit
	s.submit("history:submission_limit", func(ctx context.Context) error {
		_, err := s.history.RecordEvent(ctx, model.RecordEventParams{
			ProgramID: programID,
			JobID:     q.JobID,
			NewData:   map[string]any{"submission_limit": limit},
			ActorID:   actor.Subject,
			EventType: model.EventSubmissionLimitUpdated,
			CompareMetaData: diff.ChangeTree{
				"submission_limit": diff.NewChangeRecord("submission_limit", diff.FieldChange{New: limit}).AsMap(),
			},
			StatusOverride: s.currentJobStatus(ctx, programID, q.JobID),
		})
		return err
	})
	s.notify(ctx, model.NotificationEvent{
		Code:      model.NotifyGlobalSubmissionLimitUpdated,
		ProgramID: programID,
		JobID:     q.JobID,
		Actor:     *actor,
	})
	return &model.SubmissionLimitResult{Updated: n}, nil
}

func (s *DistributionService) updateIndividualLimit(
	ctx context.Context,
	programID string,
	actor *model.Actor,
	q model.SubmissionLimitQuery,
	req model.SubmissionLimitRequest,
) (*model.SubmissionLimitResult, error) {
	if req.OptStatus != nil && !req.OptStatus.Valid() {
		return nil, apperrors.ValidationField("opt_status", "opt_status must be OPT_IN or OPT_OUT")
	}
	requested, err := canonicalStatus(req.Status)
	if err != nil {
		return nil, err
	}
	current, err := s.distributions.GetByID(ctx, programID, q.DistributionID)
	if err != nil {
		return nil, fmt.Errorf("get distribution: %w", err)
	}
	if current.VendorID != q.VendorID {
		return nil, apperrors.NotFoundf("distribution %s not found for vendor %s", q.DistributionID, q.VendorID)
	}

	status := distribution.ResolveIndividualStatus(requested, current.Status, current.DistributionDate)
	params := core.UpdateDistributionParams{
		ProgramID:       programID,
		ID:              current.ID,
		Status:          &status,
		SubmissionLimit: req.SubmissionLimit,
		OptStatus:       req.OptStatus,
		OptOutReason:    req.OptOutReason,
		Notes:           req.Notes,
		ActorID:         actor.Subject,
	}
	if req.OptStatus != nil {
		now := s.clock.Now()
		params.OptStatusDate = &now
	}
	updated, err := s.distributions.Update(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("update distribution: %w", err)
	}

	s.recordDistributionChange(programID, *actor, model.EventSubmissionLimitUpdated, current, updated)
	s.notify(ctx, model.NotificationEvent{
		Code:      distribution.IndividualLimitCode(requested, status),
		ProgramID: programID,
		JobID:     updated.JobID,
		Actor:     *actor,
		VendorIDs: []string{updated.VendorID},
	})
	return &model.SubmissionLimitResult{Updated: 1, Distribution: updated}, nil
}

func (s *DistributionService) updateVendorOpt(
	ctx context.Context,
	programID string,
	actor *model.Actor,
	q model.SubmissionLimitQuery,
	req model.SubmissionLimitRequest,
) (*model.SubmissionLimitResult, error) {
	if req.OptStatus == nil || !req.OptStatus.Valid() {
		return nil, apperrors.ValidationField("opt_status", "opt_status must be OPT_IN or OPT_OUT")
	}

	vendorID := q.VendorID
	if actor.IsVendor() {
		own, err := s.vendors.ResolveForUser(ctx, programID, actor.Subject)
		if err != nil {
			return nil, fmt.Errorf("resolve caller vendor: %w", err)
		}
		if own == "" {
			return nil, apperrors.Unauthorized("caller is not a vendor of this program")
		}
		vendorID = own
	}

	updated, err := s.distributions.UpdateVendorOpt(ctx, core.UpdateVendorOptParams{
		ProgramID:     programID,
		JobID:         q.JobID,
		VendorID:      vendorID,
		OptStatus:     *req.OptStatus,
		OptStatusDate: s.clock.Now(),
		OptOutReason:  req.OptOutReason,
		Notes:         req.Notes,
		ActorID:       actor.Subject,
	})
	if err != nil {
		return nil, fmt.Errorf("update vendor opt status: %w", err)
	}

	optTree := diff.ChangeTree{
		"opt_status": diff.NewChangeRecord("opt_status", diff.FieldChange{New: string(*req.OptStatus)}).AsMap(),
	}
	s.submit("history:vendor_opt", func(ctx context.Context) error {
		_, err := s.history.RecordEvent(ctx, model.RecordEventParams{
			ProgramID:       programID,
			JobID:           q.JobID,
			ActorID:         actor.Subject,
			EventType:       model.EventVendorOptStatusUpdated,
			CompareMetaData: optTree,
			StatusOverride:  s.currentJobStatus(ctx, programID, q.JobID),
			Reason:          req.OptOutReason,
			Note:            req.Notes,
		})
		return err
	})
	s.notify(ctx, model.NotificationEvent{
		Code:      distribution.OptCode(*req.OptStatus),
		ProgramID: programID,
		JobID:     q.JobID,
		Actor:     *actor,
		VendorIDs: []string{vendorID},
	})
	return &model.SubmissionLimitResult{Updated: 1, Distribution: updated}, nil
}

// Delete soft deletes one distribution.
func (s *DistributionService) Delete(ctx context.Context, programID, id string, actor *model.Actor) error {
	if actor == nil || actor.Subject == "" {
		return apperrors.Unauthorized("authentication required")
	}
	deleted, err := s.distributions.SoftDelete(ctx, programID, id, actor.Subject)
	if err != nil {
		return fmt.Errorf("delete distribution: %w", err)
	}
	if !deleted {
		return apperrors.NotFoundf("job distribution %s not found", id)
	}
	return nil
}

// recordDistributionChange queues a history record of the fields that
// changed on one distribution, keyed by vendor.
func (s *DistributionService) recordDistributionChange(
	programID string,
	actor model.Actor,
	eventType string,
	before, after *model.JobDistribution,
) {
	changes := diff.Compare(distributionSnapshot(before), distributionSnapshot(after))
	if len(changes) == 0 {
		return
	}
	tree := diff.ChangeTree{
		"distributions": map[string]any{after.VendorID: map[string]any(diff.BuildStructured(changes))},
	}
	s.submit("history:"+strings.ReplaceAll(strings.ToLower(eventType), " ", "_"), func(ctx context.Context) error {
		_, err := s.history.RecordEvent(ctx, model.RecordEventParams{
			ProgramID:       programID,
			JobID:           after.JobID,
			ActorID:         actor.Subject,
			EventType:       eventType,
			CompareMetaData: tree,
			StatusOverride:  s.currentJobStatus(ctx, programID, after.JobID),
			Reason:          after.OptOutReason,
			Note:            after.Notes,
		})
		return err
	})
}

func distributionSnapshot(d *model.JobDistribution) map[string]any {
	snap := map[string]any{
		"status":           string(d.Status),
		"submission_limit": nil,
		"opt_status":       nil,
		"opt_out_reason":   nil,
		"notes":            nil,
	}
	if d.SubmissionLimit != nil {
		snap["submission_limit"] = *d.SubmissionLimit
	}
	if d.OptStatus != nil {
		snap["opt_status"] = string(*d.OptStatus)
	}
	if d.OptOutReason != nil {
		snap["opt_out_reason"] = *d.OptOutReason
	}
	if d.Notes != nil {
		snap["notes"] = *d.Notes
	}
	return snap
}

// canonicalStatus maps a requested status to its stored spelling and rejects
// unknown values.
func canonicalStatus(requested *model.DistributionStatus) (*model.DistributionStatus, error) {
	if requested == nil {
		return nil, nil
	}
	status, ok := requested.Canonical()
	if !ok {
		return nil, apperrors.ValidationField("status", fmt.Sprintf("unknown distribution status %q", *requested))
	}
	return &status, nil
}

// currentJobStatus returns the job's status for history records written
// without a job snapshot. Lookup failures fall back to the history default.
func (s *DistributionService) currentJobStatus(ctx context.Context, programID, jobID string) *string {
	job, err := s.jobs.GetWithTemplate(ctx, programID, jobID)
	if err != nil {
		s.logger.WarnContext(ctx, "read job status for history", "job_id", jobID, "error", err)
		return nil
	}
	status := string(job.Status)
	return &status
}

func (s *DistributionService) submit(name string, task func(ctx context.Context) error) {
	if s.background == nil || s.history == nil {
		return
	}
	if !s.background.Submit(name, task) {
		s.logger.Warn("background task dropped", "task", name)
	}
}

func (s *DistributionService) notify(ctx context.Context, event model.NotificationEvent) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, event)
}
