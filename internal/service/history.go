package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/target/vms-jobdist/internal/core"
	"github.com/target/vms-jobdist/internal/domain/diff"
	"github.com/target/vms-jobdist/internal/domain/history"
	"github.com/target/vms-jobdist/internal/domain/model"
	apperrors "github.com/target/vms-jobdist/internal/errors"
)

// HistoryServiceOptions bundles dependencies for NewHistoryService.
type HistoryServiceOptions struct {
	Tx        core.TxRunner
	Repo      core.HistoryRepository
	Users     core.UserDirectory
	Populator *Populator
	Logger    *slog.Logger
}

// HistoryService writes and reads the revisioned job audit trail.
type HistoryService struct {
	tx        core.TxRunner
	repo      core.HistoryRepository
	users     core.UserDirectory
	populator *Populator
	logger    *slog.Logger
}

// NewHistoryService creates a HistoryService.
func NewHistoryService(opts HistoryServiceOptions) *HistoryService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default().With("component", "history_service")
	}
	return &HistoryService{
		tx:        opts.Tx,
		repo:      opts.Repo,
		users:     opts.Users,
		populator: opts.Populator,
		logger:    logger,
	}
}

// RecordEventTx writes the next revision on the caller's transaction. Writes
// for one job are serialized, so revisions grow by exactly one.
func (s *HistoryService) RecordEventTx(
	ctx context.Context,
	tx pgx.Tx,
	params model.RecordEventParams,
) (*model.JobHistory, error) {
	if err := validateRecordParams(params); err != nil {
		return nil, err
	}
	if err := s.repo.LockJobTx(ctx, tx, params.ProgramID, params.JobID); err != nil {
		return nil, fmt.Errorf("lock job history: %w", err)
	}
	prev, err := s.repo.MaxRevisionTx(ctx, tx, params.ProgramID, params.JobID)
	if err != nil {
		return nil, fmt.Errorf("read latest revision: %w", err)
	}

	row := history.BuildRow(params, history.NextRevision(prev, params.EventType))
	rec, err := s.repo.InsertTx(ctx, tx, row)
	if err != nil {
		return nil, fmt.Errorf("insert history revision: %w", err)
	}
	return rec, nil
}

// RecordEvent writes the next revision in its own transaction.
func (s *HistoryService) RecordEvent(ctx context.Context, params model.RecordEventParams) (*model.JobHistory, error) {
	var rec *model.JobHistory
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		rec, err = s.RecordEventTx(ctx, tx, params)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Create records an explicitly submitted event. When old data is supplied
// the diff is computed here instead of trusting the caller's tree.
func (s *HistoryService) Create(
	ctx context.Context,
	programID string,
	actor *model.Actor,
	req model.CreateHistoryRequest,
) (*model.JobHistory, error) {
	if actor == nil || actor.Subject == "" {
		return nil, apperrors.Unauthorized("authentication required")
	}
	tree := req.CompareMetaData
	if req.OldData != nil && req.NewData != nil {
		tree = diff.BuildStructured(diff.Compare(req.OldData, req.NewData))
	}
	return s.RecordEvent(ctx, model.RecordEventParams{
		ProgramID:       programID,
		JobID:           req.JobID,
		NewData:         req.NewData,
		ActorID:         actor.Subject,
		EventType:       req.EventType,
		CompareMetaData: tree,
		StatusOverride:  req.Status,
		Reason:          req.Reason,
		Note:            req.Note,
	})
}

func validateRecordParams(p model.RecordEventParams) error {
	switch {
	case strings.TrimSpace(p.ProgramID) == "":
		return apperrors.ValidationField("program_id", "program_id is required")
	case strings.TrimSpace(p.JobID) == "":
		return apperrors.ValidationField("job_id", "job_id is required")
	case strings.TrimSpace(p.EventType) == "":
		return apperrors.ValidationField("event_type", "event_type is required")
	}
	return nil
}

// List returns revision summaries in revision order with actors resolved.
func (s *HistoryService) List(ctx context.Context, opts model.HistoryListOptions) ([]model.HistorySummary, error) {
	records, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list job history: %w", err)
	}
	users := s.resolveUsers(ctx, opts.ProgramID, records...)

	out := make([]model.HistorySummary, 0, len(records))
	for _, rec := range records {
		out = append(out, summarize(rec, users))
	}
	return out, nil
}

// GetRevision returns one revision with reference ids resolved for display.
func (s *HistoryService) GetRevision(
	ctx context.Context,
	programID, jobID string,
	revision int,
) (*model.HistoryRevision, error) {
	if revision < 0 {
		return nil, apperrors.ValidationField("revision", "revision must be zero or greater")
	}
	rec, err := s.repo.GetRevision(ctx, programID, jobID, revision)
	if err != nil {
		return nil, fmt.Errorf("get revision: %w", err)
	}
	users := s.resolveUsers(ctx, programID, rec)

	out := &model.HistoryRevision{
		HistorySummary:  summarize(rec, users),
		NewMetaData:     rec.NewMetaData,
		CompareMetaData: rec.CompareMetaData,
	}
	if s.populator != nil {
		out.NewMetaData = s.populator.Populate(ctx, rec.NewMetaData)
		out.CompareMetaData = s.populator.Populate(ctx, rec.CompareMetaData)
	}
	return out, nil
}

// resolveUsers looks up every actor on the records. Lookup failures leave
// actors unresolved.
func (s *HistoryService) resolveUsers(
	ctx context.Context,
	programID string,
	records ...*model.JobHistory,
) map[string]model.UserRef {
	seen := map[string]struct{}{}
	var ids []string
	for _, rec := range records {
		for _, id := range []*string{rec.CreatedBy, rec.UpdatedBy} {
			if id == nil || *id == "" {
				continue
			}
			if _, ok := seen[*id]; ok {
				continue
			}
			seen[*id] = struct{}{}
			ids = append(ids, *id)
		}
	}
	if len(ids) == 0 || s.users == nil {
		return nil
	}
	users, err := s.users.UsersByIDs(ctx, programID, ids)
	if err != nil {
		s.logger.WarnContext(ctx, "resolve history actors failed", "program_id", programID, "error", err)
		return nil
	}
	return users
}

func summarize(rec *model.JobHistory, users map[string]model.UserRef) model.HistorySummary {
	return model.HistorySummary{
		ID:        rec.ID,
		Revision:  rec.Revision,
		EventType: rec.EventType,
		Status:    rec.Status,
		Reason:    rec.Reason,
		Note:      rec.Note,
		CreatedBy: userRef(rec.CreatedBy, users),
		UpdatedBy: userRef(rec.UpdatedBy, users),
		CreatedOn: rec.CreatedOn,
		UpdatedOn: rec.UpdatedOn,
		IsShow:    history.IsShow(rec),
	}
}

func userRef(id *string, users map[string]model.UserRef) *model.UserRef {
	if id == nil {
		return nil
	}
	u, ok := users[*id]
	if !ok {
		return nil
	}
	return &u
}
