package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/target/vms-jobdist/internal/domain/model"
	apperrors "github.com/target/vms-jobdist/internal/errors"
)

// HistoryService is the history writer and reader as seen by the handlers.
type HistoryService interface {
	List(ctx context.Context, opts model.HistoryListOptions) ([]model.HistorySummary, error)
	GetRevision(ctx context.Context, programID, jobID string, revision int) (*model.HistoryRevision, error)
	Create(
		ctx context.Context,
		programID string,
		actor *model.Actor,
		req model.CreateHistoryRequest,
	) (*model.JobHistory, error)
}

// HistoryHandlers provides HTTP handlers for job history.
type HistoryHandlers struct {
	Svc    HistoryService
	Logger *slog.Logger
}

// List handles GET /program/{program_id}/job-history/{job_id}.
func (h *HistoryHandlers) List(w http.ResponseWriter, r *http.Request) {
	programID, jobID, ok := h.programAndJob(w, r)
	if !ok {
		return
	}
	limit, offset, err := ParsePageLimit(r)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	items, err := h.Svc.List(r.Context(), model.HistoryListOptions{
		ProgramID: programID,
		JobID:     jobID,
		EventType: optionalString(r, "event_type"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		logServerError(r, h.Logger, err)
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

// Revision handles GET /program/{program_id}/job-history/{job_id}/revision/{revision}.
func (h *HistoryHandlers) Revision(w http.ResponseWriter, r *http.Request) {
	programID, jobID, ok := h.programAndJob(w, r)
	if !ok {
		return
	}
	revision, err := strconv.Atoi(r.PathValue("revision"))
	if err != nil {
		WriteAppError(w, apperrors.ValidationField("revision", "revision must be an integer"))
		return
	}

	rec, err := h.Svc.GetRevision(r.Context(), programID, jobID, revision)
	if err != nil {
		logServerError(r, h.Logger, err)
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, rec)
}

// Create handles POST /program/{program_id}/job-history.
func (h *HistoryHandlers) Create(w http.ResponseWriter, r *http.Request) {
	programID, err := requirePath(r, "program_id")
	if err != nil {
		WriteAppError(w, err)
		return
	}
	var req model.CreateHistoryRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	actor, _ := ActorFromContext(r.Context())

	rec, err := h.Svc.Create(r.Context(), programID, actor, req)
	if err != nil {
		logServerError(r, h.Logger, err)
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, rec)
}

func (h *HistoryHandlers) programAndJob(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	programID, err := requirePath(r, "program_id")
	if err != nil {
		WriteAppError(w, err)
		return "", "", false
	}
	jobID, err := requirePath(r, "job_id")
	if err != nil {
		WriteAppError(w, err)
		return "", "", false
	}
	return programID, jobID, true
}
