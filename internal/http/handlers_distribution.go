// Package httpx serves the job distribution and job history REST API.
package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/target/vms-jobdist/internal/domain/model"
	apperrors "github.com/target/vms-jobdist/internal/errors"
)

// DistributionService is the distribution engine as seen by the handlers.
type DistributionService interface {
	Create(
		ctx context.Context,
		programID string,
		actor *model.Actor,
		req model.CreateDistributionRequest,
	) (*model.CreateDistributionResult, error)
	List(ctx context.Context, opts model.DistributionListOptions) (*model.DistributionListPage, error)
	UpdateByID(
		ctx context.Context,
		programID, id string,
		actor *model.Actor,
		req model.UpdateDistributionRequest,
	) (*model.JobDistribution, error)
	UpdateSubmissionLimit(
		ctx context.Context,
		programID, rawToken string,
		q model.SubmissionLimitQuery,
		req model.SubmissionLimitRequest,
	) (*model.SubmissionLimitResult, error)
	Delete(ctx context.Context, programID, id string, actor *model.Actor) error
}

// DistributionHandlers provides HTTP handlers for job distributions.
type DistributionHandlers struct {
	Svc    DistributionService
	Logger *slog.Logger
}

// Create handles POST /program/{program_id}/job-distribution.
func (h *DistributionHandlers) Create(w http.ResponseWriter, r *http.Request) {
	programID, err := requirePath(r, "program_id")
	if err != nil {
		WriteAppError(w, err)
		return
	}
	var req model.CreateDistributionRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	actor, _ := ActorFromContext(r.Context())

	res, err := h.Svc.Create(r.Context(), programID, actor, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, res)
}

// List handles GET /program/{program_id}/job-distribution.
func (h *DistributionHandlers) List(w http.ResponseWriter, r *http.Request) {
	programID, err := requirePath(r, "program_id")
	if err != nil {
		WriteAppError(w, err)
		return
	}
	submissionLimit, err := optionalInt(r, "submission_limit")
	if err != nil {
		WriteAppError(w, err)
		return
	}
	limit, offset, err := ParsePageLimit(r)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	page, err := h.Svc.List(r.Context(), model.DistributionListOptions{
		ProgramID:       programID,
		Status:          optionalString(r, "status"),
		JobID:           optionalString(r, "job_id"),
		SubmissionLimit: submissionLimit,
		OptStatus:       optionalString(r, "opt_status"),
		DistributedBy:   optionalString(r, "distributed_by"),
		VendorID:        optionalString(r, "vendor_id"),
		Limit:           limit,
		Offset:          offset,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, page)
}

// Update handles PUT /program/{program_id}/job-distribution/{id}.
func (h *DistributionHandlers) Update(w http.ResponseWriter, r *http.Request) {
	programID, id, ok := h.programAndID(w, r)
	if !ok {
		return
	}
	var req model.UpdateDistributionRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	actor, _ := ActorFromContext(r.Context())

	updated, err := h.Svc.UpdateByID(r.Context(), programID, id, actor, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /program/{program_id}/job-distribution/{id}.
func (h *DistributionHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	programID, id, ok := h.programAndID(w, r)
	if !ok {
		return
	}
	actor, _ := ActorFromContext(r.Context())

	if err := h.Svc.Delete(r.Context(), programID, id, actor); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubmissionLimit handles PUT /program/{program_id}/submission-limit. The
// raw token is handed to the service, which verifies it again before any
// vendor-scoped change.
func (h *DistributionHandlers) SubmissionLimit(w http.ResponseWriter, r *http.Request) {
	programID, err := requirePath(r, "program_id")
	if err != nil {
		WriteAppError(w, err)
		return
	}
	var req model.SubmissionLimitRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	rawToken, _ := bearerToken(r)
	q := r.URL.Query()

	res, err := h.Svc.UpdateSubmissionLimit(r.Context(), programID, rawToken, model.SubmissionLimitQuery{
		DistributionID: q.Get("distribution_id"),
		JobID:          q.Get("job_id"),
		VendorID:       q.Get("vendor_id"),
	}, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

func (h *DistributionHandlers) programAndID(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	programID, err := requirePath(r, "program_id")
	if err != nil {
		WriteAppError(w, err)
		return "", "", false
	}
	id, err := requirePath(r, "id")
	if err != nil {
		WriteAppError(w, err)
		return "", "", false
	}
	return programID, id, true
}

func (h *DistributionHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	logServerError(r, h.Logger, err)
	WriteAppError(w, err)
}

// logServerError logs errors that surface as 5xx; client errors are only
// visible in the access log.
func logServerError(r *http.Request, logger *slog.Logger, err error) {
	if apperrors.HTTPStatus(err) < http.StatusInternalServerError || logger == nil {
		return
	}
	logger.ErrorContext(r.Context(), "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", RequestIDFromContext(r.Context()),
		"error", err,
	)
}
