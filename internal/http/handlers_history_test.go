package httpx

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/vms-jobdist/internal/domain/model"
	apperrors "github.com/target/vms-jobdist/internal/errors"
)

func TestHistoryList(t *testing.T) {
	var got model.HistoryListOptions
	svc := &fakeHistoryService{
		listFunc: func(_ context.Context, opts model.HistoryListOptions) ([]model.HistorySummary, error) {
			got = opts
			return []model.HistorySummary{{ID: "h-1", Revision: 0, IsShow: true}}, nil
		},
	}
	h := newTestRouter(t, &fakeDistributionService{}, svc)

	w := serve(h, authedRequest(http.MethodGet, "/program/p-1/job-history/j-1?event_type=Job%20Updated", ""))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "p-1", got.ProgramID)
	assert.Equal(t, "j-1", got.JobID)
	require.NotNil(t, got.EventType)
	assert.Equal(t, "Job Updated", *got.EventType)

	items, ok := decodeBody(t, w.Body.Bytes())["items"].([]any)
	require.True(t, ok)
	assert.Len(t, items, 1)
}

func TestHistoryRevision(t *testing.T) {
	var gotRevision int
	svc := &fakeHistoryService{
		revisionFunc: func(_ context.Context, _, _ string, revision int) (*model.HistoryRevision, error) {
			gotRevision = revision
			if revision == 9 {
				return nil, apperrors.NotFound("revision 9 not found")
			}
			return &model.HistoryRevision{HistorySummary: model.HistorySummary{Revision: revision}}, nil
		},
	}
	h := newTestRouter(t, &fakeDistributionService{}, svc)

	w := serve(h, authedRequest(http.MethodGet, "/program/p-1/job-history/j-1/revision/2", ""))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, gotRevision)

	w = serve(h, authedRequest(http.MethodGet, "/program/p-1/job-history/j-1/revision/9", ""))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(h, authedRequest(http.MethodGet, "/program/p-1/job-history/j-1/revision/latest", ""))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistoryCreate(t *testing.T) {
	var gotReq model.CreateHistoryRequest
	var gotActor *model.Actor
	svc := &fakeHistoryService{
		createFunc: func(_ context.Context, _ string, actor *model.Actor, req model.CreateHistoryRequest) (*model.JobHistory, error) {
			gotReq, gotActor = req, actor
			return &model.JobHistory{ID: "h-2", Revision: 1}, nil
		},
	}
	h := newTestRouter(t, &fakeDistributionService{}, svc)

	w := serve(h, authedRequest(http.MethodPost, "/program/p-1/job-history",
		`{"job_id":"j-1","event_type":"Job Updated","new_data":{"status":"OPEN"},"old_data":{"status":"DRAFT"}}`))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "j-1", gotReq.JobID)
	assert.Equal(t, map[string]any{"status": "DRAFT"}, gotReq.OldData)
	require.NotNil(t, gotActor)
	assert.Equal(t, "u-1", gotActor.Subject)
}
