package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/vms-jobdist/internal/domain/model"
	apperrors "github.com/target/vms-jobdist/internal/errors"
)

func decodeBody(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestCreateDistribution_Success(t *testing.T) {
	var gotProgram string
	var gotActor *model.Actor
	var gotReq model.CreateDistributionRequest
	svc := &fakeDistributionService{
		createFunc: func(_ context.Context, programID string, actor *model.Actor, req model.CreateDistributionRequest) (*model.CreateDistributionResult, error) {
			gotProgram, gotActor, gotReq = programID, actor, req
			return &model.CreateDistributionResult{JobID: req.JobID, JobStatus: model.JobStatusSourcing}, nil
		},
	}
	h := newTestRouter(t, svc, &fakeHistoryService{})

	w := serve(h, authedRequest(http.MethodPost, "/program/p-1/job-distribution",
		`{"job_id":"j-1","schedules":[{"vendor_id":["v-1"],"duration":0,"measure_unit":"hours"}]}`))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "p-1", gotProgram)
	require.NotNil(t, gotActor)
	assert.Equal(t, "u-1", gotActor.Subject)
	assert.Equal(t, testToken, gotActor.Token)
	assert.Equal(t, "j-1", gotReq.JobID)
	require.Len(t, gotReq.Schedules, 1)
	assert.Equal(t, []string{"v-1"}, gotReq.Schedules[0].VendorIDs)

	body := decodeBody(t, w.Body.Bytes())
	assert.Equal(t, "j-1", body["job_id"])
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestCreateDistribution_RejectsUnknownFields(t *testing.T) {
	h := newTestRouter(t, &fakeDistributionService{}, &fakeHistoryService{})

	w := serve(h, authedRequest(http.MethodPost, "/program/p-1/job-distribution", `{"job":"j-1"}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_json", decodeBody(t, w.Body.Bytes())["error"])
}

func TestDistributionRoutes_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", apperrors.NotFound("job j-1 not found"), http.StatusNotFound, "not_found"},
		{"validation", apperrors.Validation("cannot distribute rejected jobs"), http.StatusBadRequest, "validation"},
		{"unauthorized", apperrors.Unauthorized("bearer token required"), http.StatusUnauthorized, "unauthorized"},
		{"conflict", apperrors.Conflict("already distributed"), http.StatusConflict, "conflict"},
		{"internal", assert.AnError, http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeDistributionService{
				updateFunc: func(context.Context, string, string, *model.Actor, model.UpdateDistributionRequest) (*model.JobDistribution, error) {
					return nil, tt.err
				},
			}
			h := newTestRouter(t, svc, &fakeHistoryService{})

			w := serve(h, authedRequest(http.MethodPut, "/program/p-1/job-distribution/d-1", `{"status":"HOLD"}`))

			assert.Equal(t, tt.status, w.Code)
			body := decodeBody(t, w.Body.Bytes())
			assert.Equal(t, tt.code, body["error"])
			assert.Equal(t, tt.err.Error(), body["message"])
		})
	}
}

func TestListDistributions_ParsesFilters(t *testing.T) {
	var got model.DistributionListOptions
	svc := &fakeDistributionService{
		listFunc: func(_ context.Context, opts model.DistributionListOptions) (*model.DistributionListPage, error) {
			got = opts
			return &model.DistributionListPage{Items: []*model.JobDistribution{}, Page: 3, Limit: 10}, nil
		},
	}
	h := newTestRouter(t, svc, &fakeHistoryService{})

	w := serve(h, authedRequest(http.MethodGet,
		"/program/p-1/job-distribution?status=HOLD&job_id=j-1&submission_limit=2&vendor_id=v-1&page=3&limit=10", ""))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "p-1", got.ProgramID)
	require.NotNil(t, got.Status)
	assert.Equal(t, "HOLD", *got.Status)
	require.NotNil(t, got.JobID)
	assert.Equal(t, "j-1", *got.JobID)
	require.NotNil(t, got.SubmissionLimit)
	assert.Equal(t, 2, *got.SubmissionLimit)
	require.NotNil(t, got.VendorID)
	assert.Nil(t, got.OptStatus)
	assert.Nil(t, got.DistributedBy)
	assert.Equal(t, 10, got.Limit)
	assert.Equal(t, 20, got.Offset)
}

func TestListDistributions_BadSubmissionLimit(t *testing.T) {
	h := newTestRouter(t, &fakeDistributionService{}, &fakeHistoryService{})

	w := serve(h, authedRequest(http.MethodGet, "/program/p-1/job-distribution?submission_limit=many", ""))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListDistributions_RejectsOverflowingPage(t *testing.T) {
	called := false
	svc := &fakeDistributionService{
		listFunc: func(context.Context, model.DistributionListOptions) (*model.DistributionListPage, error) {
			called = true
			return &model.DistributionListPage{}, nil
		},
	}
	h := newTestRouter(t, svc, &fakeHistoryService{})

	w := serve(h, authedRequest(http.MethodGet, "/program/p-1/job-distribution?page=9223372036854775807&limit=200", ""))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation", decodeBody(t, w.Body.Bytes())["error"])
	assert.False(t, called)
}

func TestParsePageLimit(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
		wantErr    bool
	}{
		{name: "defaults", query: "", wantLimit: defaultPageLimit, wantOffset: 0},
		{name: "clamped limit", query: "limit=5000&page=2", wantLimit: maxPageLimit, wantOffset: maxPageLimit},
		{name: "page below one", query: "page=-4&limit=10", wantLimit: 10, wantOffset: 0},
		{name: "largest page", query: "limit=1&page=2147483648", wantLimit: 1, wantOffset: maxPageOffset},
		{name: "overflowing page", query: "limit=1&page=2147483649", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := http.NewRequest(http.MethodGet, "/x?"+tt.query, nil)
			require.NoError(t, err)

			limit, offset, err := ParsePageLimit(r)
			if tt.wantErr {
				assert.True(t, apperrors.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wantOffset, offset)
		})
	}
}

func TestDeleteDistribution(t *testing.T) {
	var gotID string
	svc := &fakeDistributionService{
		deleteFunc: func(_ context.Context, _, id string, _ *model.Actor) error {
			gotID = id
			return nil
		},
	}
	h := newTestRouter(t, svc, &fakeHistoryService{})

	w := serve(h, authedRequest(http.MethodDelete, "/program/p-1/job-distribution/d-9", ""))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "d-9", gotID)
}

func TestSubmissionLimit_PassesTokenAndQuery(t *testing.T) {
	var gotToken string
	var gotQuery model.SubmissionLimitQuery
	var gotReq model.SubmissionLimitRequest
	svc := &fakeDistributionService{
		limitFunc: func(_ context.Context, _, rawToken string, q model.SubmissionLimitQuery, req model.SubmissionLimitRequest) (*model.SubmissionLimitResult, error) {
			gotToken, gotQuery, gotReq = rawToken, q, req
			return &model.SubmissionLimitResult{Mode: "global", Updated: 4}, nil
		},
	}
	h := newTestRouter(t, svc, &fakeHistoryService{})

	w := serve(h, authedRequest(http.MethodPut, "/program/p-1/submission-limit?job_id=j-1", `{"submission_limit":5}`))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testToken, gotToken)
	assert.Equal(t, model.SubmissionLimitQuery{JobID: "j-1"}, gotQuery)
	require.NotNil(t, gotReq.SubmissionLimit)
	assert.Equal(t, 5, *gotReq.SubmissionLimit)
	assert.InDelta(t, 4, decodeBody(t, w.Body.Bytes())["updated"], 0)
}

func TestDistributionRoutes_RequireBearer(t *testing.T) {
	h := newTestRouter(t, &fakeDistributionService{}, &fakeHistoryService{})

	r := authedRequest(http.MethodGet, "/program/p-1/job-distribution", "")
	r.Header.Del("Authorization")
	assert.Equal(t, http.StatusUnauthorized, serve(h, r).Code)

	r = authedRequest(http.MethodGet, "/program/p-1/job-distribution", "")
	r.Header.Set("Authorization", "Bearer other")
	assert.Equal(t, http.StatusUnauthorized, serve(h, r).Code)

	r = authedRequest(http.MethodGet, "/program/p-1/job-distribution", "")
	r.Header.Set("Authorization", "Basic "+testToken)
	assert.Equal(t, http.StatusUnauthorized, serve(h, r).Code)
}
