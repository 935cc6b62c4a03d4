package httpx

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/target/vms-jobdist/internal/domain/model"
	"github.com/target/vms-jobdist/internal/mocks"
)

const testToken = "good-token"

// fakeDistributionService is a test double for DistributionService.
type fakeDistributionService struct {
	createFunc func(ctx context.Context, programID string, actor *model.Actor, req model.CreateDistributionRequest) (*model.CreateDistributionResult, error)
	listFunc   func(ctx context.Context, opts model.DistributionListOptions) (*model.DistributionListPage, error)
	updateFunc func(ctx context.Context, programID, id string, actor *model.Actor, req model.UpdateDistributionRequest) (*model.JobDistribution, error)
	limitFunc  func(ctx context.Context, programID, rawToken string, q model.SubmissionLimitQuery, req model.SubmissionLimitRequest) (*model.SubmissionLimitResult, error)
	deleteFunc func(ctx context.Context, programID, id string, actor *model.Actor) error
}

var errNotImplemented = errors.New("not implemented")

func (f *fakeDistributionService) Create(
	ctx context.Context,
	programID string,
	actor *model.Actor,
	req model.CreateDistributionRequest,
) (*model.CreateDistributionResult, error) {
	if f.createFunc == nil {
		return nil, errNotImplemented
	}
	return f.createFunc(ctx, programID, actor, req)
}

func (f *fakeDistributionService) List(
	ctx context.Context,
	opts model.DistributionListOptions,
) (*model.DistributionListPage, error) {
	if f.listFunc == nil {
		return nil, errNotImplemented
	}
	return f.listFunc(ctx, opts)
}

func (f *fakeDistributionService) UpdateByID(
	ctx context.Context,
	programID, id string,
	actor *model.Actor,
	req model.UpdateDistributionRequest,
) (*model.JobDistribution, error) {
	if f.updateFunc == nil {
		return nil, errNotImplemented
	}
	return f.updateFunc(ctx, programID, id, actor, req)
}

func (f *fakeDistributionService) UpdateSubmissionLimit(
	ctx context.Context,
	programID, rawToken string,
	q model.SubmissionLimitQuery,
	req model.SubmissionLimitRequest,
) (*model.SubmissionLimitResult, error) {
	if f.limitFunc == nil {
		return nil, errNotImplemented
	}
	return f.limitFunc(ctx, programID, rawToken, q, req)
}

func (f *fakeDistributionService) Delete(ctx context.Context, programID, id string, actor *model.Actor) error {
	if f.deleteFunc == nil {
		return errNotImplemented
	}
	return f.deleteFunc(ctx, programID, id, actor)
}

// fakeHistoryService is a test double for HistoryService.
type fakeHistoryService struct {
	listFunc     func(ctx context.Context, opts model.HistoryListOptions) ([]model.HistorySummary, error)
	revisionFunc func(ctx context.Context, programID, jobID string, revision int) (*model.HistoryRevision, error)
	createFunc   func(ctx context.Context, programID string, actor *model.Actor, req model.CreateHistoryRequest) (*model.JobHistory, error)
}

func (f *fakeHistoryService) List(ctx context.Context, opts model.HistoryListOptions) ([]model.HistorySummary, error) {
	if f.listFunc == nil {
		return nil, errNotImplemented
	}
	return f.listFunc(ctx, opts)
}

func (f *fakeHistoryService) GetRevision(
	ctx context.Context,
	programID, jobID string,
	revision int,
) (*model.HistoryRevision, error) {
	if f.revisionFunc == nil {
		return nil, errNotImplemented
	}
	return f.revisionFunc(ctx, programID, jobID, revision)
}

func (f *fakeHistoryService) Create(
	ctx context.Context,
	programID string,
	actor *model.Actor,
	req model.CreateHistoryRequest,
) (*model.JobHistory, error) {
	if f.createFunc == nil {
		return nil, errNotImplemented
	}
	return f.createFunc(ctx, programID, actor, req)
}

func testActor() *model.Actor {
	return &model.Actor{Subject: "u-1", UserType: model.UserTypeMSP, PreferredUsername: "ada"}
}

// newTestRouter builds the full router with a verifier that accepts
// testToken only.
func newTestRouter(t *testing.T, dist DistributionService, hist HistoryService) http.Handler {
	t.Helper()
	ctrl := gomock.NewController(t)
	verifier := mocks.NewMockTokenVerifier(ctrl)
	verifier.EXPECT().Verify(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, raw string) (*model.Actor, error) {
			if raw != testToken {
				return nil, errors.New("bad token")
			}
			return testActor(), nil
		},
	).AnyTimes()

	return NewRouter(RouterServices{
		Distributions: dist,
		History:       hist,
		Verifier:      verifier,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func authedRequest(method, target, body string) *http.Request {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, target, rdr)
	r.Header.Set("Authorization", "Bearer "+testToken)
	return r
}

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}
