package httpx

import (
	"log/slog"
	"net/http"

	"github.com/target/vms-jobdist/internal/core"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Distributions DistributionService
	History       HistoryService
	Verifier      core.TokenVerifier
	// HealthChecks are run by GET /healthz keyed by dependency name.
	HealthChecks map[string]HealthCheck
	// CORSAllowedOrigins enables CORS for the listed origins when non-empty.
	CORSAllowedOrigins []string
	Logger             *slog.Logger // Optional
}

// NewRouter creates the HTTP handler with every route and middleware attached.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "http")

	mux := http.NewServeMux()
	auth := RequireBearer(services.Verifier, logger)

	dist := &DistributionHandlers{Svc: services.Distributions, Logger: logger}
	registerDistributionRoutes(mux, dist, auth)

	hist := &HistoryHandlers{Svc: services.History, Logger: logger}
	registerHistoryRoutes(mux, hist, auth)

	health := &HealthHandlers{Checks: services.HealthChecks, Logger: logger}
	mux.HandleFunc("GET /healthz", health.Health)
	mux.HandleFunc("HEAD /healthz", health.Health)

	return chain(mux,
		Recover(logger),
		RequestID(),
		Logging(logger),
		CORS(services.CORSAllowedOrigins),
	)
}

func registerDistributionRoutes(mux *http.ServeMux, h *DistributionHandlers, auth func(http.Handler) http.Handler) {
	mux.Handle("POST /program/{program_id}/job-distribution", auth(http.HandlerFunc(h.Create)))
	mux.Handle("GET /program/{program_id}/job-distribution", auth(http.HandlerFunc(h.List)))
	mux.Handle("PUT /program/{program_id}/job-distribution/{id}", auth(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /program/{program_id}/job-distribution/{id}", auth(http.HandlerFunc(h.Delete)))
	mux.Handle("PUT /program/{program_id}/submission-limit", auth(http.HandlerFunc(h.SubmissionLimit)))
}

func registerHistoryRoutes(mux *http.ServeMux, h *HistoryHandlers, auth func(http.Handler) http.Handler) {
	mux.Handle("GET /program/{program_id}/job-history/{job_id}", auth(http.HandlerFunc(h.List)))
	mux.Handle(
		"GET /program/{program_id}/job-history/{job_id}/revision/{revision}",
		auth(http.HandlerFunc(h.Revision)),
	)
	mux.Handle("POST /program/{program_id}/job-history", auth(http.HandlerFunc(h.Create)))
}

// chain applies middleware so the first one listed is outermost.
func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
