// Package failurenotifier fans distribution sweep failures out to the
// configured alert sinks.
package failurenotifier

import (
	"context"
	"log/slog"
	"sync"

	"github.com/target/vms-jobdist/internal/observability/notify"
)

// SinkRegistration pairs a sink implementation with a human-readable name for logging.
type SinkRegistration struct {
	Name string
	Sink notify.Sink
}

// Options configures the failure notifier service.
type Options struct {
	Logger *slog.Logger
	Sinks  []SinkRegistration
	// Metadata is attached to every payload unless the payload sets the key.
	Metadata map[string]string
}

// Service dispatches failure events to all registered sinks.
type Service struct {
	logger   *slog.Logger
	sinks    []SinkRegistration
	metadata map[string]string
}

// NewService constructs a failure notifier.
func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default().With("component", "failure_notifier")
	}

	var sinks []SinkRegistration
	for _, entry := range opts.Sinks {
		if entry.Sink == nil {
			continue
		}
		name := entry.Name
		if name == "" {
			name = "sink"
		}
		sinks = append(sinks, SinkRegistration{
			Name: name,
			Sink: entry.Sink,
		})
	}

	return &Service{
		logger:   logger,
		sinks:    sinks,
		metadata: opts.Metadata,
	}
}

// NotifySweepFailure fans the sweep summary out to all sinks. A sweep in
// which every row failed is critical; partial failures are warnings.
func (s *Service) NotifySweepFailure(ctx context.Context, payload notify.SweepFailurePayload) {
	if len(s.sinks) == 0 || payload.Failed == 0 {
		return
	}

	if payload.Severity == "" {
		payload.Severity = notify.SeverityWarning
		if payload.Promoted == 0 && payload.Failed >= payload.Scanned {
			payload.Severity = notify.SeverityCritical
		}
	}
	payload.Metadata = s.withMetadata(payload.Metadata)

	var wg sync.WaitGroup
	for _, entry := range s.sinks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := entry.Sink.SendSweepFailure(ctx, payload); err != nil {
				s.logger.Error("failure notifier delivery error",
					"sink", entry.Name,
					"failed", payload.Failed,
					"error", err,
				)
			}
		}()
	}
	wg.Wait()
}

func (s *Service) withMetadata(in map[string]string) map[string]string {
	if len(s.metadata) == 0 {
		return in
	}
	out := make(map[string]string, len(s.metadata)+len(in))
	for k, v := range s.metadata {
		out[k] = v
	}
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Enabled reports whether the notifier has any active sinks.
func (s *Service) Enabled() bool {
	return len(s.sinks) > 0
}
