package notify

import (
	"context"
	"time"
)

// Severity constants recognised by downstream sinks.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
)

// SweepFailurePayload summarizes a distribution sweep that had row failures.
type SweepFailurePayload struct {
	Scanned    int
	Promoted   int
	Failed     int
	Errors     []string
	Severity   string
	OccurredAt time.Time
	Metadata   map[string]string
}

// Sink describes a destination capable of consuming sweep failure notifications.
type Sink interface {
	SendSweepFailure(ctx context.Context, payload SweepFailurePayload) error
}

// SinkFunc adapts a function to the Sink interface (useful for tests).
type SinkFunc func(ctx context.Context, payload SweepFailurePayload) error

// SendSweepFailure implements the Sink interface.
func (f SinkFunc) SendSweepFailure(ctx context.Context, payload SweepFailurePayload) error {
	if f == nil {
		return nil
	}
	return f(ctx, payload)
}
