package service

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/mock/gomock"

	"github.com/target/vms-jobdist/internal/domain/model"
	"github.com/target/vms-jobdist/internal/mocks"
)

const testProgramID = "program-1"

func boolPtr(b bool) *bool       { return &b }
func stringPtr(s string) *string { return &s }
func intPtr(i int) *int          { return &i }

// expectTx runs the transaction callback inline with a nil tx.
func expectTx(tx *mocks.MockTxRunner) *gomock.Call {
	return tx.EXPECT().
		WithinTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return fn(ctx, nil)
		})
}

// inlineQueue runs submitted tasks synchronously and records their names
// and errors.
type inlineQueue struct {
	mu     sync.Mutex
	reject bool
	names  []string
	errs   []error
}

func (q *inlineQueue) Submit(name string, task func(ctx context.Context) error) bool {
	if q.reject {
		return false
	}
	err := task(context.Background())
	q.mu.Lock()
	q.names = append(q.names, name)
	q.errs = append(q.errs, err)
	q.mu.Unlock()
	return true
}

func (q *inlineQueue) submitted() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.names...)
}

// recordingNotifier captures events handed to the dispatch adapter.
type recordingNotifier struct {
	mu     sync.Mutex
	events []model.NotificationEvent
}

func (n *recordingNotifier) Notify(_ context.Context, event model.NotificationEvent) {
	n.mu.Lock()
	n.events = append(n.events, event)
	n.mu.Unlock()
}

func (n *recordingNotifier) codes() []model.NotificationCode {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]model.NotificationCode, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Code)
	}
	return out
}

type countedMetric struct {
	name string
	tags map[string]string
}

// recordingSink captures counters; gauges and timings are ignored.
type recordingSink struct {
	mu     sync.Mutex
	counts []countedMetric
}

func (s *recordingSink) Count(name string, _ int64, tags map[string]string) {
	s.mu.Lock()
	s.counts = append(s.counts, countedMetric{name: name, tags: tags})
	s.mu.Unlock()
}

func (s *recordingSink) Gauge(string, float64, map[string]string) {}

func (s *recordingSink) Timing(string, time.Duration, map[string]string) {}

// results returns the result tag of every counter with the given name.
func (s *recordingSink) results(name string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, c := range s.counts {
		if c.name == name {
			out = append(out, c.tags["result"])
		}
	}
	return out
}
