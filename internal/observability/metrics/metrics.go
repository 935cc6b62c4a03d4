package metrics

import (
	"time"

	obserrors "github.com/target/vms-jobdist/internal/observability/errors"
	"github.com/target/vms-jobdist/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
	ResultDropped = "dropped"
)

// SweepMetric captures one distribution sweep for metric emission.
type SweepMetric struct {
	Scanned  int
	Promoted int
	Failed   int
	Duration time.Duration
	Err      error
}

// EmitSweep emits standardised distribution sweep metrics.
func EmitSweep(sink statsd.Sink, in SweepMetric) {
	if sink == nil {
		return
	}

	result := ResultSuccess
	switch {
	case in.Err != nil:
		result = ResultError
	case in.Scanned == 0:
		result = ResultNoop
	}
	tags := map[string]string{"result": result}
	if in.Err != nil {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("distribution.sweep", 1, tags)
	sink.Gauge("distribution.sweep.scanned", float64(in.Scanned), nil)
	if in.Promoted > 0 {
		sink.Count("distribution.sweep.promoted", int64(in.Promoted), nil)
	}
	if in.Failed > 0 {
		sink.Count("distribution.sweep.failed", int64(in.Failed), nil)
	}
	if in.Duration > 0 {
		sink.Timing("distribution.sweep.duration", in.Duration, CloneTags(tags))
	}
}

// TaskMetric captures one background task outcome.
type TaskMetric struct {
	Task     string
	Result   string
	Duration time.Duration
	Err      error
}

// EmitTask emits background task metrics.
func EmitTask(sink statsd.Sink, in TaskMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"task":   in.Task,
		"result": in.Result,
	}
	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}
	sink.Count("taskqueue.task", 1, tags)
	if in.Duration > 0 {
		sink.Timing("taskqueue.task.duration", in.Duration, CloneTags(tags))
	}
}

// CloneTags creates a shallow copy of a tag map, filtering out empty keys.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		if k == "" {
			continue
		}
		out[k] = v
	}
	return out
}
