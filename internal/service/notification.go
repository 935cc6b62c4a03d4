package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/target/vms-jobdist/internal/core"
	"github.com/target/vms-jobdist/internal/domain/distribution"
	"github.com/target/vms-jobdist/internal/domain/model"
	"github.com/target/vms-jobdist/internal/observability/metrics"
	"github.com/target/vms-jobdist/internal/observability/statsd"
)

// JMESPathEvaluator abstracts JMESPath operations for testability.
type JMESPathEvaluator interface {
	Validate(expr string) error
	Evaluate(expr string, data any) (any, error)
}

// jmespathLibEvaluator implements JMESPathEvaluator using go-jmespath.
type jmespathLibEvaluator struct{}

func (jmespathLibEvaluator) Validate(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return nil
	}
	_, err := jmespath.Compile(expr)
	return err
}

func (jmespathLibEvaluator) Evaluate(expr string, data any) (any, error) {
	return jmespath.Search(expr, data)
}

// NotificationDispatcherOptions bundles dependencies for NewNotificationDispatcher.
type NotificationDispatcherOptions struct {
	Client     core.NotificationClient
	Users      core.UserDirectory
	Vendors    core.VendorRepository
	Jobs       core.JobRepository
	Background core.BackgroundQueue
	// PayloadExpr optionally reshapes the job details with a JMESPath
	// expression before they are posted.
	PayloadExpr string
	Evaluator   JMESPathEvaluator
	Metrics     statsd.Sink
	Logger      *slog.Logger
}

// NotificationDispatcher turns business events into notification service
// calls. Events are gated on the actor's user type; delivery and retries are
// the notification service's concern.
type NotificationDispatcher struct {
	client      core.NotificationClient
	users       core.UserDirectory
	vendors     core.VendorRepository
	jobs        core.JobRepository
	background  core.BackgroundQueue
	payloadExpr string
	jems        JMESPathEvaluator
	metrics     statsd.Sink
	logger      *slog.Logger
}

// NewNotificationDispatcher creates a NotificationDispatcher. An invalid
// payload expression is rejected.
func NewNotificationDispatcher(opts NotificationDispatcherOptions) (*NotificationDispatcher, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default().With("component", "notification_dispatcher")
	}
	jems := opts.Evaluator
	if jems == nil {
		jems = jmespathLibEvaluator{}
	}
	expr := strings.TrimSpace(opts.PayloadExpr)
	if err := jems.Validate(expr); err != nil {
		return nil, fmt.Errorf("invalid notification payload expression: %w", err)
	}
	return &NotificationDispatcher{
		client:      opts.Client,
		users:       opts.Users,
		vendors:     opts.Vendors,
		jobs:        opts.Jobs,
		background:  opts.Background,
		payloadExpr: expr,
		jems:        jems,
		metrics:     opts.Metrics,
		logger:      logger,
	}, nil
}

// Notify queues the event for dispatch and returns immediately. Without a
// background queue the event is dropped.
func (d *NotificationDispatcher) Notify(ctx context.Context, event model.NotificationEvent) {
	if d.background == nil {
		d.logger.WarnContext(ctx, "notification dropped, no background queue", "code", event.Code)
		return
	}
	accepted := d.background.Submit("notify:"+strings.ToLower(string(event.Code)), func(ctx context.Context) error {
		_, err := d.Dispatch(ctx, event)
		return err
	})
	if !accepted {
		d.count(event.Code, metrics.ResultDropped)
		d.logger.WarnContext(ctx, "notification dropped, queue full",
			"code", event.Code,
			"job_id", event.JobID,
		)
	}
}

// Dispatch resolves and sends one event. It reports false without error
// when the actor may not raise the event or no vendor is affected.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, event model.NotificationEvent) (bool, error) {
	userType, err := d.resolveUserType(ctx, event.Actor)
	if err != nil {
		d.count(event.Code, metrics.ResultError)
		return false, fmt.Errorf("resolve actor type: %w", err)
	}
	if !distribution.CanNotify(event.Code, userType) {
		d.count(event.Code, metrics.ResultNoop)
		d.logger.DebugContext(ctx, "notification not permitted for actor",
			"code", event.Code,
			"user_type", userType,
			"job_id", event.JobID,
		)
		return false, nil
	}

	vendorIDs := event.VendorIDs
	if len(vendorIDs) == 0 {
		vendorIDs, err = d.vendors.DistributedVendorIDs(ctx, event.ProgramID, event.JobID)
		if err != nil {
			d.count(event.Code, metrics.ResultError)
			return false, fmt.Errorf("resolve distributed vendors: %w", err)
		}
	}
	if len(vendorIDs) == 0 {
		d.count(event.Code, metrics.ResultNoop)
		return false, nil
	}

	details, err := d.jobDetails(ctx, event.ProgramID, event.JobID)
	if err != nil {
		d.count(event.Code, metrics.ResultError)
		return false, err
	}

	payload := model.NotificationPayload{
		EventCode:  event.Code,
		ProgramID:  event.ProgramID,
		JobID:      event.JobID,
		VendorIDs:  vendorIDs,
		ActorID:    event.Actor.Subject,
		ActorType:  userType,
		JobDetails: details,
	}
	if err := d.client.Send(ctx, payload); err != nil {
		d.count(event.Code, metrics.ResultError)
		d.logger.WarnContext(ctx, "notification delivery failed",
			"code", event.Code,
			"job_id", event.JobID,
			"error", err,
		)
		return false, fmt.Errorf("send notification: %w", err)
	}
	d.count(event.Code, metrics.ResultSuccess)
	return true, nil
}

// resolveUserType prefers the token's claim and falls back to the user
// directory.
func (d *NotificationDispatcher) resolveUserType(ctx context.Context, actor model.Actor) (model.UserType, error) {
	if actor.UserType != "" {
		return actor.UserType, nil
	}
	if actor.Subject == "" {
		return "", errors.New("event has no actor")
	}
	return d.users.UserType(ctx, actor.Subject)
}

func (d *NotificationDispatcher) jobDetails(ctx context.Context, programID, jobID string) (map[string]any, error) {
	job, err := d.jobs.NotificationDetails(ctx, programID, jobID)
	if err != nil {
		return nil, fmt.Errorf("load job details: %w", err)
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("encode job details: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode job details: %w", err)
	}
	if d.payloadExpr == "" {
		return doc, nil
	}

	projected, err := d.jems.Evaluate(d.payloadExpr, doc)
	if err != nil {
		return nil, fmt.Errorf("project job details: %w", err)
	}
	if m, ok := projected.(map[string]any); ok {
		return m, nil
	}
	return map[string]any{"value": projected}, nil
}

func (d *NotificationDispatcher) count(code model.NotificationCode, result string) {
	if d.metrics == nil {
		return
	}
	d.metrics.Count("notification.dispatch", 1, map[string]string{
		"code":   string(code),
		"result": result,
	})
}
