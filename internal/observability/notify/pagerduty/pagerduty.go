// Package pagerduty triggers Events API v2 incidents for failing sweeps.
package pagerduty

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/target/vms-jobdist/internal/observability/notify"
)

// APIEndpoint is the Events API v2 ingest URL.
const APIEndpoint = "https://events.pagerduty.com/v2/enqueue"

// Config describes the routing key and event defaults.
type Config struct {
	RoutingKey string
	// Endpoint overrides APIEndpoint.
	Endpoint   string
	Source     string
	Component  string
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
}

// Client sends trigger events.
type Client struct {
	hook       notify.Webhook
	routingKey string
	source     string
	component  string
}

// NewClient requires a routing key.
func NewClient(cfg Config) (*Client, error) {
	key := strings.TrimSpace(cfg.RoutingKey)
	if key == "" {
		return nil, errors.New("pagerduty routing key is required")
	}
	endpoint := or(cfg.Endpoint, APIEndpoint)
	return &Client{
		hook:       notify.NewWebhook("pagerduty", endpoint, cfg.Client, cfg.Timeout, cfg.RetryLimit),
		routingKey: key,
		source:     or(cfg.Source, "vms-jobdist"),
		component:  or(cfg.Component, "distribution-sweep"),
	}, nil
}

// SendSweepFailure submits one trigger event.
func (c *Client) SendSweepFailure(ctx context.Context, payload notify.SweepFailurePayload) error {
	return c.hook.PostJSON(ctx, c.buildEvent(payload))
}

func (c *Client) buildEvent(payload notify.SweepFailurePayload) map[string]any {
	at := payload.OccurredAt.UTC()
	if payload.OccurredAt.IsZero() {
		at = time.Now().UTC()
	}

	details := make(map[string]any, len(payload.Metadata)+4)
	for k, v := range payload.Metadata {
		details[k] = v
	}
	details["scanned"] = payload.Scanned
	details["promoted"] = payload.Promoted
	details["failed"] = payload.Failed
	details["errors"] = payload.Errors

	return map[string]any{
		"routing_key":  c.routingKey,
		"event_action": "trigger",
		// One open incident per hour of failing sweeps.
		"dedup_key": "distribution-sweep:" + at.Truncate(time.Hour).Format(time.RFC3339),
		"payload": map[string]any{
			"summary": fmt.Sprintf(
				"Distribution sweep failed for %d of %d scheduled distributions",
				payload.Failed, payload.Scanned,
			),
			"severity":       or(strings.ToLower(payload.Severity), notify.SeverityCritical),
			"source":         c.source,
			"component":      c.component,
			"timestamp":      at.Format(time.RFC3339),
			"custom_details": details,
		},
	}
}

func or(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
