// Package slack posts sweep failure alerts to a Slack incoming webhook.
package slack

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/target/vms-jobdist/internal/observability/notify"
)

const defaultMaxErrorLines = 10

// Config describes the webhook target.
type Config struct {
	WebhookURL string
	Channel    string
	Username   string
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
	// MaxErrorLines caps the per-row errors listed in one message.
	MaxErrorLines int
}

// Client sends sweep failure alerts to Slack.
type Client struct {
	hook          notify.Webhook
	channel       string
	username      string
	maxErrorLines int
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config) (*Client, error) {
	url := strings.TrimSpace(cfg.WebhookURL)
	if url == "" {
		return nil, errors.New("slack webhook url is required")
	}
	username := strings.TrimSpace(cfg.Username)
	if username == "" {
		username = "vms-jobdist"
	}
	maxLines := cfg.MaxErrorLines
	if maxLines <= 0 {
		maxLines = defaultMaxErrorLines
	}
	return &Client{
		hook:          notify.NewWebhook("slack", url, cfg.Client, cfg.Timeout, cfg.RetryLimit),
		channel:       strings.TrimSpace(cfg.Channel),
		username:      username,
		maxErrorLines: maxLines,
	}, nil
}

// SendSweepFailure posts one formatted message.
func (c *Client) SendSweepFailure(ctx context.Context, payload notify.SweepFailurePayload) error {
	return c.hook.PostJSON(ctx, c.formatMessage(payload))
}

func (c *Client) formatMessage(payload notify.SweepFailurePayload) map[string]any {
	severity := payload.Severity
	if severity == "" {
		severity = notify.SeverityCritical
	}
	at := payload.OccurredAt
	if at.IsZero() {
		at = time.Now()
	}

	var b strings.Builder
	b.WriteString("*Distribution sweep failure alert*\n")
	fmt.Fprintf(&b, "• Severity: %s\n", severity)
	fmt.Fprintf(&b, "• Scanned: %d\n• Promoted: %d\n• Failed: %d\n", payload.Scanned, payload.Promoted, payload.Failed)

	if len(payload.Errors) > 0 {
		b.WriteString("• Errors:\n")
		for i, e := range payload.Errors {
			if i == c.maxErrorLines {
				fmt.Fprintf(&b, "    • … and %d more\n", len(payload.Errors)-i)
				break
			}
			fmt.Fprintf(&b, "    • %s\n", escape(e))
		}
	}
	if len(payload.Metadata) > 0 {
		b.WriteString("• Metadata:\n")
		for _, k := range slices.Sorted(maps.Keys(payload.Metadata)) {
			fmt.Fprintf(&b, "    • %s: %s\n", k, escape(payload.Metadata[k]))
		}
	}
	b.WriteString("• Timestamp: ")
	b.WriteString(at.UTC().Format(time.RFC3339))

	msg := map[string]any{
		"text":     b.String(),
		"username": c.username,
	}
	if c.channel != "" {
		msg["channel"] = c.channel
	}
	return msg
}

var slackEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escape(s string) string {
	return slackEscaper.Replace(s)
}
