// Package notification posts distribution events to the external
// notification service, which resolves recipients and delivers.
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/target/vms-jobdist/internal/domain/model"
)

// DispatchPath is the endpoint, relative to the base URL, that accepts events.
const DispatchPath = "/notifications/dispatch"

// maxErrorBody caps how much of a failed response is kept in the error.
const maxErrorBody = 1024

// Config configures the HTTP client.
type Config struct {
	BaseURL string
	// Token is sent as a bearer token when set.
	Token   string
	Timeout time.Duration
	// RatePerSecond throttles calls; zero disables throttling.
	RatePerSecond float64
	Client        *http.Client // Optional
}

// Client implements core.NotificationClient. It makes exactly one attempt
// per payload; delivery retries belong to the notification service.
type Client struct {
	endpoint string
	token    string
	limiter  *rate.Limiter
	client   *http.Client
}

// NewClient builds a notification client.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("notification base url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		burst := max(int(cfg.RatePerSecond), 1)
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	return &Client{
		endpoint: base + DispatchPath,
		token:    cfg.Token,
		limiter:  limiter,
		client:   hc,
	}, nil
}

// Send posts payload once. A non-2xx response is returned as an error.
func (c *Client) Send(ctx context.Context, payload model.NotificationPayload) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("notification rate limit: %w", err)
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode notification payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("notification request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("notification service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
