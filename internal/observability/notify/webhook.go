package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxErrorBody caps how much of a failed response is copied into the error.
const maxErrorBody = 4 << 10

// Webhook posts JSON documents to one endpoint, retrying failed attempts with
// a linear backoff.
type Webhook struct {
	// Name prefixes returned errors, e.g. "slack".
	Name       string
	URL        string
	Client     *http.Client
	RetryLimit int
	Backoff    time.Duration
}

// NewWebhook fills client and backoff defaults.
func NewWebhook(name, url string, hc *http.Client, timeout time.Duration, retries int) Webhook {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	return Webhook{
		Name:       name,
		URL:        url,
		Client:     hc,
		RetryLimit: max(retries, 0),
		Backoff:    200 * time.Millisecond,
	}
}

// PostJSON encodes v and posts it until an attempt gets a 2xx response, the
// retry budget is spent, or ctx ends.
func (w Webhook) PostJSON(ctx context.Context, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", w.Name, err)
	}

	var lastErr error
	for attempt := 0; attempt <= w.RetryLimit; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(time.Duration(attempt) * w.Backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		if lastErr = w.post(ctx, body); lastErr == nil {
			return nil
		}
	}
	return lastErr
}

func (w Webhook) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", w.Name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", w.Name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	msg, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("read %s error response: %w", w.Name, err)
	}
	return fmt.Errorf("%s %s: %s", w.Name, resp.Status, strings.TrimSpace(string(msg)))
}
