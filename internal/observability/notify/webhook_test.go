package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookRetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "sweep", body["kind"])
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	hook := NewWebhook("test", srv.URL, nil, time.Second, 2)
	hook.Backoff = time.Millisecond
	require.NoError(t, hook.PostJSON(context.Background(), map[string]string{"kind": "sweep"}))
	assert.EqualValues(t, 3, calls.Load())
}

func TestWebhookReturnsLastError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid routing key", http.StatusBadRequest)
	}))
	defer srv.Close()

	hook := NewWebhook("pagerduty", srv.URL, nil, time.Second, 0)
	err := hook.PostJSON(context.Background(), map[string]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pagerduty 400 Bad Request: invalid routing key")
}

func TestWebhookStopsOnCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	hook := NewWebhook("slack", srv.URL, nil, time.Second, 5)
	hook.Backoff = time.Hour
	hook.Client.Transport = roundTripFunc(func(r *http.Request) (*http.Response, error) {
		cancel()
		return http.DefaultTransport.RoundTrip(r)
	})

	err := hook.PostJSON(ctx, map[string]string{})
	assert.ErrorIs(t, err, context.Canceled)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
