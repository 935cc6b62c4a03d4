package pagerduty

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/vms-jobdist/internal/observability/notify"
)

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error when routing key missing")
	}
}

func TestBuildEventDefaults(t *testing.T) {
	client, err := NewClient(Config{RoutingKey: "key", Timeout: time.Second})
	require.NoError(t, err)

	event := client.buildEvent(notify.SweepFailurePayload{
		Scanned:    12,
		Failed:     2,
		Errors:     []string{"distribution d-1: load job: boom"},
		OccurredAt: time.Date(2025, 3, 1, 10, 42, 0, 0, time.UTC),
	})

	section, ok := event["payload"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, notify.SeverityCritical, section["severity"])
	assert.Equal(t, "vms-jobdist", section["source"])
	assert.Equal(t, "distribution-sweep", section["component"])
	assert.Contains(t, section["summary"], "2 of 12")

	custom, ok := section["custom_details"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"scanned", "promoted", "failed", "errors"} {
		assert.Contains(t, custom, key)
	}
	assert.Equal(t, "distribution-sweep:2025-03-01T10:00:00Z", event["dedup_key"])
}

func TestSendSweepFailure(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client, err := NewClient(Config{RoutingKey: "key", Endpoint: srv.URL})
	require.NoError(t, err)

	require.NoError(t, client.SendSweepFailure(context.Background(), notify.SweepFailurePayload{Scanned: 1, Failed: 1}))
	assert.Equal(t, "key", got["routing_key"])
	assert.Equal(t, "trigger", got["event_action"])
}

func TestSendSweepFailure_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid routing key", http.StatusBadRequest)
	}))
	defer srv.Close()

	client, err := NewClient(Config{RoutingKey: "key", Endpoint: srv.URL})
	require.NoError(t, err)

	err = client.SendSweepFailure(context.Background(), notify.SweepFailurePayload{Failed: 1})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "invalid routing key"))
}
