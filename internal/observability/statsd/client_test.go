package statsd

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricName(t *testing.T) {
	tests := map[string]string{
		" sweep/tick ":         "sweep_tick",
		"distribution..sweep":  "distribution.sweep",
		".taskqueue.dropped.":  "taskqueue.dropped",
		"notification  sent":   "notification__sent",
		"":                     "",
	}
	for input, want := range tests {
		assert.Equal(t, want, metricName(input), "input %q", input)
	}
}

func TestFormatLineMergesAndSortsTags(t *testing.T) {
	got := formatLine("jobdist.distribution.sweep", "1", "c",
		map[string]string{"env": "prod", " service ": " jobdist "},
		map[string]string{"result": " success ", "": "ignored", "env": "stage"},
	)
	assert.Equal(t, "jobdist.distribution.sweep:1|c|#env:stage,result:success,service:jobdist", got)

	assert.Equal(t, "q:3|g", formatLine("q", "3", "g", nil, nil))
	assert.Empty(t, formatLine("", "3", "g", nil, nil))
}

func TestClientWritesLines(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()

	client, err := NewClient(Config{
		Enabled:    true,
		Address:    pc.LocalAddr().String(),
		Prefix:     ".jobdist.",
		GlobalTags: map[string]string{"env": "test"},
	})
	require.NoError(t, err)
	require.True(t, client.Enabled())

	read := func() string {
		buf := make([]byte, 512)
		require.NoError(t, pc.SetReadDeadline(time.Now().Add(2*time.Second)))
		n, _, err := pc.ReadFrom(buf)
		require.NoError(t, err)
		return string(buf[:n])
	}

	client.Count("distribution.sweep.promoted", 7, map[string]string{"result": "success"})
	assert.Equal(t, "jobdist.distribution.sweep.promoted:7|c|#env:test,result:success", read())

	client.Gauge("taskqueue.depth", 2.5, nil)
	assert.Equal(t, "jobdist.taskqueue.depth:2.5|g|#env:test", read())

	client.Timing("distribution.sweep.duration", 1500*time.Microsecond, nil)
	assert.Equal(t, "jobdist.distribution.sweep.duration:1.5|ms|#env:test", read())

	require.NoError(t, client.Close())
	assert.False(t, client.Enabled())
	require.NoError(t, client.Close())
}

func TestDisabledAndNilClientsDrop(t *testing.T) {
	client, err := NewClient(Config{Enabled: true, Address: "   "})
	require.NoError(t, err)
	assert.False(t, client.Enabled())
	client.Count("dropped", 1, nil)

	var nilClient *Client
	assert.False(t, nilClient.Enabled())
	nilClient.Gauge("dropped", 1, nil)
	assert.NoError(t, nilClient.Close())
}

func TestNewClientDialError(t *testing.T) {
	_, err := NewClient(Config{Enabled: true, Address: "bad address"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "statsd dial")
}
