package config

import (
	"strings"
	"time"
)

// NotificationConfig configures the outbound call to the notification
// service. The service resolves recipients and delivers; this process only
// posts the event.
type NotificationConfig struct {
	Enabled bool   `env:"NOTIFICATION_ENABLED"  envDefault:"false"`
	BaseURL string `env:"NOTIFICATION_BASE_URL"`
	// Token is sent as a bearer token to the notification service.
	Token   string        `env:"NOTIFICATION_TOKEN"`
	Timeout time.Duration `env:"NOTIFICATION_TIMEOUT" envDefault:"5s"`
	// RatePerSecond throttles outbound calls; zero disables throttling.
	RatePerSecond float64 `env:"NOTIFICATION_RATE_PER_SECOND" envDefault:"20"`
	// PayloadExpr is an optional JMESPath expression applied to the
	// dispatch payload before it is sent.
	PayloadExpr string `env:"NOTIFICATION_PAYLOAD_EXPR"`
}

// Sanitize normalises notification values and disables dispatch when no
// endpoint is configured.
func (n *NotificationConfig) Sanitize() {
	n.BaseURL = strings.TrimRight(strings.TrimSpace(n.BaseURL), "/")
	n.PayloadExpr = strings.TrimSpace(n.PayloadExpr)
	if n.BaseURL == "" {
		n.Enabled = false
	}
	if n.Timeout <= 0 {
		n.Timeout = 5 * time.Second
	}
	if n.RatePerSecond < 0 {
		n.RatePerSecond = 0
	}
}
