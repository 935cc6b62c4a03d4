package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ServiceMode represents the available service modes.
type ServiceMode string

const (
	// ServiceModeHTTP runs the REST API.
	ServiceModeHTTP ServiceMode = "http"
	// ServiceModeScheduler runs the periodic distribution sweep.
	ServiceModeScheduler ServiceMode = "scheduler"
)

// ValidServiceModes returns all valid service mode names.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{ServiceModeHTTP, ServiceModeScheduler}
}

// ParseServices parses a comma-delimited string of service names and returns the enabled services.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)
	if strings.TrimSpace(servicesStr) == "" {
		return services, errors.New("at least one service must be specified")
	}

	for part := range strings.SplitSeq(servicesStr, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		switch mode := ServiceMode(name); mode {
		case ServiceModeHTTP, ServiceModeScheduler:
			services[mode] = true
		default:
			return nil, fmt.Errorf("invalid service name: %q (valid options: http, scheduler)", name)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}
	return services, nil
}

// DistributionConfig controls the scheduled distribution sweep.
type DistributionConfig struct {
	// SweepInterval is how often scheduled distributions are evaluated.
	SweepInterval time.Duration `env:"DISTRIBUTION_SWEEP_INTERVAL" envDefault:"5m"`
	// SweepBatch caps how many scheduled rows one sweep loads.
	SweepBatch int `env:"DISTRIBUTION_SWEEP_BATCH" envDefault:"500"`
}

// Sanitize applies guardrails to sweep configuration values.
func (d *DistributionConfig) Sanitize() {
	if d.SweepInterval < 10*time.Second {
		d.SweepInterval = 10 * time.Second
	}
	if d.SweepBatch < 1 {
		d.SweepBatch = 1
	}
	if d.SweepBatch > 10000 {
		d.SweepBatch = 10000
	}
}

// BackgroundConfig sizes the queue that runs post-commit history writes and
// notification dispatch.
type BackgroundConfig struct {
	Workers   int `env:"BACKGROUND_WORKERS"    envDefault:"4"`
	QueueSize int `env:"BACKGROUND_QUEUE_SIZE" envDefault:"256"`
	// TaskTimeout bounds a single background task.
	TaskTimeout time.Duration `env:"BACKGROUND_TASK_TIMEOUT" envDefault:"30s"`
}

// Sanitize applies guardrails to background queue values.
func (b *BackgroundConfig) Sanitize() {
	if b.Workers < 1 {
		b.Workers = 1
	}
	if b.QueueSize < 1 {
		b.QueueSize = 1
	}
	if b.TaskTimeout <= 0 {
		b.TaskTimeout = 30 * time.Second
	}
}
