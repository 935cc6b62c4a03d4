package config

import (
	"os"
	"strings"
)

// AppConfig is the root configuration for the job distribution service.
// It is loaded once at startup from environment variables using
// github.com/caarlos0/env, sanitized, and then passed by value to the
// components that need it. Nothing mutates it after startup.
//
// Sub-configurations live in separate files:
//   - auth.go: bearer token verification
//   - database.go: Postgres, Redis and populate cache
//   - http.go: HTTP server and CORS
//   - services.go: service modes, distribution sweep and background queue
//   - notification.go: outbound notification dispatch
//   - observability.go: metrics and sweep failure alerts
type AppConfig struct {
	// IsDev enables development conveniences such as the static auth verifier.
	IsDev bool `env:"DEV" envDefault:"false"`

	Auth AuthConfig

	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`
	Populate PopulateConfig

	HTTP HTTPConfig

	// Services is a comma-delimited list of enabled service modes.
	Services string `env:"APP_SERVICES" envDefault:"http,scheduler"`

	Distribution DistributionConfig
	Background   BackgroundConfig
	Notification NotificationConfig

	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
func (c *AppConfig) Sanitize() {
	c.Populate.Sanitize()
	c.HTTP.Sanitize()
	c.Distribution.Sanitize()
	c.Background.Sanitize()
	c.Notification.Sanitize()
	c.Observability.Sanitize()

	if !c.IsDev {
		appEnv := strings.ToLower(os.Getenv("APP_ENV"))
		c.IsDev = appEnv == "development" || appEnv == "dev"
	}
}

// GetEnabledServices returns the enabled services based on the Services field.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// IsHTTPServerEnabled returns true if the HTTP server service is enabled.
func (c *AppConfig) IsHTTPServerEnabled() bool {
	services, err := c.GetEnabledServices()
	return err == nil && services[ServiceModeHTTP]
}

// IsSchedulerEnabled returns true if the distribution sweep is enabled.
func (c *AppConfig) IsSchedulerEnabled() bool {
	services, err := c.GetEnabledServices()
	return err == nil && services[ServiceModeScheduler]
}
