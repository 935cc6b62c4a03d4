package config

import "time"

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"jobdist"`
	Password string `env:"PASSWORD" envDefault:"jobdist"`
	Name     string `env:"NAME"     envDefault:"jobdist"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"`
	// RunMigrationsOnStart applies the embedded schema during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
	MaxOpenConns         int  `env:"MAX_OPEN_CONNS"          envDefault:"25"`
	MaxIdleConns         int  `env:"MAX_IDLE_CONNS"          envDefault:"5"`
}

// RedisConfig contains Redis configuration. Redis is optional; when Enabled
// is false the populate cache stays in process.
type RedisConfig struct {
	Enabled            bool     `env:"ENABLED"              envDefault:"false"`
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}

// PopulateConfig controls caching of reference lookups made when history
// records are rendered.
type PopulateConfig struct {
	// CacheTTL bounds how long a resolved display value is reused.
	CacheTTL time.Duration `env:"POPULATE_CACHE_TTL" envDefault:"10m"`
	// KeyPrefix namespaces populate entries in Redis.
	KeyPrefix string `env:"POPULATE_CACHE_PREFIX" envDefault:"jobdist:populate:"`
}

// Sanitize applies guardrails to populate cache values.
func (p *PopulateConfig) Sanitize() {
	if p.CacheTTL < time.Second {
		p.CacheTTL = time.Second
	}
	if p.KeyPrefix == "" {
		p.KeyPrefix = "jobdist:populate:"
	}
}
