package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/target/vms-jobdist/config"
	"github.com/target/vms-jobdist/internal/bootstrap"
)

// loadRuntime connects Postgres (and Redis when enabled) and wires the
// services the commands need. The admin CLI never verifies bearer tokens.
func loadRuntime(ctx context.Context, cfg config.AppConfig, logger *slog.Logger) (*runtime, error) {
	dbCfg := bootstrap.DatabaseConfig{
		DBConfig:    cfg.Postgres,
		RedisConfig: cfg.Redis,
		Logger:      logger,
	}
	db, err := bootstrap.ConnectDB(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	var redisClient redis.UniversalClient
	if cfg.Redis.Enabled {
		redisClient, err = bootstrap.ConnectRedis(dbCfg)
		if err != nil {
			closeDB(db, logger)
			return nil, fmt.Errorf("connect redis: %w", err)
		}
	} else {
		logger.WarnContext(ctx, "redis disabled; cache-clear only affects this process")
	}

	services, err := bootstrap.NewServices(&bootstrap.ServiceDeps{
		Config:      &cfg,
		DB:          db,
		RedisClient: redisClient,
		Logger:      logger,
	})
	if err != nil {
		closeDB(db, logger)
		return nil, err
	}

	return &runtime{
		Migrate: func(ctx context.Context) ([]string, error) {
			return bootstrap.RunMigrations(ctx, db, logger)
		},
		Sweep:   services.Sweep.Sweep,
		History: services.History,
		Cache:   services.LookupCache,
		Close: func() {
			if err := services.Queue.Shutdown(context.Background()); err != nil {
				logger.Warn("task queue shutdown failed", "error", err)
			}
			if redisClient != nil {
				if err := redisClient.Close(); err != nil {
					logger.Warn("redis close failed", "error", err)
				}
			}
			closeDB(db, logger)
		},
	}, nil
}

func closeDB(db *sql.DB, logger *slog.Logger) {
	if err := db.Close(); err != nil {
		logger.Warn("db close failed", "error", err)
	}
}
