package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/HarvestShare_Go/internal/config"
	"github.com/osse101/HarvestShare_Go/internal/database"
)

const (
	waitMaxAttempts   = 30
	waitRetryInterval = 2 * time.Second
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// connect opens a small pool; these commands run one statement at a time
func connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if cfg.UsesMemoryStore() {
		return nil, fmt.Errorf("DB_DRIVER=%s has no database to connect to", cfg.DBDriver)
	}
	PrintInfo("Connecting to %s:%s/%s", cfg.DBHost, cfg.DBPort, cfg.DBName)
	return database.NewPool(ctx, cfg.GetDBConnString(), database.DefaultMinConnections, cfg.DBMaxConnIdleTime, cfg.DBMaxConnLifetime)
}
