package main

import (
	"context"
	"fmt"
	"time"
)

type WaitForDBCommand struct{}

func (c *WaitForDBCommand) Name() string {
	return "wait-for-db"
}

func (c *WaitForDBCommand) Description() string {
	return "Wait for database to be ready (with retries)"
}

func (c *WaitForDBCommand) Run(ctx context.Context, args []string) error {
	PrintHeader("Waiting for database...")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	for i := 0; i < waitMaxAttempts; i++ {
		pool, err := connect(ctx, cfg)
		if err == nil {
			pool.Close()
			PrintSuccess("Database is ready")
			return nil
		}
		if cfg.UsesMemoryStore() {
			return err
		}

		PrintWarning("Database not ready (%d/%d): %v", i+1, waitMaxAttempts, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitRetryInterval):
		}
	}

	return fmt.Errorf("database failed to become ready after %d attempts", waitMaxAttempts)
}
