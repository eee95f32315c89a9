package main

import (
	"context"
	"fmt"

	"github.com/osse101/HarvestShare_Go/internal/database/postgres"
	"github.com/osse101/HarvestShare_Go/internal/seed"
)

type SeedCommand struct{}

func (c *SeedCommand) Name() string {
	return "seed"
}

func (c *SeedCommand) Description() string {
	return "Validate a seed file and load it into the database (--check to only validate)"
}

func (c *SeedCommand) Run(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: seed <file> [--check]")
	}
	path := args[0]
	checkOnly := len(args) > 1 && args[1] == "--check"

	f, err := seed.Load(path)
	if err != nil {
		return err
	}
	PrintSuccess("%s is valid: %d harvests, %d rules, %d members", path, len(f.Harvests), len(f.Rules), len(f.Members))
	if checkOnly {
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	pool, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	store := postgres.NewStore(pool)
	defer store.Close()

	if err := seed.Apply(ctx, store, f); err != nil {
		return err
	}
	PrintSuccess("Seed data applied")
	return nil
}
