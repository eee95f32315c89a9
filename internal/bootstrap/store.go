package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/osse101/HarvestShare_Go/internal/config"
	"github.com/osse101/HarvestShare_Go/internal/database"
	"github.com/osse101/HarvestShare_Go/internal/database/memory"
	"github.com/osse101/HarvestShare_Go/internal/database/postgres"
	"github.com/osse101/HarvestShare_Go/internal/domain"
	"github.com/osse101/HarvestShare_Go/internal/repository"
	"github.com/osse101/HarvestShare_Go/internal/seed"
)

// OpenStore opens the configured backend. The postgres driver connects and migrates;
// the memory driver starts empty.
func OpenStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	if cfg.UsesMemoryStore() {
		slog.Info(LogMsgStoreOpened, "driver", cfg.DBDriver)
		return memory.New(), nil
	}

	pool, err := database.NewPool(ctx, cfg.GetDBConnString(), cfg.DBMaxConns, cfg.DBMaxConnIdleTime, cfg.DBMaxConnLifetime)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedOpenStore, err)
	}
	if err := database.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedOpenStore, err)
	}

	slog.Info(LogMsgStoreOpened, "driver", cfg.DBDriver, "host", cfg.DBHost, "db", cfg.DBName)
	return postgres.NewStore(pool), nil
}

// seedTarget sends rule writes through the services' rule path so cached lookups are dropped
type seedTarget struct {
	seed.Target
	rules repository.RuleWriter
}

func (t seedTarget) CreateRule(ctx context.Context, rule *domain.AllocationRule) error {
	return t.rules.CreateRule(ctx, rule)
}

// SeedStore loads SEED_FILE into the memory store. Other drivers are seeded with harvestctl.
func SeedStore(ctx context.Context, cfg *config.Config, store repository.Store, services *Services) error {
	if cfg.SeedFile == "" {
		return nil
	}
	if !cfg.UsesMemoryStore() {
		slog.Warn(LogMsgSeedSkipped, "seed_file", cfg.SeedFile)
		return nil
	}

	target, ok := store.(seed.Target)
	if !ok {
		return fmt.Errorf("%s: store %T does not accept seed records", ErrMsgFailedLoadSeed, store)
	}
	f, err := seed.Load(cfg.SeedFile)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedLoadSeed, err)
	}
	if err := seed.Apply(ctx, seedTarget{Target: target, rules: services.Rules}, f); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedLoadSeed, err)
	}

	slog.Info(LogMsgSeedApplied, "seed_file", cfg.SeedFile,
		"harvests", len(f.Harvests), "rules", len(f.Rules), "members", len(f.Members))
	return nil
}
