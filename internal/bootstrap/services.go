package bootstrap

import (
	"log/slog"

	"github.com/osse101/HarvestShare_Go/internal/allocation"
	"github.com/osse101/HarvestShare_Go/internal/claim"
	"github.com/osse101/HarvestShare_Go/internal/config"
	"github.com/osse101/HarvestShare_Go/internal/event"
	"github.com/osse101/HarvestShare_Go/internal/repository"
	"github.com/osse101/HarvestShare_Go/internal/worker"
)

// Services holds the application services built over one store
type Services struct {
	Allocation   allocation.Service
	Claim        claim.Service
	ExpiryWorker *worker.ExpiryWorker

	// Rules is the rule read/write path used by the services.
	// It is RuleCache when caching is enabled and the store otherwise.
	Rules repository.RuleStore

	// RuleCache is nil when RULE_CACHE_SIZE is 0
	RuleCache *allocation.CachedRuleRepository
}

// InitializeServices wires the allocation and claim services and the expiry worker.
// The worker is created but not started.
func InitializeServices(cfg *config.Config, store repository.Store, bus event.Bus) *Services {
	svc := &Services{}

	svc.Rules = store
	if cfg.RuleCacheSize > 0 {
		svc.RuleCache = allocation.NewCachedRuleRepository(store, cfg.RuleCacheSize, cfg.RuleCacheTTL)
		svc.Rules = svc.RuleCache
	} else {
		slog.Info(LogMsgRuleCacheDisabled)
	}

	svc.Allocation = allocation.NewService(store, svc.Rules, store, store, bus)
	svc.Claim = claim.NewService(store, store, bus, claim.WithMaxRetries(cfg.ClaimMaxRetries))
	svc.ExpiryWorker = worker.NewExpiryWorker(store, store, bus, cfg.ExpirySweepInterval)

	slog.Info(LogMsgServicesInitialized,
		"rule_cache_size", cfg.RuleCacheSize,
		"claim_max_retries", cfg.ClaimMaxRetries)
	return svc
}
