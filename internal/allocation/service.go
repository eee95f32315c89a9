package allocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/osse101/HarvestShare_Go/internal/domain"
	"github.com/osse101/HarvestShare_Go/internal/event"
	"github.com/osse101/HarvestShare_Go/internal/logger"
	"github.com/osse101/HarvestShare_Go/internal/metrics"
	"github.com/osse101/HarvestShare_Go/internal/repository"
	"github.com/osse101/HarvestShare_Go/internal/saga"
	"github.com/osse101/HarvestShare_Go/internal/utils"
	"github.com/osse101/HarvestShare_Go/internal/valuation"
)

const (
	entityHarvest    = "harvest"
	stepAllocateName = "allocate_harvest"
)

// Service defines the harvest allocation procedures
type Service interface {
	// AllocateHarvest splits a pending harvest into one allocation per pool and marks it allocated
	AllocateHarvest(ctx context.Context, harvestID string) (*domain.AllocationResult, error)
	// CompensateAllocation deletes the allocations in result and returns the harvest to pending
	CompensateAllocation(ctx context.Context, result *domain.AllocationResult) error
	// PreviewDistribution computes the per-member breakdown of a harvest without writing anything
	PreviewDistribution(ctx context.Context, harvestID string) (*domain.Distribution, error)
	// AllocateStep binds AllocateHarvest and CompensateAllocation into one saga step
	AllocateStep(harvestID string) *saga.TypedStep[*domain.AllocationResult]
}

// Option configures the service
type Option func(*service)

// WithClock overrides the time source used for deadlines and rule windows
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

type service struct {
	harvestRepo    repository.HarvestRepository
	ruleRepo       repository.RuleRepository
	memberRepo     repository.MemberRepository
	allocationRepo repository.AllocationRepository
	bus            event.Bus
	engine         *Engine
	now            func() time.Time
}

// NewService creates a new allocation service.
// bus may be nil, in which case no events are published.
func NewService(
	harvestRepo repository.HarvestRepository,
	ruleRepo repository.RuleRepository,
	memberRepo repository.MemberRepository,
	allocationRepo repository.AllocationRepository,
	bus event.Bus,
	opts ...Option,
) Service {
	s := &service{
		harvestRepo:    harvestRepo,
		ruleRepo:       ruleRepo,
		memberRepo:     memberRepo,
		allocationRepo: allocationRepo,
		bus:            bus,
		engine:         NewEngine(),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AllocateHarvest splits a pending harvest into one allocation per pool and marks it allocated
func (s *service) AllocateHarvest(ctx context.Context, harvestID string) (*domain.AllocationResult, error) {
	defer metrics.ObserveProcedure(metrics.ProcedureAllocate, time.Now())
	log := logger.FromContext(ctx)
	log.Info("AllocateHarvest called", "harvestID", harvestID)

	harvest, err := s.harvestRepo.GetHarvest(ctx, harvestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load harvest: %w", err)
	}
	if harvest.AllocationStatus != domain.HarvestPending {
		return nil, &domain.InvalidStateError{
			Entity:   entityHarvest,
			ID:       harvest.ID,
			Expected: string(domain.HarvestPending),
			Actual:   string(harvest.AllocationStatus),
		}
	}

	now := s.now()
	rules, err := s.rulesFor(ctx, harvest, now)
	if err != nil {
		return nil, err
	}

	totalValue := s.harvestValue(ctx, harvest)
	pools := s.engine.Allocate(totalValue, rules, nil).Pools
	amounts := make([]decimal.Decimal, 0, len(pools))
	for _, p := range pools {
		amounts = append(amounts, p.Amount)
	}

	created := make([]domain.HarvestAllocation, 0, len(rules))
	for i, rule := range rules {
		quantity := utils.RoundQuantity(utils.PercentOf(harvest.Quantity, rule.Percentage))
		allocation := domain.HarvestAllocation{
			HarvestID:         harvest.ID,
			GardenID:          harvest.GardenID,
			PoolType:          rule.PoolType,
			Percentage:        rule.Percentage,
			AllocatedQuantity: quantity,
			AllocatedValue:    pools[i].Amount,
			ClaimedQuantity:   decimal.Zero,
			RemainingQuantity: quantity,
			Status:            domain.AllocationOpen,
			ClaimDeadline:     ClaimDeadline(rule.PoolType, now),
		}
		if err := s.allocationRepo.CreateAllocation(ctx, &allocation); err != nil {
			s.discardAllocations(ctx, created)
			return nil, fmt.Errorf("failed to create %s allocation: %w", rule.PoolType, err)
		}
		created = append(created, allocation)
	}

	// Conditional flip; a concurrent allocation of the same harvest loses here.
	if err := s.harvestRepo.UpdateHarvestStatus(ctx, harvest.ID, domain.HarvestPending, domain.HarvestAllocated); err != nil {
		s.discardAllocations(ctx, created)
		return nil, fmt.Errorf("failed to mark harvest allocated: %w", err)
	}

	result := &domain.AllocationResult{
		HarvestID:       harvest.ID,
		AllocationCount: len(created),
		AllocationIDs:   make([]string, 0, len(created)),
	}
	for _, a := range created {
		result.AllocationIDs = append(result.AllocationIDs, a.ID)
	}

	event.PublishBestEffort(ctx, s.bus, event.NewHarvestAllocatedEvent(harvest, created), log)
	log.Info("Harvest allocated",
		"harvestID", harvest.ID,
		"allocations", result.AllocationCount,
		"pools", PoolLabels(pools),
		"totalValue", totalValue.StringFixed(domain.MoneyPlaces),
		"allocatedValue", utils.SumDecimals(amounts...).StringFixed(domain.MoneyPlaces))

	return result, nil
}

// CompensateAllocation deletes the allocations in result and returns the harvest to pending.
// Running it twice is harmless.
func (s *service) CompensateAllocation(ctx context.Context, result *domain.AllocationResult) error {
	if result == nil {
		return nil
	}
	defer metrics.ObserveProcedure(metrics.ProcedureCompensateAllocate, time.Now())
	log := logger.FromContext(ctx)
	log.Info("CompensateAllocation called", "harvestID", result.HarvestID, "allocations", len(result.AllocationIDs))

	var errs []error
	for _, id := range result.AllocationIDs {
		if err := s.allocationRepo.DeleteAllocation(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete allocation %s: %w", id, err))
		}
	}

	err := s.harvestRepo.UpdateHarvestStatus(ctx, result.HarvestID, domain.HarvestAllocated, domain.HarvestPending)
	if err != nil && !alreadyPending(err) {
		errs = append(errs, fmt.Errorf("failed to reset harvest status: %w", err))
	}

	if len(errs) > 0 {
		log.Error("Allocation compensation incomplete", "harvestID", result.HarvestID, "error", errors.Join(errs...))
		return errors.Join(errs...)
	}

	event.PublishBestEffort(ctx, s.bus, event.NewAllocationCompensatedEvent(result), log)
	log.Info("Allocation compensated", "harvestID", result.HarvestID)
	return nil
}

// PreviewDistribution computes the per-member breakdown of a harvest without writing anything
func (s *service) PreviewDistribution(ctx context.Context, harvestID string) (*domain.Distribution, error) {
	log := logger.FromContext(ctx)

	harvest, err := s.harvestRepo.GetHarvest(ctx, harvestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load harvest: %w", err)
	}

	rules, err := s.rulesFor(ctx, harvest, s.now())
	if err != nil {
		return nil, err
	}

	members, err := s.memberRepo.ListContributions(ctx, harvest.GardenID)
	if err != nil {
		return nil, fmt.Errorf("failed to load member contributions: %w", err)
	}

	dist := s.engine.Allocate(s.harvestValue(ctx, harvest), rules, members)
	log.Debug("Distribution previewed", "harvestID", harvest.ID, "pools", PoolLabels(dist.Pools), "memberAllocations", len(dist.MemberAllocations))
	return dist, nil
}

// AllocateStep binds AllocateHarvest and CompensateAllocation into one saga step
func (s *service) AllocateStep(harvestID string) *saga.TypedStep[*domain.AllocationResult] {
	return saga.NewStep(stepAllocateName,
		func(ctx context.Context) (*domain.AllocationResult, error) {
			return s.AllocateHarvest(ctx, harvestID)
		},
		s.CompensateAllocation,
	)
}

// rulesFor loads and selects the rules that apply to harvest at now
func (s *service) rulesFor(ctx context.Context, harvest *domain.Harvest, now time.Time) ([]domain.PoolRule, error) {
	log := logger.FromContext(ctx)

	stored, err := s.ruleRepo.ListRules(ctx, ruleFilter(harvest))
	if err != nil {
		return nil, fmt.Errorf("failed to load allocation rules: %w", err)
	}

	rules, usedDefault := SelectRules(harvest, stored, now)
	if usedDefault {
		log.Debug("No applicable allocation rules, using defaults", "harvestID", harvest.ID, "gardenID", harvest.GardenID)
	}
	for _, r := range rules {
		if !r.PoolType.IsKnown() {
			log.Warn("Unknown pool type in allocation rules", "harvestID", harvest.ID, "poolType", r.PoolType)
		}
	}
	return rules, nil
}

// harvestValue returns the estimated value, deriving it from the unit price when none was recorded
func (s *service) harvestValue(ctx context.Context, harvest *domain.Harvest) decimal.Decimal {
	if !harvest.EstimatedValue.IsZero() || !harvest.PricePerUnit.IsPositive() {
		return harvest.EstimatedValue
	}
	if !valuation.IsKnownGrade(harvest.QualityGrade) {
		logger.FromContext(ctx).Warn("Unknown quality grade, pricing as standard", "harvestID", harvest.ID, "grade", harvest.QualityGrade)
	}
	return valuation.EstimateValue(harvest.Quantity, harvest.PricePerUnit, harvest.QualityGrade)
}

// discardAllocations removes rows created by a failed allocation run
func (s *service) discardAllocations(ctx context.Context, created []domain.HarvestAllocation) {
	if len(created) == 0 {
		return
	}
	log := logger.FromContext(ctx)
	cleanupCtx := context.WithoutCancel(ctx)
	for _, a := range created {
		if err := s.allocationRepo.DeleteAllocation(cleanupCtx, a.ID); err != nil {
			log.Error("Failed to discard allocation", "allocationID", a.ID, "error", err)
		}
	}
}

func alreadyPending(err error) bool {
	var stateErr *domain.InvalidStateError
	return errors.As(err, &stateErr) && stateErr.Actual == string(domain.HarvestPending)
}

// PoolLabels renders pools as display labels with their share, e.g. "Plot Holder 30%"
func PoolLabels(pools []domain.PoolAmount) []string {
	labels := make([]string, 0, len(pools))
	for _, p := range pools {
		labels = append(labels, fmt.Sprintf("%s %s%%", p.PoolType.DisplayName(), p.Percentage.String()))
	}
	return labels
}
