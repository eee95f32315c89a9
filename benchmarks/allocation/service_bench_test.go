package allocation_bench

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/osse101/HarvestShare_Go/internal/allocation"
	"github.com/osse101/HarvestShare_Go/internal/claim"
	"github.com/osse101/HarvestShare_Go/internal/database/memory"
	"github.com/osse101/HarvestShare_Go/internal/domain"
	"github.com/osse101/HarvestShare_Go/internal/event"
)

// --- Stubs (Zero-overhead repositories for benchmarking) ---

type StubHarvestRepository struct{}

func (s *StubHarvestRepository) GetHarvest(ctx context.Context, id string) (*domain.Harvest, error) {
	// A fresh pending harvest each call so every iteration allocates
	return &domain.Harvest{
		ID:               id,
		GardenID:         "bench-garden",
		CropType:         "tomato",
		Quantity:         decimal.NewFromInt(1000),
		Unit:             "lb",
		QualityGrade:     domain.GradePremium,
		EstimatedValue:   decimal.NewFromInt(2500),
		AllocationStatus: domain.HarvestPending,
	}, nil
}
func (s *StubHarvestRepository) UpdateHarvestStatus(ctx context.Context, id string, from, to domain.HarvestStatus) error {
	return nil
}
func (s *StubHarvestRepository) ListHarvestsByStatus(ctx context.Context, status domain.HarvestStatus) ([]domain.Harvest, error) {
	return nil, nil
}

type StubRuleRepository struct {
	rules []domain.AllocationRule
}

func (s *StubRuleRepository) ListRules(ctx context.Context, filter domain.RuleFilter) ([]domain.AllocationRule, error) {
	return s.rules, nil
}

type StubMemberRepository struct {
	members []domain.MemberContribution
}

func (s *StubMemberRepository) ListContributions(ctx context.Context, gardenID string) ([]domain.MemberContribution, error) {
	return s.members, nil
}

type StubAllocationRepository struct{}

func (s *StubAllocationRepository) CreateAllocation(ctx context.Context, a *domain.HarvestAllocation) error {
	a.ID = uuid.NewString()
	return nil
}
func (s *StubAllocationRepository) GetAllocation(ctx context.Context, id string) (*domain.HarvestAllocation, error) {
	return nil, domain.ErrAllocationNotFound
}
func (s *StubAllocationRepository) ListAllocationsByHarvest(ctx context.Context, harvestID string) ([]domain.HarvestAllocation, error) {
	return nil, nil
}
func (s *StubAllocationRepository) UpdateAllocation(ctx context.Context, u domain.AllocationUpdate) (*domain.HarvestAllocation, error) {
	return nil, domain.ErrAllocationNotFound
}
func (s *StubAllocationRepository) ReleaseClaimedQuantity(ctx context.Context, id string, q decimal.Decimal) (*domain.HarvestAllocation, error) {
	return nil, domain.ErrAllocationNotFound
}
func (s *StubAllocationRepository) DeleteAllocation(ctx context.Context, id string) error { return nil }
func (s *StubAllocationRepository) ExpireAllocations(ctx context.Context, cutoff time.Time) ([]domain.HarvestAllocation, error) {
	return nil, nil
}

// StubBus implements event.Bus
type StubBus struct{}

func (b *StubBus) Publish(ctx context.Context, e event.Event) error      { return nil }
func (b *StubBus) Subscribe(eventType event.Type, handler event.Handler) {}

func benchRules() []domain.AllocationRule {
	pools := []struct {
		pool domain.PoolType
		pct  int64
	}{
		{domain.PoolInvestor, 30},
		{domain.PoolVolunteer, 30},
		{domain.PoolPlotHolder, 20},
		{domain.PoolCommunal, 10},
		{domain.PoolDonation, 10},
	}
	rules := make([]domain.AllocationRule, 0, len(pools))
	for i, p := range pools {
		rules = append(rules, domain.AllocationRule{
			ID:         uuid.NewString(),
			GardenID:   "bench-garden",
			PoolType:   p.pool,
			Percentage: decimal.NewFromInt(p.pct),
			Priority:   i,
			IsActive:   true,
		})
	}
	return rules
}

func benchMembers(n int) []domain.MemberContribution {
	members := make([]domain.MemberContribution, n)
	for i := range members {
		members[i] = domain.MemberContribution{
			CustomerID:       fmt.Sprintf("cust-%d", i),
			MembershipID:     fmt.Sprintf("mem-%d", i),
			LaborHours:       decimal.NewFromInt(int64(i%40 + 1)),
			InvestmentAmount: decimal.NewFromInt(int64(i%7) * 100),
			PlotAreaSqft:     decimal.NewFromInt(int64(i%5) * 25),
			IsActive:         true,
		}
	}
	return members
}

// --- Benchmark Functions ---

// BenchmarkEngine_Allocate_ManyMembers measures the pure distribution over a large membership
func BenchmarkEngine_Allocate_ManyMembers(b *testing.B) {
	engine := allocation.NewEngine()
	members := benchMembers(1000)
	rules := make([]domain.PoolRule, 0, 5)
	for _, r := range benchRules() {
		rules = append(rules, domain.PoolRule{PoolType: r.PoolType, Percentage: r.Percentage})
	}
	total := decimal.NewFromInt(2500)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dist := engine.Allocate(total, rules, members)
		if len(dist.Pools) != len(rules) {
			b.Fatalf("expected %d pools, got %d", len(rules), len(dist.Pools))
		}
	}
}

// BenchmarkAllocateHarvest measures the full allocation procedure against stub repositories
func BenchmarkAllocateHarvest(b *testing.B) {
	svc := allocation.NewService(
		&StubHarvestRepository{},
		&StubRuleRepository{rules: benchRules()},
		&StubMemberRepository{members: benchMembers(200)},
		&StubAllocationRepository{},
		&StubBus{},
	)
	ctx := context.Background()
	harvestID := uuid.NewString()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := svc.AllocateHarvest(ctx, harvestID); err != nil {
			b.Fatalf("AllocateHarvest failed: %v", err)
		}
	}
}

// BenchmarkClaimHarvestShare_Contended runs parallel claims against one allocation
func BenchmarkClaimHarvestShare_Contended(b *testing.B) {
	ctx := context.Background()
	store := memory.New()
	harvest := store.PutHarvest(domain.Harvest{
		GardenID:         "bench-garden",
		CropType:         "squash",
		Quantity:         decimal.NewFromInt(1_000_000_000),
		EstimatedValue:   decimal.NewFromInt(1_000_000),
		AllocationStatus: domain.HarvestAllocated,
	})
	alloc := &domain.HarvestAllocation{
		HarvestID:         harvest.ID,
		GardenID:          harvest.GardenID,
		PoolType:          domain.PoolCommunal,
		Percentage:        decimal.NewFromInt(100),
		AllocatedQuantity: harvest.Quantity,
		AllocatedValue:    harvest.EstimatedValue,
		ClaimedQuantity:   decimal.Zero,
		RemainingQuantity: harvest.Quantity,
		Status:            domain.AllocationOpen,
		ClaimDeadline:     time.Now().Add(24 * time.Hour),
	}
	if err := store.CreateAllocation(ctx, alloc); err != nil {
		b.Fatalf("CreateAllocation failed: %v", err)
	}

	svc := claim.NewService(store, store, &StubBus{}, claim.WithMaxRetries(1000))
	one := decimal.NewFromInt(1)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, err := svc.ClaimHarvestShare(ctx, domain.ClaimRequest{
				HarvestID:         harvest.ID,
				AllocationID:      alloc.ID,
				CustomerID:        "bench-customer",
				QuantityRequested: one,
			})
			if err != nil {
				b.Errorf("ClaimHarvestShare failed: %v", err)
				return
			}
		}
	})
}
