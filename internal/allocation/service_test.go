package allocation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/HarvestShare_Go/internal/database/memory"
	"github.com/osse101/HarvestShare_Go/internal/domain"
	"github.com/osse101/HarvestShare_Go/internal/event"
	"github.com/osse101/HarvestShare_Go/internal/saga"
)

var fixedNow = time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func newTestService(store *memory.Store, bus event.Bus) Service {
	return NewService(store, store, store, store, bus, WithClock(clock))
}

func seedHarvest(store *memory.Store) domain.Harvest {
	return store.PutHarvest(domain.Harvest{
		GardenID:       "garden-1",
		SeasonID:       "2024-summer",
		CropType:       "tomato",
		Quantity:       dec("100"),
		Unit:           "kg",
		QualityGrade:   domain.GradeStandard,
		EstimatedValue: dec("500"),
	})
}

func TestAllocateHarvest_DefaultRulesEndToEnd(t *testing.T) {
	ctx := context.Background()
	store := memory.New().WithClock(clock)
	h := seedHarvest(store)
	bus := event.NewMemoryBus()
	var published []event.Event
	bus.Subscribe(event.HarvestAllocated, func(_ context.Context, e event.Event) error {
		published = append(published, e)
		return nil
	})

	result, err := newTestService(store, bus).AllocateHarvest(ctx, h.ID)
	require.NoError(t, err)

	assert.Equal(t, h.ID, result.HarvestID)
	assert.Equal(t, 6, result.AllocationCount)
	assert.Len(t, result.AllocationIDs, 6)

	allocations, err := store.ListAllocationsByHarvest(ctx, h.ID)
	require.NoError(t, err)
	require.Len(t, allocations, 6)

	wantValues := []string{"100.00", "100.00", "150.00", "75.00", "50.00", "25.00"}
	wantQuantities := []string{"20", "20", "30", "15", "10", "5"}
	wantDays := []int{14, 14, 14, 7, 0, 0}
	for i, a := range allocations {
		assert.Equal(t, result.AllocationIDs[i], a.ID)
		assert.Equal(t, DefaultRules()[i].PoolType, a.PoolType)
		assert.Equal(t, wantValues[i], a.AllocatedValue.StringFixed(2))
		assert.True(t, a.AllocatedQuantity.Equal(dec(wantQuantities[i])), "quantity %s", a.AllocatedQuantity)
		assert.True(t, a.ClaimedQuantity.IsZero())
		assert.True(t, a.AllocatedQuantity.Equal(a.ClaimedQuantity.Add(a.RemainingQuantity)))
		assert.Equal(t, domain.AllocationOpen, a.Status)
		assert.Equal(t, fixedNow.AddDate(0, 0, wantDays[i]), a.ClaimDeadline)
		assert.Equal(t, "garden-1", a.GardenID)
	}

	stored, err := store.GetHarvest(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.HarvestAllocated, stored.AllocationStatus)

	require.Len(t, published, 1)
	payload, err := event.DecodePayload[event.HarvestAllocatedPayloadV1](published[0].Payload)
	require.NoError(t, err)
	assert.Len(t, payload.Allocations, 6)
}

func TestAllocateHarvest_NotFound(t *testing.T) {
	store := memory.New()

	_, err := newTestService(store, nil).AllocateHarvest(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrHarvestNotFound)
	assert.True(t, domain.IsNotFound(err))
}

func TestAllocateHarvest_NotPending(t *testing.T) {
	store := memory.New()
	h := store.PutHarvest(domain.Harvest{GardenID: "garden-1", Quantity: dec("10"), AllocationStatus: domain.HarvestAllocated})

	_, err := newTestService(store, nil).AllocateHarvest(context.Background(), h.ID)

	var stateErr *domain.InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, "pending", stateErr.Expected)
	assert.Equal(t, "allocated", stateErr.Actual)
	assert.True(t, domain.IsClientError(err))
}

func TestAllocateHarvest_UsesStoredRules(t *testing.T) {
	ctx := context.Background()
	store := memory.New().WithClock(clock)
	h := seedHarvest(store)
	seasonal := rule(domain.PoolVolunteer, "60", 1)
	seasonal.SeasonID = strPtr("2024-summer")
	store.PutRule(seasonal)
	communal := rule(domain.PoolCommunal, "40", 2)
	communal.SeasonID = strPtr("2024-summer")
	store.PutRule(communal)
	store.PutRule(rule(domain.PoolInvestor, "100", 1))

	result, err := newTestService(store, nil).AllocateHarvest(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.AllocationCount)

	allocations, err := store.ListAllocationsByHarvest(ctx, h.ID)
	require.NoError(t, err)
	require.Len(t, allocations, 2)
	assert.Equal(t, domain.PoolVolunteer, allocations[0].PoolType)
	assert.Equal(t, "300.00", allocations[0].AllocatedValue.StringFixed(2))
	assert.Equal(t, domain.PoolCommunal, allocations[1].PoolType)
	assert.True(t, allocations[1].AllocatedQuantity.Equal(dec("40")))
}

func TestAllocateHarvest_DerivesValueFromUnitPrice(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	h := store.PutHarvest(domain.Harvest{
		GardenID:     "garden-1",
		Quantity:     dec("10"),
		PricePerUnit: dec("5.00"),
		QualityGrade: domain.GradePremium,
	})
	store.PutRule(rule(domain.PoolCommunal, "100", 1))

	_, err := newTestService(store, nil).AllocateHarvest(ctx, h.ID)
	require.NoError(t, err)

	allocations, err := store.ListAllocationsByHarvest(ctx, h.ID)
	require.NoError(t, err)
	require.Len(t, allocations, 1)
	assert.Equal(t, "65.00", allocations[0].AllocatedValue.StringFixed(2))
}

func TestCompensateAllocation_RestoresPending(t *testing.T) {
	ctx := context.Background()
	store := memory.New().WithClock(clock)
	h := seedHarvest(store)
	bus := event.NewMemoryBus()
	compensated := 0
	bus.Subscribe(event.AllocationCompensated, func(context.Context, event.Event) error {
		compensated++
		return nil
	})
	svc := newTestService(store, bus)

	result, err := svc.AllocateHarvest(ctx, h.ID)
	require.NoError(t, err)

	require.NoError(t, svc.CompensateAllocation(ctx, result))

	stored, err := store.GetHarvest(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.HarvestPending, stored.AllocationStatus)
	allocations, err := store.ListAllocationsByHarvest(ctx, h.ID)
	require.NoError(t, err)
	assert.Empty(t, allocations)
	assert.Equal(t, 1, compensated)

	// a second compensation is a no-op
	assert.NoError(t, svc.CompensateAllocation(ctx, result))
	assert.NoError(t, svc.CompensateAllocation(ctx, nil))

	// the harvest can be allocated again
	_, err = svc.AllocateHarvest(ctx, h.ID)
	assert.NoError(t, err)
}

// mockAllocationRepo injects failures into allocation writes
type mockAllocationRepo struct {
	mock.Mock
}

func (m *mockAllocationRepo) CreateAllocation(ctx context.Context, a *domain.HarvestAllocation) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockAllocationRepo) GetAllocation(ctx context.Context, id string) (*domain.HarvestAllocation, error) {
	args := m.Called(ctx, id)
	if a := args.Get(0); a != nil {
		return a.(*domain.HarvestAllocation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAllocationRepo) ListAllocationsByHarvest(ctx context.Context, harvestID string) ([]domain.HarvestAllocation, error) {
	args := m.Called(ctx, harvestID)
	return args.Get(0).([]domain.HarvestAllocation), args.Error(1)
}

func (m *mockAllocationRepo) UpdateAllocation(ctx context.Context, u domain.AllocationUpdate) (*domain.HarvestAllocation, error) {
	args := m.Called(ctx, u)
	if a := args.Get(0); a != nil {
		return a.(*domain.HarvestAllocation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAllocationRepo) ReleaseClaimedQuantity(ctx context.Context, id string, quantity decimal.Decimal) (*domain.HarvestAllocation, error) {
	args := m.Called(ctx, id, quantity)
	if a := args.Get(0); a != nil {
		return a.(*domain.HarvestAllocation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAllocationRepo) DeleteAllocation(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockAllocationRepo) ExpireAllocations(ctx context.Context, cutoff time.Time) ([]domain.HarvestAllocation, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]domain.HarvestAllocation), args.Error(1)
}

func TestAllocateHarvest_PartialFailureRemovesCreatedRows(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	h := seedHarvest(store)

	allocations := &mockAllocationRepo{}
	n := 0
	allocations.On("CreateAllocation", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			n++
			args.Get(1).(*domain.HarvestAllocation).ID = fmt.Sprintf("alloc-%d", n)
		}).
		Return(nil).Twice()
	allocations.On("CreateAllocation", mock.Anything, mock.Anything).
		Return(errors.New("disk full")).Once()
	allocations.On("DeleteAllocation", mock.Anything, "alloc-1").Return(nil).Once()
	allocations.On("DeleteAllocation", mock.Anything, "alloc-2").Return(nil).Once()

	svc := NewService(store, store, store, allocations, nil, WithClock(clock))

	_, err := svc.AllocateHarvest(ctx, h.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Contains(t, err.Error(), "plot_holder")

	stored, err := store.GetHarvest(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.HarvestPending, stored.AllocationStatus)
	allocations.AssertExpectations(t)
}

func TestAllocateHarvest_ConcurrentCallsAllocateOnce(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	h := seedHarvest(store)
	svc := newTestService(store, nil)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AllocateHarvest(ctx, h.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrInvalidState):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)

	allocations, err := store.ListAllocationsByHarvest(ctx, h.ID)
	require.NoError(t, err)
	assert.Len(t, allocations, 6)
}

func TestAllocateStep_CompensatedWhenLaterStepFails(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	h := seedHarvest(store)
	svc := newTestService(store, nil)

	failing := saga.NewStep("notify_members",
		func(context.Context) (struct{}, error) { return struct{}{}, errors.New("mailer offline") },
		func(context.Context, struct{}) error { return nil },
	)
	step := svc.AllocateStep(h.ID)

	err := saga.Run(ctx, step, failing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mailer offline")

	stored, err := store.GetHarvest(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.HarvestPending, stored.AllocationStatus)
	allocations, err := store.ListAllocationsByHarvest(ctx, h.ID)
	require.NoError(t, err)
	assert.Empty(t, allocations)
	assert.Equal(t, 6, step.Result().AllocationCount)
}

func TestPreviewDistribution(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	h := seedHarvest(store)
	store.PutMember("garden-1", member("a", "10", "100", "50"))
	store.PutMember("garden-1", member("b", "30", "300", "150"))

	dist, err := newTestService(store, nil).PreviewDistribution(ctx, h.ID)
	require.NoError(t, err)

	require.Len(t, dist.Pools, 6)
	assert.Equal(t, 2, dist.Summary.TotalMembers)
	assert.Equal(t, "50.00", dist.Summary.MarketValue.StringFixed(2))
	assert.Equal(t, "25.00", dist.Summary.DonationValue.StringFixed(2))
	assert.Equal(t, "425.00", dist.Summary.DistributedValue.StringFixed(2))
	assert.Len(t, dist.MemberAllocations, 8)

	stored, err := store.GetHarvest(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.HarvestPending, stored.AllocationStatus, "preview must not change state")
}
