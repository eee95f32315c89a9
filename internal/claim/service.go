package claim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/osse101/HarvestShare_Go/internal/concurrency"
	"github.com/osse101/HarvestShare_Go/internal/domain"
	"github.com/osse101/HarvestShare_Go/internal/event"
	"github.com/osse101/HarvestShare_Go/internal/logger"
	"github.com/osse101/HarvestShare_Go/internal/metrics"
	"github.com/osse101/HarvestShare_Go/internal/repository"
	"github.com/osse101/HarvestShare_Go/internal/saga"
	"github.com/osse101/HarvestShare_Go/internal/utils"
)

const (
	// DefaultMaxRetries bounds the compare-and-swap attempts of one claim
	DefaultMaxRetries = 5

	entityAllocation = "allocation"
	stepClaimName    = "claim_harvest_share"
)

// Service defines the claim ledger procedures
type Service interface {
	// ClaimHarvestShare records a member claim against an open allocation
	ClaimHarvestShare(ctx context.Context, req domain.ClaimRequest) (*domain.ClaimResult, error)
	// CompensateClaim deletes the claim in result and returns its quantity to the allocation
	CompensateClaim(ctx context.Context, result *domain.ClaimResult) error
	// UpdateClaimStatus moves a claim along its fulfilment lifecycle
	UpdateClaimStatus(ctx context.Context, claimID string, status domain.ClaimStatus) (*domain.HarvestClaim, error)
	// ClaimStep binds ClaimHarvestShare and CompensateClaim into one saga step
	ClaimStep(req domain.ClaimRequest) *saga.TypedStep[*domain.ClaimResult]
}

// Option configures the service
type Option func(*service)

// WithClock overrides the time source used for deadlines and timestamps
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// WithMaxRetries sets how many times a lost compare-and-swap is retried
func WithMaxRetries(n int) Option {
	return func(s *service) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

// WithLockManager shares a lock manager between services
func WithLockManager(lm *concurrency.LockManager) Option {
	return func(s *service) {
		s.locks = lm
	}
}

type service struct {
	allocationRepo repository.AllocationRepository
	claimRepo      repository.ClaimRepository
	bus            event.Bus
	validate       *validator.Validate
	locks          *concurrency.LockManager
	maxRetries     int
	now            func() time.Time
}

// NewService creates a new claim service.
// bus may be nil, in which case no events are published.
func NewService(
	allocationRepo repository.AllocationRepository,
	claimRepo repository.ClaimRepository,
	bus event.Bus,
	opts ...Option,
) Service {
	s := &service{
		allocationRepo: allocationRepo,
		claimRepo:      claimRepo,
		bus:            bus,
		validate:       newValidator(),
		locks:          concurrency.NewLockManager(),
		maxRetries:     DefaultMaxRetries,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ClaimHarvestShare records a member claim against an open allocation.
//
// Requests larger than the remaining quantity are capped, not rejected.
// The allocation is updated with a compare-and-swap on its version; claims in this
// process are additionally serialized per allocation, so conflicts only arise from
// other processes sharing the store.
func (s *service) ClaimHarvestShare(ctx context.Context, req domain.ClaimRequest) (*domain.ClaimResult, error) {
	defer metrics.ObserveProcedure(metrics.ProcedureClaim, time.Now())
	log := logger.FromContext(ctx)
	log.Info("ClaimHarvestShare called", "allocationID", req.AllocationID, "customerID", req.CustomerID, "quantity", req.QuantityRequested.String())

	if err := validateRequest(s.validate, req); err != nil {
		return nil, err
	}
	requested := utils.RoundQuantity(req.QuantityRequested)
	if !requested.IsPositive() {
		return nil, fmt.Errorf("%w: QuantityRequested rounds to zero", domain.ErrInvalidInput)
	}

	unlock := s.locks.Lock(req.AllocationID)
	defer unlock()

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		result, err := s.tryClaim(ctx, req, requested)
		if errors.Is(err, domain.ErrConcurrentModification) {
			metrics.ClaimConflicts.Inc()
			log.Debug("Allocation changed during claim, retrying", "allocationID", req.AllocationID, "attempt", attempt+1)
			continue
		}
		if err != nil {
			return nil, err
		}
		log.Info("Claim recorded", "claimID", result.ClaimID, "allocationID", req.AllocationID,
			"quantity", result.QuantityClaimed.String(), "remaining", result.RemainingQuantity.String())
		return result, nil
	}

	log.Warn("Claim abandoned after repeated conflicts", "allocationID", req.AllocationID, "attempts", s.maxRetries+1)
	return nil, fmt.Errorf("%w: allocation %s after %d attempts", domain.ErrConcurrentModification, req.AllocationID, s.maxRetries+1)
}

// tryClaim performs one read-validate-swap-insert pass
func (s *service) tryClaim(ctx context.Context, req domain.ClaimRequest, requested decimal.Decimal) (*domain.ClaimResult, error) {
	log := logger.FromContext(ctx)

	allocation, err := s.allocationRepo.GetAllocation(ctx, req.AllocationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load allocation: %w", err)
	}
	if allocation.HarvestID != req.HarvestID {
		return nil, fmt.Errorf("%w: allocation %s does not belong to harvest %s", domain.ErrInvalidInput, allocation.ID, req.HarvestID)
	}
	if allocation.Status != domain.AllocationOpen {
		return nil, &domain.InvalidStateError{
			Entity:   entityAllocation,
			ID:       allocation.ID,
			Expected: string(domain.AllocationOpen),
			Actual:   string(allocation.Status),
		}
	}
	now := s.now()
	if now.After(allocation.ClaimDeadline) {
		return nil, &domain.DeadlineExpiredError{AllocationID: allocation.ID, Deadline: allocation.ClaimDeadline, At: now}
	}
	if !allocation.RemainingQuantity.IsPositive() {
		return nil, fmt.Errorf("%w: allocation %s", domain.ErrNoRemainingQuantity, allocation.ID)
	}

	quantity := utils.MinDecimal(requested, allocation.RemainingQuantity)
	value := utils.Round2(quantity.Mul(allocation.AllocatedValue).Div(allocation.AllocatedQuantity))
	newRemaining := allocation.RemainingQuantity.Sub(quantity)
	status := domain.AllocationOpen
	if !newRemaining.IsPositive() {
		status = domain.AllocationFullyClaimed
	}

	updated, err := s.allocationRepo.UpdateAllocation(ctx, domain.AllocationUpdate{
		ID:                allocation.ID,
		ExpectedVersion:   allocation.Version,
		ClaimedQuantity:   allocation.AllocatedQuantity.Sub(newRemaining),
		RemainingQuantity: newRemaining,
		Status:            status,
	})
	if err != nil {
		if errors.Is(err, domain.ErrConcurrentModification) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update allocation: %w", err)
	}

	claim := &domain.HarvestClaim{
		AllocationID:    allocation.ID,
		HarvestID:       allocation.HarvestID,
		CustomerID:      req.CustomerID,
		MembershipID:    req.MembershipID,
		QuantityClaimed: quantity,
		ValueClaimed:    value,
		Status:          domain.ClaimPending,
		ClaimedAt:       now,
	}
	if err := s.claimRepo.CreateClaim(ctx, claim); err != nil {
		// give the reserved quantity back before surfacing the failure
		if _, releaseErr := s.allocationRepo.ReleaseClaimedQuantity(context.WithoutCancel(ctx), allocation.ID, quantity); releaseErr != nil {
			log.Error("Failed to release reserved quantity", "allocationID", allocation.ID, "quantity", quantity.String(), "error", releaseErr)
			return nil, errors.Join(fmt.Errorf("failed to create claim: %w", err), releaseErr)
		}
		return nil, fmt.Errorf("failed to create claim: %w", err)
	}

	event.PublishBestEffort(ctx, s.bus, event.NewHarvestClaimedEvent(claim, allocation.PoolType, updated.RemainingQuantity.String()), log)

	return &domain.ClaimResult{
		ClaimID:           claim.ID,
		QuantityClaimed:   quantity,
		ValueClaimed:      value,
		RemainingQuantity: updated.RemainingQuantity,
		AllocationID:      allocation.ID,
		PreviousClaimed:   allocation.ClaimedQuantity,
		PreviousRemaining: allocation.RemainingQuantity,
		PreviousStatus:    allocation.Status,
	}, nil
}

// CompensateClaim deletes the claim in result and returns its quantity to the allocation
// in one store operation, so a failed attempt can be retried. The release is a delta, so
// claims recorded after this one are preserved. When no later claim intervened, the
// allocation ends up exactly at its pre-claim values.
// Compensating a claim that is already gone is a no-op.
func (s *service) CompensateClaim(ctx context.Context, result *domain.ClaimResult) error {
	if result == nil {
		return nil
	}
	defer metrics.ObserveProcedure(metrics.ProcedureCompensateClaim, time.Now())
	log := logger.FromContext(ctx)
	log.Info("CompensateClaim called", "claimID", result.ClaimID, "allocationID", result.AllocationID)

	unlock := s.locks.Lock(result.AllocationID)
	defer unlock()

	restored, err := s.claimRepo.DeleteClaimAndRelease(ctx, result.ClaimID)
	if err != nil {
		if errors.Is(err, domain.ErrClaimNotFound) {
			log.Debug("Claim already compensated", "claimID", result.ClaimID)
			return nil
		}
		return fmt.Errorf("failed to compensate claim: %w", err)
	}

	event.PublishBestEffort(ctx, s.bus, event.NewClaimCompensatedEvent(result), log)
	log.Info("Claim compensated", "claimID", result.ClaimID, "remaining", restored.RemainingQuantity.String())
	return nil
}

// UpdateClaimStatus moves a claim along its fulfilment lifecycle
func (s *service) UpdateClaimStatus(ctx context.Context, claimID string, status domain.ClaimStatus) (*domain.HarvestClaim, error) {
	log := logger.FromContext(ctx)

	claim, err := s.claimRepo.GetClaim(ctx, claimID)
	if err != nil {
		return nil, fmt.Errorf("failed to load claim: %w", err)
	}
	if !CanTransition(claim.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidClaimTransition, claim.Status, status)
	}

	if err := s.claimRepo.UpdateClaimStatus(ctx, claimID, claim.Status, status); err != nil {
		return nil, fmt.Errorf("failed to update claim status: %w", err)
	}

	log.Info("Claim status updated", "claimID", claimID, "from", claim.Status, "to", status)
	claim.Status = status
	claim.UpdatedAt = s.now()
	return claim, nil
}

// ClaimStep binds ClaimHarvestShare and CompensateClaim into one saga step
func (s *service) ClaimStep(req domain.ClaimRequest) *saga.TypedStep[*domain.ClaimResult] {
	return saga.NewStep(stepClaimName,
		func(ctx context.Context) (*domain.ClaimResult, error) {
			return s.ClaimHarvestShare(ctx, req)
		},
		s.CompensateClaim,
	)
}
