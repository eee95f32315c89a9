// Package memory provides an in-process implementation of every repository.
// It backs service tests and DB_DRIVER=memory runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/osse101/HarvestShare_Go/internal/domain"
	"github.com/osse101/HarvestShare_Go/internal/repository"
)

var _ repository.Store = (*Store)(nil)

// Store keeps all records in maps guarded by a single RWMutex
type Store struct {
	mu sync.RWMutex

	harvests    map[string]domain.Harvest
	rules       []domain.AllocationRule
	members     map[string][]domain.MemberContribution
	allocations map[string]domain.HarvestAllocation
	claims      map[string]domain.HarvestClaim

	// insertion order, for deterministic listing
	allocationOrder []string
	claimOrder      []string

	now func() time.Time
}

// New creates an empty store
func New() *Store {
	return &Store{
		harvests:    make(map[string]domain.Harvest),
		members:     make(map[string][]domain.MemberContribution),
		allocations: make(map[string]domain.HarvestAllocation),
		claims:      make(map[string]domain.HarvestClaim),
		now:         time.Now,
	}
}

// WithClock overrides the timestamp source
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Ping(_ context.Context) error { return nil }
func (s *Store) Close()                       {}

// =============================================================================
// SEEDING - records owned by external collaborators
// =============================================================================

// PutHarvest inserts or replaces a harvest. An empty ID gets a new UUID.
func (s *Store) PutHarvest(h domain.Harvest) domain.Harvest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.AllocationStatus == "" {
		h.AllocationStatus = domain.HarvestPending
	}
	now := s.now()
	if h.CreatedAt.IsZero() {
		h.CreatedAt = now
	}
	h.UpdatedAt = now
	s.harvests[h.ID] = h
	return h
}

// PutRule appends an allocation rule
func (s *Store) PutRule(r domain.AllocationRule) domain.AllocationRule {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	s.rules = append(s.rules, r)
	return r
}

// PutMember appends a member contribution record to a garden
func (s *Store) PutMember(gardenID string, m domain.MemberContribution) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[gardenID] = append(s.members[gardenID], m)
}

// CreateHarvest stores a copy of h and fills its generated fields
func (s *Store) CreateHarvest(_ context.Context, h *domain.Harvest) error {
	if h.HarvestDate.IsZero() {
		h.HarvestDate = s.now()
	}
	*h = s.PutHarvest(*h)
	return nil
}

// CreateRule stores a copy of r and fills its ID
func (s *Store) CreateRule(_ context.Context, r *domain.AllocationRule) error {
	*r = s.PutRule(*r)
	return nil
}

// UpsertMember replaces a garden member with the same membership id, or appends it
func (s *Store) UpsertMember(_ context.Context, gardenID string, m domain.MemberContribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.members[gardenID] {
		if existing.MembershipID == m.MembershipID {
			s.members[gardenID][i] = m
			return nil
		}
	}
	s.members[gardenID] = append(s.members[gardenID], m)
	return nil
}

// =============================================================================
// HARVESTS
// =============================================================================

func (s *Store) GetHarvest(_ context.Context, id string) (*domain.Harvest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.harvests[id]
	if !ok {
		return nil, domain.ErrHarvestNotFound
	}
	return &h, nil
}

func (s *Store) UpdateHarvestStatus(_ context.Context, id string, from, to domain.HarvestStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.harvests[id]
	if !ok {
		return domain.ErrHarvestNotFound
	}
	if h.AllocationStatus != from {
		return &domain.InvalidStateError{Entity: "harvest", ID: id, Expected: string(from), Actual: string(h.AllocationStatus)}
	}
	h.AllocationStatus = to
	h.UpdatedAt = s.now()
	s.harvests[id] = h
	return nil
}

func (s *Store) ListHarvestsByStatus(_ context.Context, status domain.HarvestStatus) ([]domain.Harvest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Harvest
	for _, h := range s.harvests {
		if h.AllocationStatus == status {
			result = append(result, h)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// =============================================================================
// RULES & MEMBERS
// =============================================================================

func (s *Store) ListRules(_ context.Context, filter domain.RuleFilter) ([]domain.AllocationRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.AllocationRule
	for _, r := range s.rules {
		if r.GardenID != filter.GardenID {
			continue
		}
		if filter.ActiveOnly && !r.IsActive {
			continue
		}
		if !scopeMatches(r.SeasonID, filter.SeasonID) || !scopeMatches(r.CropType, filter.CropType) {
			continue
		}
		result = append(result, r)
	}
	return result, nil
}

func scopeMatches(ruleScope, want *string) bool {
	if ruleScope == nil {
		return true
	}
	return want != nil && *ruleScope == *want
}

func (s *Store) ListContributions(_ context.Context, gardenID string) ([]domain.MemberContribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.MemberContribution(nil), s.members[gardenID]...), nil
}

// =============================================================================
// ALLOCATIONS
// =============================================================================

func (s *Store) CreateAllocation(_ context.Context, a *domain.HarvestAllocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := s.now()
	a.Version = 1
	a.CreatedAt = now
	a.UpdatedAt = now
	s.allocations[a.ID] = *a
	s.allocationOrder = append(s.allocationOrder, a.ID)
	return nil
}

func (s *Store) GetAllocation(_ context.Context, id string) (*domain.HarvestAllocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.allocations[id]
	if !ok {
		return nil, domain.ErrAllocationNotFound
	}
	return &a, nil
}

func (s *Store) ListAllocationsByHarvest(_ context.Context, harvestID string) ([]domain.HarvestAllocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.HarvestAllocation
	for _, id := range s.allocationOrder {
		if a, ok := s.allocations[id]; ok && a.HarvestID == harvestID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (s *Store) UpdateAllocation(_ context.Context, u domain.AllocationUpdate) (*domain.HarvestAllocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.allocations[u.ID]
	if !ok {
		return nil, domain.ErrAllocationNotFound
	}
	if a.Version != u.ExpectedVersion {
		return nil, domain.ErrConcurrentModification
	}
	a.ClaimedQuantity = u.ClaimedQuantity
	a.RemainingQuantity = u.RemainingQuantity
	a.Status = u.Status
	a.Version++
	a.UpdatedAt = s.now()
	s.allocations[u.ID] = a
	return &a, nil
}

func (s *Store) ReleaseClaimedQuantity(_ context.Context, id string, quantity decimal.Decimal) (*domain.HarvestAllocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.allocations[id]
	if !ok {
		return nil, domain.ErrAllocationNotFound
	}
	if quantity.GreaterThan(a.ClaimedQuantity) {
		return nil, domain.ErrInvalidInput
	}
	a.ClaimedQuantity = a.ClaimedQuantity.Sub(quantity)
	a.RemainingQuantity = a.RemainingQuantity.Add(quantity)
	a.Status = domain.AllocationOpen
	a.Version++
	a.UpdatedAt = s.now()
	s.allocations[id] = a
	return &a, nil
}

func (s *Store) DeleteAllocation(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.allocations, id)
	for i, existing := range s.allocationOrder {
		if existing == id {
			s.allocationOrder = append(s.allocationOrder[:i], s.allocationOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) ExpireAllocations(_ context.Context, cutoff time.Time) ([]domain.HarvestAllocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var expired []domain.HarvestAllocation
	for _, id := range s.allocationOrder {
		a := s.allocations[id]
		if a.Status != domain.AllocationOpen || !a.ClaimDeadline.Before(cutoff) {
			continue
		}
		a.Status = domain.AllocationExpired
		a.Version++
		a.UpdatedAt = s.now()
		s.allocations[id] = a
		expired = append(expired, a)
	}
	return expired, nil
}

// =============================================================================
// CLAIMS
// =============================================================================

func (s *Store) CreateClaim(_ context.Context, c *domain.HarvestClaim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.UpdatedAt = s.now()
	s.claims[c.ID] = *c
	s.claimOrder = append(s.claimOrder, c.ID)
	return nil
}

func (s *Store) GetClaim(_ context.Context, id string) (*domain.HarvestClaim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.claims[id]
	if !ok {
		return nil, domain.ErrClaimNotFound
	}
	return &c, nil
}

func (s *Store) ListClaimsByAllocation(_ context.Context, allocationID string) ([]domain.HarvestClaim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.HarvestClaim
	for _, id := range s.claimOrder {
		if c, ok := s.claims[id]; ok && c.AllocationID == allocationID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (s *Store) UpdateClaimStatus(_ context.Context, id string, from, to domain.ClaimStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.claims[id]
	if !ok {
		return domain.ErrClaimNotFound
	}
	if c.Status != from {
		return &domain.InvalidStateError{Entity: "claim", ID: id, Expected: string(from), Actual: string(c.Status)}
	}
	c.Status = to
	c.UpdatedAt = s.now()
	s.claims[id] = c
	return nil
}

func (s *Store) DeleteClaimAndRelease(_ context.Context, id string) (*domain.HarvestAllocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.claims[id]
	if !ok {
		return nil, domain.ErrClaimNotFound
	}
	a, ok := s.allocations[c.AllocationID]
	if !ok {
		return nil, domain.ErrAllocationNotFound
	}
	if c.QuantityClaimed.GreaterThan(a.ClaimedQuantity) {
		return nil, domain.ErrInvalidInput
	}

	a.ClaimedQuantity = a.ClaimedQuantity.Sub(c.QuantityClaimed)
	a.RemainingQuantity = a.RemainingQuantity.Add(c.QuantityClaimed)
	a.Status = domain.AllocationOpen
	a.Version++
	a.UpdatedAt = s.now()
	s.allocations[a.ID] = a

	delete(s.claims, id)
	for i, existing := range s.claimOrder {
		if existing == id {
			s.claimOrder = append(s.claimOrder[:i], s.claimOrder[i+1:]...)
			break
		}
	}
	return &a, nil
}
