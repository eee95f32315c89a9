package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/osse101/HarvestShare_Go/internal/domain"
)

// AllocationRepository handles harvest allocation persistence
type AllocationRepository interface {
	// CreateAllocation inserts a row and fills ID, Version, CreatedAt and UpdatedAt
	CreateAllocation(ctx context.Context, allocation *domain.HarvestAllocation) error

	// GetAllocation returns domain.ErrAllocationNotFound when the id is unknown
	GetAllocation(ctx context.Context, id string) (*domain.HarvestAllocation, error)

	// ListAllocationsByHarvest returns a harvest's allocations in creation order
	ListAllocationsByHarvest(ctx context.Context, harvestID string) ([]domain.HarvestAllocation, error)

	// UpdateAllocation applies a compare-and-swap write keyed on update.ExpectedVersion.
	// Returns domain.ErrConcurrentModification when the version moved.
	UpdateAllocation(ctx context.Context, update domain.AllocationUpdate) (*domain.HarvestAllocation, error)

	// ReleaseClaimedQuantity atomically returns quantity to the remaining balance and reopens
	// the allocation. Fails with domain.ErrInvalidInput if more than the claimed quantity is released.
	ReleaseClaimedQuantity(ctx context.Context, id string, quantity decimal.Decimal) (*domain.HarvestAllocation, error)

	// DeleteAllocation removes a row. Deleting a missing row is not an error.
	DeleteAllocation(ctx context.Context, id string) error

	// ExpireAllocations marks every open allocation whose deadline is before cutoff as expired
	// and returns the rows it changed.
	ExpireAllocations(ctx context.Context, cutoff time.Time) ([]domain.HarvestAllocation, error)
}
