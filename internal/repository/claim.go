package repository

import (
	"context"

	"github.com/osse101/HarvestShare_Go/internal/domain"
)

// ClaimRepository handles member claim persistence
type ClaimRepository interface {
	// CreateClaim inserts a row and fills ID and UpdatedAt
	CreateClaim(ctx context.Context, claim *domain.HarvestClaim) error

	// GetClaim returns domain.ErrClaimNotFound when the id is unknown
	GetClaim(ctx context.Context, id string) (*domain.HarvestClaim, error)

	// ListClaimsByAllocation returns claims in claimed_at order
	ListClaimsByAllocation(ctx context.Context, allocationID string) ([]domain.HarvestClaim, error)

	// UpdateClaimStatus moves a claim between statuses.
	// Returns *domain.InvalidStateError when the stored status is not from.
	UpdateClaimStatus(ctx context.Context, id string, from, to domain.ClaimStatus) error

	// DeleteClaimAndRelease removes a claim and returns its quantity to the allocation in one
	// atomic step, so a failure leaves both untouched. Returns domain.ErrClaimNotFound when
	// the claim is already gone.
	DeleteClaimAndRelease(ctx context.Context, id string) (*domain.HarvestAllocation, error)
}
