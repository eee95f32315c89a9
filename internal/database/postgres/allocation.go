package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/osse101/HarvestShare_Go/internal/domain"
)

const allocationColumns = `
	id::text, harvest_id::text, garden_id, pool_type, percentage, allocated_quantity, allocated_value,
	claimed_quantity, remaining_quantity, status, claim_deadline, version, created_at, updated_at`

// releaseQuantityQuery takes $1 allocation id and $2 quantity
const releaseQuantityQuery = `
	UPDATE harvest_allocations
	SET claimed_quantity = claimed_quantity - $2, remaining_quantity = remaining_quantity + $2,
		status = 'open', version = version + 1, updated_at = NOW()
	WHERE id = $1 AND claimed_quantity >= $2
	RETURNING ` + allocationColumns

// AllocationRepository implements repository.AllocationRepository for PostgreSQL.
// Every mutation is a single conditional statement; the version column backs compare-and-swap.
type AllocationRepository struct {
	db *pgxpool.Pool
}

// NewAllocationRepository creates a new allocation repository
func NewAllocationRepository(db *pgxpool.Pool) *AllocationRepository {
	return &AllocationRepository{db: db}
}

// CreateAllocation inserts an allocation and fills its generated fields
func (r *AllocationRepository) CreateAllocation(ctx context.Context, a *domain.HarvestAllocation) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	query := `
		INSERT INTO harvest_allocations (id, harvest_id, garden_id, pool_type, percentage,
			allocated_quantity, allocated_value, claimed_quantity, remaining_quantity, status, claim_deadline)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING version, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		a.ID, a.HarvestID, a.GardenID, string(a.PoolType), a.Percentage,
		a.AllocatedQuantity, a.AllocatedValue, a.ClaimedQuantity, a.RemainingQuantity,
		string(a.Status), a.ClaimDeadline,
	).Scan(&a.Version, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if isPgError(err, PgErrorCodeForeignKeyViolation) {
			return fmt.Errorf("failed to create allocation: %w", domain.ErrHarvestNotFound)
		}
		return fmt.Errorf("failed to create allocation: %w", err)
	}
	return nil
}

// GetAllocation retrieves an allocation by id
func (r *AllocationRepository) GetAllocation(ctx context.Context, id string) (*domain.HarvestAllocation, error) {
	if !validID(id) {
		return nil, domain.ErrAllocationNotFound
	}
	a, err := scanAllocation(r.db.QueryRow(ctx,
		`SELECT `+allocationColumns+` FROM harvest_allocations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAllocationNotFound
		}
		return nil, fmt.Errorf("failed to get allocation: %w", err)
	}
	return a, nil
}

// ListAllocationsByHarvest returns a harvest's allocations in creation order
func (r *AllocationRepository) ListAllocationsByHarvest(ctx context.Context, harvestID string) ([]domain.HarvestAllocation, error) {
	if !validID(harvestID) {
		return nil, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+allocationColumns+` FROM harvest_allocations WHERE harvest_id = $1 ORDER BY created_at, id`, harvestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list allocations: %w", err)
	}
	return collectAllocations(rows)
}

// UpdateAllocation writes the new balances only while the stored version matches
func (r *AllocationRepository) UpdateAllocation(ctx context.Context, u domain.AllocationUpdate) (*domain.HarvestAllocation, error) {
	if !validID(u.ID) {
		return nil, domain.ErrAllocationNotFound
	}
	query := `
		UPDATE harvest_allocations
		SET claimed_quantity = $3, remaining_quantity = $4, status = $5,
			version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING ` + allocationColumns

	a, err := scanAllocation(r.db.QueryRow(ctx, query,
		u.ID, u.ExpectedVersion, u.ClaimedQuantity, u.RemainingQuantity, string(u.Status)))
	if err == nil {
		return a, nil
	}
	if isPgError(err, PgErrorCodeCheckViolation) {
		return nil, fmt.Errorf("%w: allocation balance constraint violated", domain.ErrInvalidInput)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to update allocation: %w", err)
	}

	exists, err := r.exists(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrAllocationNotFound
	}
	return nil, domain.ErrConcurrentModification
}

// ReleaseClaimedQuantity moves quantity back from claimed to remaining and reopens the allocation
func (r *AllocationRepository) ReleaseClaimedQuantity(ctx context.Context, id string, quantity decimal.Decimal) (*domain.HarvestAllocation, error) {
	if !validID(id) {
		return nil, domain.ErrAllocationNotFound
	}
	a, err := scanAllocation(r.db.QueryRow(ctx, releaseQuantityQuery, id, quantity))
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to release claimed quantity: %w", err)
	}

	exists, err := r.exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrAllocationNotFound
	}
	return nil, fmt.Errorf("%w: release of %s exceeds claimed quantity", domain.ErrInvalidInput, quantity)
}

// DeleteAllocation removes an allocation; a missing row is not an error
func (r *AllocationRepository) DeleteAllocation(ctx context.Context, id string) error {
	if !validID(id) {
		return nil
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM harvest_allocations WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete allocation: %w", err)
	}
	return nil
}

// ExpireAllocations closes every open allocation whose deadline is before cutoff
func (r *AllocationRepository) ExpireAllocations(ctx context.Context, cutoff time.Time) ([]domain.HarvestAllocation, error) {
	query := `
		UPDATE harvest_allocations
		SET status = 'expired', version = version + 1, updated_at = NOW()
		WHERE status = 'open' AND claim_deadline < $1
		RETURNING ` + allocationColumns

	rows, err := r.db.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to expire allocations: %w", err)
	}
	expired, err := collectAllocations(rows)
	if err != nil {
		return nil, err
	}
	// RETURNING order is unspecified
	sort.Slice(expired, func(i, j int) bool {
		if expired[i].CreatedAt.Equal(expired[j].CreatedAt) {
			return expired[i].ID < expired[j].ID
		}
		return expired[i].CreatedAt.Before(expired[j].CreatedAt)
	})
	return expired, nil
}

func (r *AllocationRepository) exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM harvest_allocations WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check allocation: %w", err)
	}
	return exists, nil
}

func collectAllocations(rows pgx.Rows) ([]domain.HarvestAllocation, error) {
	defer rows.Close()
	var result []domain.HarvestAllocation
	for rows.Next() {
		a, err := scanAllocation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read allocations: %w", err)
	}
	return result, nil
}

func scanAllocation(row rowScanner) (*domain.HarvestAllocation, error) {
	var (
		a        domain.HarvestAllocation
		poolType string
		status   string
	)
	err := row.Scan(&a.ID, &a.HarvestID, &a.GardenID, &poolType, &a.Percentage, &a.AllocatedQuantity,
		&a.AllocatedValue, &a.ClaimedQuantity, &a.RemainingQuantity, &status, &a.ClaimDeadline,
		&a.Version, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.PoolType = domain.PoolType(poolType)
	a.Status = domain.AllocationStatus(status)
	return &a, nil
}
