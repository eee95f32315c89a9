package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/osse101/HarvestShare_Go/internal/domain"
)

const claimColumns = `
	id::text, allocation_id::text, harvest_id::text, customer_id, membership_id,
	quantity_claimed, value_claimed, status, claimed_at, updated_at`

// ClaimRepository implements repository.ClaimRepository for PostgreSQL
type ClaimRepository struct {
	db *pgxpool.Pool
}

// NewClaimRepository creates a new claim repository
func NewClaimRepository(db *pgxpool.Pool) *ClaimRepository {
	return &ClaimRepository{db: db}
}

// CreateClaim inserts a claim and fills its generated fields
func (r *ClaimRepository) CreateClaim(ctx context.Context, c *domain.HarvestClaim) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	query := `
		INSERT INTO harvest_claims (id, allocation_id, harvest_id, customer_id, membership_id,
			quantity_claimed, value_claimed, status, claimed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		c.ID, c.AllocationID, c.HarvestID, c.CustomerID, c.MembershipID,
		c.QuantityClaimed, c.ValueClaimed, string(c.Status), c.ClaimedAt,
	).Scan(&c.UpdatedAt)
	if err != nil {
		if isPgError(err, PgErrorCodeForeignKeyViolation) {
			return fmt.Errorf("failed to create claim: %w", domain.ErrAllocationNotFound)
		}
		return fmt.Errorf("failed to create claim: %w", err)
	}
	return nil
}

// GetClaim retrieves a claim by id
func (r *ClaimRepository) GetClaim(ctx context.Context, id string) (*domain.HarvestClaim, error) {
	if !validID(id) {
		return nil, domain.ErrClaimNotFound
	}
	c, err := scanClaim(r.db.QueryRow(ctx, `SELECT `+claimColumns+` FROM harvest_claims WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrClaimNotFound
		}
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}
	return c, nil
}

// ListClaimsByAllocation returns an allocation's claims oldest first
func (r *ClaimRepository) ListClaimsByAllocation(ctx context.Context, allocationID string) ([]domain.HarvestClaim, error) {
	if !validID(allocationID) {
		return nil, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+claimColumns+` FROM harvest_claims WHERE allocation_id = $1 ORDER BY claimed_at, id`, allocationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	defer rows.Close()

	var result []domain.HarvestClaim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

// UpdateClaimStatus moves a claim between statuses under a row lock
func (r *ClaimRepository) UpdateClaimStatus(ctx context.Context, id string, from, to domain.ClaimStatus) error {
	if !validID(id) {
		return domain.ErrClaimNotFound
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin claim transaction: %w", err)
	}
	defer SafeRollback(ctx, tx)

	var current string
	err = tx.QueryRow(ctx, `SELECT status FROM harvest_claims WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrClaimNotFound
		}
		return fmt.Errorf("failed to lock claim: %w", err)
	}
	if domain.ClaimStatus(current) != from {
		return &domain.InvalidStateError{Entity: entityClaim, ID: id, Expected: string(from), Actual: current}
	}

	if _, err := tx.Exec(ctx,
		`UPDATE harvest_claims SET status = $2, updated_at = NOW() WHERE id = $1`, id, string(to)); err != nil {
		return fmt.Errorf("failed to update claim status: %w", err)
	}
	return tx.Commit(ctx)
}

// DeleteClaimAndRelease deletes a claim and releases its quantity in one transaction
func (r *ClaimRepository) DeleteClaimAndRelease(ctx context.Context, id string) (*domain.HarvestAllocation, error) {
	if !validID(id) {
		return nil, domain.ErrClaimNotFound
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin claim transaction: %w", err)
	}
	defer SafeRollback(ctx, tx)

	var (
		allocationID string
		quantity     decimal.Decimal
	)
	err = tx.QueryRow(ctx,
		`DELETE FROM harvest_claims WHERE id = $1 RETURNING allocation_id::text, quantity_claimed`, id,
	).Scan(&allocationID, &quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrClaimNotFound
		}
		return nil, fmt.Errorf("failed to delete claim: %w", err)
	}

	a, err := scanAllocation(tx.QueryRow(ctx, releaseQuantityQuery, allocationID, quantity))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: release of %s exceeds claimed quantity of allocation %s",
				domain.ErrInvalidInput, quantity, allocationID)
		}
		return nil, fmt.Errorf("failed to release claimed quantity: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit claim release: %w", err)
	}
	return a, nil
}

func scanClaim(row rowScanner) (*domain.HarvestClaim, error) {
	var (
		c      domain.HarvestClaim
		status string
	)
	err := row.Scan(&c.ID, &c.AllocationID, &c.HarvestID, &c.CustomerID, &c.MembershipID,
		&c.QuantityClaimed, &c.ValueClaimed, &status, &c.ClaimedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Status = domain.ClaimStatus(status)
	return &c, nil
}
