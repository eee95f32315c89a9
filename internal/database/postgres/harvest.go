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

const harvestColumns = `
	id::text, garden_id, season_id, crop_type, quantity, unit, quality_grade,
	price_per_unit, estimated_value, allocation_status, harvest_date, created_at, updated_at`

// HarvestRepository implements repository.HarvestRepository for PostgreSQL
type HarvestRepository struct {
	db *pgxpool.Pool
}

// NewHarvestRepository creates a new harvest repository
func NewHarvestRepository(db *pgxpool.Pool) *HarvestRepository {
	return &HarvestRepository{db: db}
}

// CreateHarvest inserts a harvest row. Harvests normally arrive from an external
// recorder; this is used by seeding and tests.
func (r *HarvestRepository) CreateHarvest(ctx context.Context, h *domain.Harvest) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.AllocationStatus == "" {
		h.AllocationStatus = domain.HarvestPending
	}
	var price decimal.NullDecimal
	if h.PricePerUnit.IsPositive() {
		price = decimal.NullDecimal{Decimal: h.PricePerUnit, Valid: true}
	}

	query := `
		INSERT INTO harvests (id, garden_id, season_id, crop_type, quantity, unit, quality_grade,
			price_per_unit, estimated_value, allocation_status, harvest_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, COALESCE($11, NOW()))
		RETURNING harvest_date, created_at, updated_at`

	var harvestDate any
	if !h.HarvestDate.IsZero() {
		harvestDate = h.HarvestDate
	}
	err := r.db.QueryRow(ctx, query,
		h.ID, h.GardenID, emptyToNil(h.SeasonID), h.CropType, h.Quantity, h.Unit, string(h.QualityGrade),
		price, h.EstimatedValue, string(h.AllocationStatus), harvestDate,
	).Scan(&h.HarvestDate, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create harvest: %w", err)
	}
	return nil
}

// GetHarvest retrieves a harvest by id
func (r *HarvestRepository) GetHarvest(ctx context.Context, id string) (*domain.Harvest, error) {
	if !validID(id) {
		return nil, domain.ErrHarvestNotFound
	}
	h, err := scanHarvest(r.db.QueryRow(ctx, `SELECT `+harvestColumns+` FROM harvests WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrHarvestNotFound
		}
		return nil, fmt.Errorf("failed to get harvest: %w", err)
	}
	return h, nil
}

// UpdateHarvestStatus moves a harvest from one status to another under a row lock
func (r *HarvestRepository) UpdateHarvestStatus(ctx context.Context, id string, from, to domain.HarvestStatus) error {
	if !validID(id) {
		return domain.ErrHarvestNotFound
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin harvest transaction: %w", err)
	}
	defer SafeRollback(ctx, tx)

	var current string
	err = tx.QueryRow(ctx, `SELECT allocation_status FROM harvests WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrHarvestNotFound
		}
		return fmt.Errorf("failed to lock harvest: %w", err)
	}
	if domain.HarvestStatus(current) != from {
		return &domain.InvalidStateError{Entity: entityHarvest, ID: id, Expected: string(from), Actual: current}
	}

	if _, err := tx.Exec(ctx,
		`UPDATE harvests SET allocation_status = $2, updated_at = NOW() WHERE id = $1`, id, string(to)); err != nil {
		return fmt.Errorf("failed to update harvest status: %w", err)
	}
	return tx.Commit(ctx)
}

// ListHarvestsByStatus returns harvests in a status, oldest first
func (r *HarvestRepository) ListHarvestsByStatus(ctx context.Context, status domain.HarvestStatus) ([]domain.Harvest, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+harvestColumns+` FROM harvests WHERE allocation_status = $1 ORDER BY created_at, id`, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list harvests: %w", err)
	}
	defer rows.Close()

	var result []domain.Harvest
	for rows.Next() {
		h, err := scanHarvest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan harvest: %w", err)
		}
		result = append(result, *h)
	}
	return result, rows.Err()
}

func scanHarvest(row rowScanner) (*domain.Harvest, error) {
	var (
		h        domain.Harvest
		seasonID *string
		grade    string
		status   string
		price    decimal.NullDecimal
	)
	err := row.Scan(&h.ID, &h.GardenID, &seasonID, &h.CropType, &h.Quantity, &h.Unit, &grade,
		&price, &h.EstimatedValue, &status, &h.HarvestDate, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	h.SeasonID = nilToEmpty(seasonID)
	h.QualityGrade = domain.QualityGrade(grade)
	h.AllocationStatus = domain.HarvestStatus(status)
	if price.Valid {
		h.PricePerUnit = price.Decimal
	}
	return &h, nil
}
