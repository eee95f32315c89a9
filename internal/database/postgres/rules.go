package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/osse101/HarvestShare_Go/internal/domain"
)

// RuleRepository implements repository.RuleRepository and repository.MemberRepository
type RuleRepository struct {
	db *pgxpool.Pool
}

// NewRuleRepository creates a new rule repository
func NewRuleRepository(db *pgxpool.Pool) *RuleRepository {
	return &RuleRepository{db: db}
}

// CreateRule inserts an allocation rule
func (r *RuleRepository) CreateRule(ctx context.Context, rule *domain.AllocationRule) error {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO allocation_rules (id, garden_id, season_id, crop_type, pool_type, percentage, priority,
			min_quantity, max_quantity, is_active, effective_from, effective_until)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		rule.ID, rule.GardenID, rule.SeasonID, rule.CropType, string(rule.PoolType), rule.Percentage, rule.Priority,
		nullDecimal(rule.MinQuantity), nullDecimal(rule.MaxQuantity), rule.IsActive, rule.EffectiveFrom, rule.EffectiveUntil)
	if err != nil {
		return fmt.Errorf("failed to create allocation rule: %w", err)
	}
	return nil
}

// ListRules returns a garden's rules scoped to the filter's season and crop.
// A nil filter scope matches only rules without that scope.
func (r *RuleRepository) ListRules(ctx context.Context, filter domain.RuleFilter) ([]domain.AllocationRule, error) {
	query := `
		SELECT id::text, garden_id, season_id, crop_type, pool_type, percentage, priority,
			min_quantity, max_quantity, is_active, effective_from, effective_until
		FROM allocation_rules
		WHERE garden_id = $1
			AND (NOT $2::boolean OR is_active)
			AND (season_id IS NULL OR season_id = $3)
			AND (crop_type IS NULL OR crop_type = $4)
		ORDER BY priority, pool_type`

	rows, err := r.db.Query(ctx, query, filter.GardenID, filter.ActiveOnly, filter.SeasonID, filter.CropType)
	if err != nil {
		return nil, fmt.Errorf("failed to list allocation rules: %w", err)
	}
	defer rows.Close()

	var result []domain.AllocationRule
	for rows.Next() {
		var (
			rule     domain.AllocationRule
			poolType string
			minQty   decimal.NullDecimal
			maxQty   decimal.NullDecimal
		)
		if err := rows.Scan(&rule.ID, &rule.GardenID, &rule.SeasonID, &rule.CropType, &poolType,
			&rule.Percentage, &rule.Priority, &minQty, &maxQty, &rule.IsActive,
			&rule.EffectiveFrom, &rule.EffectiveUntil); err != nil {
			return nil, fmt.Errorf("failed to scan allocation rule: %w", err)
		}
		rule.PoolType = domain.PoolType(poolType)
		rule.MinQuantity = ptrDecimal(minQty)
		rule.MaxQuantity = ptrDecimal(maxQty)
		result = append(result, rule)
	}
	return result, rows.Err()
}

// UpsertMember inserts or refreshes a member's contribution metrics for a garden
func (r *RuleRepository) UpsertMember(ctx context.Context, gardenID string, m domain.MemberContribution) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO garden_members (garden_id, customer_id, membership_id, labor_hours,
			investment_amount, plot_area_sqft, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (garden_id, membership_id) DO UPDATE SET
			customer_id = EXCLUDED.customer_id,
			labor_hours = EXCLUDED.labor_hours,
			investment_amount = EXCLUDED.investment_amount,
			plot_area_sqft = EXCLUDED.plot_area_sqft,
			is_active = EXCLUDED.is_active`,
		gardenID, m.CustomerID, m.MembershipID, m.LaborHours, m.InvestmentAmount, m.PlotAreaSqft, m.IsActive)
	if err != nil {
		return fmt.Errorf("failed to upsert garden member: %w", err)
	}
	return nil
}

// ListContributions returns every member record of a garden in join order
func (r *RuleRepository) ListContributions(ctx context.Context, gardenID string) ([]domain.MemberContribution, error) {
	rows, err := r.db.Query(ctx, `
		SELECT customer_id, membership_id, labor_hours, investment_amount, plot_area_sqft, is_active
		FROM garden_members
		WHERE garden_id = $1
		ORDER BY joined_at, membership_id`, gardenID)
	if err != nil {
		return nil, fmt.Errorf("failed to list garden members: %w", err)
	}
	defer rows.Close()

	var result []domain.MemberContribution
	for rows.Next() {
		var m domain.MemberContribution
		if err := rows.Scan(&m.CustomerID, &m.MembershipID, &m.LaborHours, &m.InvestmentAmount,
			&m.PlotAreaSqft, &m.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan garden member: %w", err)
		}
		result = append(result, m)
	}
	return result, rows.Err()
}
