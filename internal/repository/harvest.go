package repository

import (
	"context"

	"github.com/osse101/HarvestShare_Go/internal/domain"
)

// HarvestRepository handles harvest persistence.
// Harvest rows are created by an external collaborator; this layer only reads them
// and moves them through the allocation lifecycle.
type HarvestRepository interface {
	// GetHarvest returns domain.ErrHarvestNotFound when the id is unknown
	GetHarvest(ctx context.Context, id string) (*domain.Harvest, error)

	// UpdateHarvestStatus moves a harvest from one status to another.
	// Returns *domain.InvalidStateError when the stored status is not from.
	UpdateHarvestStatus(ctx context.Context, id string, from, to domain.HarvestStatus) error

	// ListHarvestsByStatus returns harvests in the given status ordered by creation
	ListHarvestsByStatus(ctx context.Context, status domain.HarvestStatus) ([]domain.Harvest, error)
}

// RuleRepository reads allocation rules
type RuleRepository interface {
	// ListRules returns rules for filter.GardenID whose season/crop scope is either unset
	// or equal to the filter's. Nil filter values match only unscoped rules.
	ListRules(ctx context.Context, filter domain.RuleFilter) ([]domain.AllocationRule, error)
}

// RuleWriter records allocation rules
type RuleWriter interface {
	CreateRule(ctx context.Context, rule *domain.AllocationRule) error
}

// RuleStore reads and writes allocation rules
type RuleStore interface {
	RuleRepository
	RuleWriter
}

// MemberRepository reads member contribution metrics
type MemberRepository interface {
	ListContributions(ctx context.Context, gardenID string) ([]domain.MemberContribution, error)
}
