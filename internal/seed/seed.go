// Package seed loads harvests, allocation rules and member contributions from a JSON file.
// Harvest rows are owned by an external recorder in production; seeding covers local
// runs and demos.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/osse101/HarvestShare_Go/internal/domain"
	"github.com/osse101/HarvestShare_Go/internal/logger"
	"github.com/osse101/HarvestShare_Go/internal/validation"
)

// DefaultUnit is applied to harvests that omit a unit
const DefaultUnit = "lb"

// Target receives seeded records
type Target interface {
	CreateHarvest(ctx context.Context, h *domain.Harvest) error
	CreateRule(ctx context.Context, r *domain.AllocationRule) error
	UpsertMember(ctx context.Context, gardenID string, m domain.MemberContribution) error
}

// Member is a contribution record bound to a garden
type Member struct {
	GardenID string `json:"garden_id"`
	domain.MemberContribution
}

// File is the decoded seed document
type File struct {
	Harvests []domain.Harvest        `json:"harvests"`
	Rules    []domain.AllocationRule `json:"rules"`
	Members  []Member                `json:"members"`
}

// Load reads and schema-validates a seed file
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

// Parse schema-validates and decodes seed data.
// Rules default to active unless is_active is given.
func Parse(data []byte) (*File, error) {
	if err := validation.NewSchemaValidator().ValidateBytes(data, validation.SeedSchema); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	var raw struct {
		Harvests []domain.Harvest `json:"harvests"`
		Rules    []struct {
			domain.AllocationRule
			IsActive *bool `json:"is_active"`
		} `json:"rules"`
		Members []struct {
			GardenID string `json:"garden_id"`
			domain.MemberContribution
			IsActive *bool `json:"is_active"`
		} `json:"members"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode seed file: %w", err)
	}

	f := &File{Harvests: raw.Harvests}
	for _, r := range raw.Rules {
		rule := r.AllocationRule
		rule.IsActive = r.IsActive == nil || *r.IsActive
		f.Rules = append(f.Rules, rule)
	}
	for _, m := range raw.Members {
		member := Member{GardenID: m.GardenID, MemberContribution: m.MemberContribution}
		member.IsActive = m.IsActive == nil || *m.IsActive
		f.Members = append(f.Members, member)
	}
	return f, nil
}

// Apply writes every record of f into target, stopping at the first failure
func Apply(ctx context.Context, target Target, f *File) error {
	for i := range f.Harvests {
		h := f.Harvests[i]
		h.AllocationStatus = domain.HarvestPending
		if h.QualityGrade == "" {
			h.QualityGrade = domain.GradeStandard
		}
		if h.Unit == "" {
			h.Unit = DefaultUnit
		}
		if err := target.CreateHarvest(ctx, &h); err != nil {
			return fmt.Errorf("failed to seed harvest %d: %w", i, err)
		}
	}
	for i := range f.Rules {
		rule := f.Rules[i]
		if err := target.CreateRule(ctx, &rule); err != nil {
			return fmt.Errorf("failed to seed rule %d: %w", i, err)
		}
	}
	for _, m := range f.Members {
		if err := target.UpsertMember(ctx, m.GardenID, m.MemberContribution); err != nil {
			return fmt.Errorf("failed to seed member %s: %w", m.MembershipID, err)
		}
	}

	logger.FromContext(ctx).Info("Seed data applied",
		"harvests", len(f.Harvests),
		"rules", len(f.Rules),
		"members", len(f.Members))
	return nil
}
