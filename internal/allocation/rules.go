package allocation

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/osse101/HarvestShare_Go/internal/domain"
)

// DefaultRules returns the rule set used when a garden has no applicable rules.
// A fresh slice is returned on every call.
func DefaultRules() []domain.PoolRule {
	return []domain.PoolRule{
		{PoolType: domain.PoolInvestor, Percentage: decimal.NewFromInt(20)},
		{PoolType: domain.PoolVolunteer, Percentage: decimal.NewFromInt(20)},
		{PoolType: domain.PoolPlotHolder, Percentage: decimal.NewFromInt(30)},
		{PoolType: domain.PoolCommunal, Percentage: decimal.NewFromInt(15)},
		{PoolType: domain.PoolOpenMarket, Percentage: decimal.NewFromInt(10)},
		{PoolType: domain.PoolDonation, Percentage: decimal.NewFromInt(5)},
	}
}

// specificity tiers, most specific first
const (
	tierSeasonCrop = iota
	tierSeason
	tierCrop
	tierGarden
	tierCount
)

func ruleTier(r domain.AllocationRule) int {
	switch {
	case r.SeasonID != nil && r.CropType != nil:
		return tierSeasonCrop
	case r.SeasonID != nil:
		return tierSeason
	case r.CropType != nil:
		return tierCrop
	default:
		return tierGarden
	}
}

// ruleApplies reports whether a stored rule is usable for harvest at now
func ruleApplies(r domain.AllocationRule, harvest *domain.Harvest, now time.Time) bool {
	if !r.IsActive || r.GardenID != harvest.GardenID {
		return false
	}
	if r.SeasonID != nil && *r.SeasonID != harvest.SeasonID {
		return false
	}
	if r.CropType != nil && *r.CropType != harvest.CropType {
		return false
	}
	if r.EffectiveFrom != nil && now.Before(*r.EffectiveFrom) {
		return false
	}
	if r.EffectiveUntil != nil && now.After(*r.EffectiveUntil) {
		return false
	}
	if r.MinQuantity != nil && harvest.Quantity.LessThan(*r.MinQuantity) {
		return false
	}
	if r.MaxQuantity != nil && harvest.Quantity.GreaterThan(*r.MaxQuantity) {
		return false
	}
	return true
}

// SelectRules picks the applicable rules for harvest from the garden's stored rules.
//
// Only the most specific tier present is used: season+crop, then season, then crop,
// then the garden default. The result is ordered by priority, ties broken by pool type.
// If nothing applies, DefaultRules is returned and usedDefault is true.
func SelectRules(harvest *domain.Harvest, stored []domain.AllocationRule, now time.Time) (rules []domain.PoolRule, usedDefault bool) {
	var tiers [tierCount][]domain.AllocationRule
	for _, r := range stored {
		if ruleApplies(r, harvest, now) {
			t := ruleTier(r)
			tiers[t] = append(tiers[t], r)
		}
	}

	for _, candidates := range tiers {
		if len(candidates) == 0 {
			continue
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			if candidates[i].Priority != candidates[j].Priority {
				return candidates[i].Priority < candidates[j].Priority
			}
			return candidates[i].PoolType < candidates[j].PoolType
		})
		rules = make([]domain.PoolRule, 0, len(candidates))
		for _, r := range candidates {
			rules = append(rules, domain.PoolRule{PoolType: r.PoolType, Percentage: r.Percentage})
		}
		return rules, false
	}

	return DefaultRules(), true
}

// ruleFilter builds the repository lookup for a harvest's garden, season and crop
func ruleFilter(harvest *domain.Harvest) domain.RuleFilter {
	f := domain.RuleFilter{GardenID: harvest.GardenID, ActiveOnly: true}
	if harvest.SeasonID != "" {
		season := harvest.SeasonID
		f.SeasonID = &season
	}
	if harvest.CropType != "" {
		crop := harvest.CropType
		f.CropType = &crop
	}
	return f
}
