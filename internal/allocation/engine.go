package allocation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/osse101/HarvestShare_Go/internal/domain"
	"github.com/osse101/HarvestShare_Go/internal/utils"
)

// Engine computes pool amounts and per-member shares for a harvest value.
// It is pure: identical inputs always produce identical output.
type Engine struct{}

// NewEngine creates a new allocation engine
func NewEngine() *Engine {
	return &Engine{}
}

// contributionTotals aggregates the active members' contribution metrics
type contributionTotals struct {
	laborHours  decimal.Decimal
	investment  decimal.Decimal
	plotArea    decimal.Decimal
	activeCount int
}

func totalContributions(members []domain.MemberContribution) contributionTotals {
	t := contributionTotals{}
	for _, m := range members {
		if !m.IsActive {
			continue
		}
		t.laborHours = t.laborHours.Add(m.LaborHours)
		t.investment = t.investment.Add(m.InvestmentAmount)
		t.plotArea = t.plotArea.Add(m.PlotAreaSqft)
		t.activeCount++
	}
	return t
}

// memberShare returns the member's percentage of the given pool
func memberShare(pool domain.PoolType, m domain.MemberContribution, t contributionTotals) decimal.Decimal {
	switch pool {
	case domain.PoolVolunteer:
		return utils.SharePercent(m.LaborHours, t.laborHours)
	case domain.PoolInvestor:
		return utils.SharePercent(m.InvestmentAmount, t.investment)
	case domain.PoolPlotHolder:
		return utils.SharePercent(m.PlotAreaSqft, t.plotArea)
	case domain.PoolCommunal:
		if t.activeCount == 0 {
			return decimal.Zero
		}
		return decimal.NewFromInt(100).Div(decimal.NewFromInt(int64(t.activeCount)))
	default:
		return decimal.Zero
	}
}

// Allocate splits totalValue across rules and distributes member-facing pools
// among the active members.
//
// Open market and donation pools appear in Pools and the summary only.
// Member allocations worth zero or less are omitted.
func (e *Engine) Allocate(totalValue decimal.Decimal, rules []domain.PoolRule, members []domain.MemberContribution) *domain.Distribution {
	totals := totalContributions(members)

	dist := &domain.Distribution{
		Pools:             make([]domain.PoolAmount, 0, len(rules)),
		MemberAllocations: []domain.MemberAllocation{},
		Summary: domain.DistributionSummary{
			TotalValue:       totalValue,
			TotalMembers:     totals.activeCount,
			DistributedValue: decimal.Zero,
			MarketValue:      decimal.Zero,
			DonationValue:    decimal.Zero,
		},
	}

	for _, rule := range rules {
		amount := utils.Round2(utils.PercentOf(totalValue, rule.Percentage))
		dist.Pools = append(dist.Pools, domain.PoolAmount{
			PoolType:   rule.PoolType,
			Percentage: rule.Percentage,
			Amount:     amount,
		})

		switch rule.PoolType {
		case domain.PoolOpenMarket:
			dist.Summary.MarketValue = dist.Summary.MarketValue.Add(amount)
			continue
		case domain.PoolDonation:
			dist.Summary.DonationValue = dist.Summary.DonationValue.Add(amount)
			continue
		}

		for _, m := range members {
			if !m.IsActive {
				continue
			}
			share := memberShare(rule.PoolType, m, totals)
			value := utils.Round2(utils.PercentOf(amount, share))
			if !value.IsPositive() {
				continue
			}
			dist.MemberAllocations = append(dist.MemberAllocations, domain.MemberAllocation{
				PoolType:        rule.PoolType,
				CustomerID:      m.CustomerID,
				MembershipID:    m.MembershipID,
				SharePercentage: share,
				AllocatedValue:  value,
			})
			dist.Summary.DistributedValue = dist.Summary.DistributedValue.Add(value)
		}
	}

	return dist
}

// ClaimWindowDays returns the claim window for a pool type and whether the
// pool type has a dedicated window. Unknown pool types get the default window.
func ClaimWindowDays(pool domain.PoolType) (int, bool) {
	switch pool {
	case domain.PoolInvestor, domain.PoolVolunteer, domain.PoolPlotHolder:
		return domain.ClaimWindowMemberDays, true
	case domain.PoolCommunal:
		return domain.ClaimWindowCommunalDays, true
	case domain.PoolOpenMarket, domain.PoolDonation:
		return domain.ClaimWindowMarketDays, true
	default:
		return domain.ClaimWindowDefaultDays, false
	}
}

// ClaimDeadline adds the pool's claim window to from
func ClaimDeadline(pool domain.PoolType, from time.Time) time.Time {
	days, _ := ClaimWindowDays(pool)
	return from.AddDate(0, 0, days)
}
