package allocation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/HarvestShare_Go/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func member(id string, labor, investment, plot string) domain.MemberContribution {
	return domain.MemberContribution{
		CustomerID:       "cust-" + id,
		MembershipID:     "mem-" + id,
		LaborHours:       dec(labor),
		InvestmentAmount: dec(investment),
		PlotAreaSqft:     dec(plot),
		IsActive:         true,
	}
}

func TestEngine_CommunalEqualSplit(t *testing.T) {
	members := []domain.MemberContribution{
		member("a", "0", "0", "0"),
		member("b", "5", "0", "0"),
		member("c", "0", "100", "0"),
		member("d", "0", "0", "40"),
	}
	rules := []domain.PoolRule{{PoolType: domain.PoolCommunal, Percentage: dec("100")}}

	dist := NewEngine().Allocate(dec("100"), rules, members)

	require.Len(t, dist.MemberAllocations, 4)
	for _, ma := range dist.MemberAllocations {
		assert.Equal(t, "25.00", ma.AllocatedValue.StringFixed(2))
		assert.Equal(t, domain.PoolCommunal, ma.PoolType)
	}
	assert.Equal(t, 4, dist.Summary.TotalMembers)
	assert.Equal(t, "100.00", dist.Summary.DistributedValue.StringFixed(2))
}

func TestEngine_ProportionalVolunteerSplit(t *testing.T) {
	members := []domain.MemberContribution{
		member("a", "10", "0", "0"),
		member("b", "30", "0", "0"),
	}
	rules := []domain.PoolRule{{PoolType: domain.PoolVolunteer, Percentage: dec("100")}}

	dist := NewEngine().Allocate(dec("100"), rules, members)

	require.Len(t, dist.MemberAllocations, 2)
	assert.Equal(t, "cust-a", dist.MemberAllocations[0].CustomerID)
	assert.Equal(t, "25.00", dist.MemberAllocations[0].AllocatedValue.StringFixed(2))
	assert.Equal(t, "cust-b", dist.MemberAllocations[1].CustomerID)
	assert.Equal(t, "75.00", dist.MemberAllocations[1].AllocatedValue.StringFixed(2))
	assert.True(t, dist.MemberAllocations[1].SharePercentage.Equal(dec("75")))
}

func TestEngine_InvestorAndPlotHolderShares(t *testing.T) {
	members := []domain.MemberContribution{
		member("a", "0", "300", "10"),
		member("b", "0", "100", "30"),
	}
	rules := []domain.PoolRule{
		{PoolType: domain.PoolInvestor, Percentage: dec("50")},
		{PoolType: domain.PoolPlotHolder, Percentage: dec("50")},
	}

	dist := NewEngine().Allocate(dec("200"), rules, members)

	got := map[string]string{}
	for _, ma := range dist.MemberAllocations {
		got[string(ma.PoolType)+"/"+ma.CustomerID] = ma.AllocatedValue.StringFixed(2)
	}
	assert.Equal(t, map[string]string{
		"investor/cust-a":    "75.00",
		"investor/cust-b":    "25.00",
		"plot_holder/cust-a": "25.00",
		"plot_holder/cust-b": "75.00",
	}, got)
}

func TestEngine_MarketAndDonationExcludedFromMembers(t *testing.T) {
	members := []domain.MemberContribution{member("a", "1", "1", "1")}

	dist := NewEngine().Allocate(dec("500"), DefaultRules(), members)

	require.Len(t, dist.Pools, 6)
	for _, ma := range dist.MemberAllocations {
		assert.True(t, ma.PoolType.IsMemberDistributed(), "unexpected member allocation for %s", ma.PoolType)
	}
	assert.Equal(t, "50.00", dist.Summary.MarketValue.StringFixed(2))
	assert.Equal(t, "25.00", dist.Summary.DonationValue.StringFixed(2))
	// a single member receives all four member pools: 100 + 100 + 150 + 75
	assert.Equal(t, "425.00", dist.Summary.DistributedValue.StringFixed(2))
}

func TestEngine_InactiveAndZeroContributionOmitted(t *testing.T) {
	inactive := member("x", "100", "0", "0")
	inactive.IsActive = false
	members := []domain.MemberContribution{
		member("a", "10", "0", "0"),
		member("b", "0", "0", "0"),
		inactive,
	}
	rules := []domain.PoolRule{{PoolType: domain.PoolVolunteer, Percentage: dec("100")}}

	dist := NewEngine().Allocate(dec("80"), rules, members)

	require.Len(t, dist.MemberAllocations, 1)
	assert.Equal(t, "cust-a", dist.MemberAllocations[0].CustomerID)
	assert.Equal(t, "80.00", dist.MemberAllocations[0].AllocatedValue.StringFixed(2))
	assert.Equal(t, 2, dist.Summary.TotalMembers)
}

func TestEngine_ZeroTotalsAndUnhandledPools(t *testing.T) {
	members := []domain.MemberContribution{member("a", "0", "0", "0")}
	rules := []domain.PoolRule{
		{PoolType: domain.PoolVolunteer, Percentage: dec("40")},
		{PoolType: domain.PoolSeedSaving, Percentage: dec("30")},
		{PoolType: domain.PoolReserved, Percentage: dec("30")},
	}

	dist := NewEngine().Allocate(dec("100"), rules, members)

	assert.Empty(t, dist.MemberAllocations)
	assert.True(t, dist.Summary.DistributedValue.IsZero())
	require.Len(t, dist.Pools, 3)
	assert.Equal(t, "30.00", dist.Pools[1].Amount.StringFixed(2))
}

func TestEngine_NoActiveMembersCommunal(t *testing.T) {
	rules := []domain.PoolRule{{PoolType: domain.PoolCommunal, Percentage: dec("100")}}

	dist := NewEngine().Allocate(dec("100"), rules, nil)

	assert.Empty(t, dist.MemberAllocations)
	assert.Equal(t, 0, dist.Summary.TotalMembers)
}

func TestEngine_PoolSumNeverExceedsTotal(t *testing.T) {
	totals := []string{"0", "0.01", "1", "333.33", "500", "999.99", "12345.67"}
	ruleSets := [][]domain.PoolRule{
		DefaultRules(),
		{
			{PoolType: domain.PoolInvestor, Percentage: dec("33.33")},
			{PoolType: domain.PoolVolunteer, Percentage: dec("33.33")},
			{PoolType: domain.PoolCommunal, Percentage: dec("33.34")},
		},
		{
			{PoolType: domain.PoolCommunal, Percentage: dec("12.5")},
			{PoolType: domain.PoolDonation, Percentage: dec("7.5")},
		},
	}
	tolerance := dec("0.01")

	for _, total := range totals {
		for _, rules := range ruleSets {
			dist := NewEngine().Allocate(dec(total), rules, nil)
			sum := decimal.Zero
			for _, p := range dist.Pools {
				sum = sum.Add(p.Amount)
			}
			slack := decimal.NewFromInt(int64(len(rules))).Mul(tolerance).Div(decimal.NewFromInt(2))
			assert.True(t, sum.LessThanOrEqual(dec(total).Add(slack)), "total %s: pools sum to %s", total, sum)
		}
	}
}

func TestEngine_HalfCentRoundsAwayFromZero(t *testing.T) {
	// 10.05 * 50% = 5.025 -> 5.03
	rules := []domain.PoolRule{{PoolType: domain.PoolOpenMarket, Percentage: dec("50")}}

	dist := NewEngine().Allocate(dec("10.05"), rules, nil)

	assert.Equal(t, "5.03", dist.Pools[0].Amount.StringFixed(2))
}

func TestEngine_Deterministic(t *testing.T) {
	members := []domain.MemberContribution{
		member("a", "3", "7", "11"),
		member("b", "13", "17", "19"),
		member("c", "23", "29", "31"),
	}
	first := NewEngine().Allocate(dec("777.77"), DefaultRules(), members)
	second := NewEngine().Allocate(dec("777.77"), DefaultRules(), members)

	assert.Equal(t, first, second)
}

func TestClaimDeadline(t *testing.T) {
	from := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		pool  domain.PoolType
		days  int
		known bool
	}{
		{domain.PoolInvestor, 14, true},
		{domain.PoolVolunteer, 14, true},
		{domain.PoolPlotHolder, 14, true},
		{domain.PoolCommunal, 7, true},
		{domain.PoolOpenMarket, 0, true},
		{domain.PoolDonation, 0, true},
		{domain.PoolSeedSaving, 7, false},
		{domain.PoolType("mystery"), 7, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.pool), func(t *testing.T) {
			days, known := ClaimWindowDays(tt.pool)
			assert.Equal(t, tt.days, days)
			assert.Equal(t, tt.known, known)
			assert.Equal(t, from.AddDate(0, 0, tt.days), ClaimDeadline(tt.pool, from))
		})
	}
}

func TestPoolLabels(t *testing.T) {
	dist := NewEngine().Allocate(dec("500"), []domain.PoolRule{
		{PoolType: domain.PoolPlotHolder, Percentage: dec("30")},
		{PoolType: domain.PoolOpenMarket, Percentage: dec("12.5")},
	}, nil)

	assert.Equal(t, []string{"Plot Holder 30%", "Open Market 12.5%"}, PoolLabels(dist.Pools))
	assert.Empty(t, PoolLabels(nil))
}
