package domain

import "github.com/shopspring/decimal"

// PoolRule is the minimal rule input of the allocation engine
type PoolRule struct {
	PoolType   PoolType        `json:"pool_type"`
	Percentage decimal.Decimal `json:"percentage"`
}

// PoolAmount is one pool's computed share of a harvest's value
type PoolAmount struct {
	PoolType   PoolType        `json:"pool_type"`
	Percentage decimal.Decimal `json:"percentage"`
	Amount     decimal.Decimal `json:"amount"`
}

// MemberAllocation is one member's share of one member-distributed pool
type MemberAllocation struct {
	PoolType        PoolType        `json:"pool_type"`
	CustomerID      string          `json:"customer_id"`
	MembershipID    string          `json:"membership_id"`
	SharePercentage decimal.Decimal `json:"share_percentage"`
	AllocatedValue  decimal.Decimal `json:"allocated_value"`
}

// DistributionSummary totals a distribution
type DistributionSummary struct {
	TotalValue       decimal.Decimal `json:"total_value"`
	TotalMembers     int             `json:"total_members"`
	DistributedValue decimal.Decimal `json:"distributed_value"`
	MarketValue      decimal.Decimal `json:"market_value"`
	DonationValue    decimal.Decimal `json:"donation_value"`
}

// Distribution is the full output of the allocation engine
type Distribution struct {
	Pools             []PoolAmount        `json:"pools"`
	MemberAllocations []MemberAllocation  `json:"member_allocations"`
	Summary           DistributionSummary `json:"summary"`
}

// AllocationResult is returned by AllocateHarvest and consumed by its compensation
type AllocationResult struct {
	HarvestID       string   `json:"harvest_id"`
	AllocationCount int      `json:"allocation_count"`
	AllocationIDs   []string `json:"allocation_ids"`
}

// ClaimRequest is the input of ClaimHarvestShare
type ClaimRequest struct {
	HarvestID         string          `json:"harvest_id" validate:"required"`
	AllocationID      string          `json:"allocation_id" validate:"required"`
	CustomerID        string          `json:"customer_id" validate:"required"`
	MembershipID      string          `json:"membership_id"`
	QuantityRequested decimal.Decimal `json:"quantity_requested" validate:"positive_decimal"`
}

// ClaimResult is returned by ClaimHarvestShare
type ClaimResult struct {
	ClaimID           string          `json:"claim_id"`
	QuantityClaimed   decimal.Decimal `json:"quantity_claimed"`
	ValueClaimed      decimal.Decimal `json:"value_claimed"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`

	// Pre-claim snapshot consumed by the compensating action
	AllocationID      string           `json:"allocation_id"`
	PreviousClaimed   decimal.Decimal  `json:"previous_claimed"`
	PreviousRemaining decimal.Decimal  `json:"previous_remaining"`
	PreviousStatus    AllocationStatus `json:"previous_status"`
}
