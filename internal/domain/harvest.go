package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// HarvestStatus is the allocation lifecycle of a harvest
type HarvestStatus string

const (
	HarvestPending   HarvestStatus = "pending"
	HarvestAllocated HarvestStatus = "allocated"
	HarvestClaimed   HarvestStatus = "claimed"
	HarvestComplete  HarvestStatus = "complete"
)

// Harvest represents one recorded harvest event.
// Harvests are created outside the allocation engine with status pending.
type Harvest struct {
	ID               string          `json:"id"`
	GardenID         string          `json:"garden_id"`
	SeasonID         string          `json:"season_id,omitempty"`
	CropType         string          `json:"crop_type"`
	Quantity         decimal.Decimal `json:"quantity"`
	Unit             string          `json:"unit"`
	QualityGrade     QualityGrade    `json:"quality_grade"`
	PricePerUnit     decimal.Decimal `json:"price_per_unit"`
	EstimatedValue   decimal.Decimal `json:"estimated_value"`
	AllocationStatus HarvestStatus   `json:"allocation_status"`
	HarvestDate      time.Time       `json:"harvest_date"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// AllocationRule is a garden-scoped pool policy, optionally narrowed to a season and/or crop.
type AllocationRule struct {
	ID             string           `json:"id"`
	GardenID       string           `json:"garden_id"`
	SeasonID       *string          `json:"season_id,omitempty"`
	CropType       *string          `json:"crop_type,omitempty"`
	PoolType       PoolType         `json:"pool_type"`
	Percentage     decimal.Decimal  `json:"percentage"`
	Priority       int              `json:"priority"`
	MinQuantity    *decimal.Decimal `json:"min_quantity,omitempty"`
	MaxQuantity    *decimal.Decimal `json:"max_quantity,omitempty"`
	IsActive       bool             `json:"is_active"`
	EffectiveFrom  *time.Time       `json:"effective_from,omitempty"`
	EffectiveUntil *time.Time       `json:"effective_until,omitempty"`
}

// RuleFilter narrows a rule lookup. Nil SeasonID/CropType match any scope.
type RuleFilter struct {
	GardenID   string
	SeasonID   *string
	CropType   *string
	ActiveOnly bool
}

// AllocationStatus is the claim lifecycle of one pool allocation
type AllocationStatus string

const (
	AllocationOpen         AllocationStatus = "open"
	AllocationFullyClaimed AllocationStatus = "fully_claimed"
	AllocationExpired      AllocationStatus = "expired"
)

// HarvestAllocation is one pool's share of one harvest.
//
// Invariant: AllocatedQuantity == ClaimedQuantity + RemainingQuantity, RemainingQuantity >= 0.
type HarvestAllocation struct {
	ID                string           `json:"id"`
	HarvestID         string           `json:"harvest_id"`
	GardenID          string           `json:"garden_id"`
	PoolType          PoolType         `json:"pool_type"`
	Percentage        decimal.Decimal  `json:"percentage"`
	AllocatedQuantity decimal.Decimal  `json:"allocated_quantity"`
	AllocatedValue    decimal.Decimal  `json:"allocated_value"`
	ClaimedQuantity   decimal.Decimal  `json:"claimed_quantity"`
	RemainingQuantity decimal.Decimal  `json:"remaining_quantity"`
	Status            AllocationStatus `json:"status"`
	ClaimDeadline     time.Time        `json:"claim_deadline"`
	Version           int64            `json:"version"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// AllocationUpdate is a conditional write against one allocation row.
// The write only applies while the stored version equals ExpectedVersion.
type AllocationUpdate struct {
	ID                string
	ExpectedVersion   int64
	ClaimedQuantity   decimal.Decimal
	RemainingQuantity decimal.Decimal
	Status            AllocationStatus
}

// ClaimStatus is the fulfilment lifecycle of a member claim
type ClaimStatus string

const (
	ClaimPending       ClaimStatus = "pending"
	ClaimReady         ClaimStatus = "ready"
	ClaimPickedUp      ClaimStatus = "picked_up"
	ClaimDelivered     ClaimStatus = "delivered"
	ClaimExpired       ClaimStatus = "expired"
	ClaimForfeited     ClaimStatus = "forfeited"
	ClaimRedistributed ClaimStatus = "redistributed"
)

// HarvestClaim is one member's claim against one allocation
type HarvestClaim struct {
	ID              string          `json:"id"`
	AllocationID    string          `json:"allocation_id"`
	HarvestID       string          `json:"harvest_id"`
	CustomerID      string          `json:"customer_id"`
	MembershipID    string          `json:"membership_id"`
	QuantityClaimed decimal.Decimal `json:"quantity_claimed"`
	ValueClaimed    decimal.Decimal `json:"value_claimed"`
	Status          ClaimStatus     `json:"status"`
	ClaimedAt       time.Time       `json:"claimed_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// MemberContribution holds the per-member metrics used for proportional shares
type MemberContribution struct {
	CustomerID       string          `json:"customer_id"`
	MembershipID     string          `json:"membership_id"`
	LaborHours       decimal.Decimal `json:"labor_hours"`
	InvestmentAmount decimal.Decimal `json:"investment_amount"`
	PlotAreaSqft     decimal.Decimal `json:"plot_area_sqft"`
	IsActive         bool            `json:"is_active"`
}
