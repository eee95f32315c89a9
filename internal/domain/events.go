package domain

// Event type constants published on the event bus.
//
// Event types follow the pattern: <entity>.<action>
const (
	// EventTypeHarvestAllocated is published after all pool allocations of a harvest are persisted
	EventTypeHarvestAllocated = "harvest.allocated"

	// EventTypeAllocationCompensated is published when an allocation run is rolled back
	EventTypeAllocationCompensated = "harvest.allocation_compensated"

	// EventTypeHarvestClaimed is published when a member claim is recorded
	EventTypeHarvestClaimed = "harvest.claimed"

	// EventTypeClaimCompensated is published when a claim is rolled back
	EventTypeClaimCompensated = "harvest.claim_compensated"

	// EventTypeAllocationExpired is published by the expiry sweep
	EventTypeAllocationExpired = "allocation.expired"
)
