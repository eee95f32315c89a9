package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/osse101/HarvestShare_Go/internal/domain"
)

// Type represents the type of an event
type Type string

// Event represents a generic event in the system
type Event struct {
	Version  string                 `json:"version"` // Event schema version (e.g., "1.0")
	Type     Type                   `json:"type"`
	Payload  interface{}            `json:"payload"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// GetMetadataValue extracts a value from the event metadata safely
func (e Event) GetMetadataValue(key string) interface{} {
	if e.Metadata == nil {
		return nil
	}
	return e.Metadata[key]
}

// Harvest event types
const (
	HarvestAllocated      Type = domain.EventTypeHarvestAllocated
	AllocationCompensated Type = domain.EventTypeAllocationCompensated
	HarvestClaimed        Type = domain.EventTypeHarvestClaimed
	ClaimCompensated      Type = domain.EventTypeClaimCompensated
	AllocationExpired     Type = domain.EventTypeAllocationExpired
)

// Typed event payloads for type safety

// PoolAllocationV1 describes one pool row created by an allocation run
type PoolAllocationV1 struct {
	AllocationID      string `json:"allocation_id"`
	PoolType          string `json:"pool_type"`
	AllocatedQuantity string `json:"allocated_quantity"`
	AllocatedValue    string `json:"allocated_value"`
}

// HarvestAllocatedPayloadV1 is the typed payload for harvest.allocated
type HarvestAllocatedPayloadV1 struct {
	HarvestID   string             `json:"harvest_id"`
	GardenID    string             `json:"garden_id"`
	Allocations []PoolAllocationV1 `json:"allocations"`
	Timestamp   int64              `json:"timestamp"`
}

// AllocationCompensatedPayloadV1 is the typed payload for harvest.allocation_compensated
type AllocationCompensatedPayloadV1 struct {
	HarvestID     string   `json:"harvest_id"`
	AllocationIDs []string `json:"allocation_ids"`
	Timestamp     int64    `json:"timestamp"`
}

// HarvestClaimedPayloadV1 is the typed payload for harvest.claimed
type HarvestClaimedPayloadV1 struct {
	ClaimID           string `json:"claim_id"`
	AllocationID      string `json:"allocation_id"`
	HarvestID         string `json:"harvest_id"`
	CustomerID        string `json:"customer_id"`
	PoolType          string `json:"pool_type"`
	QuantityClaimed   string `json:"quantity_claimed"`
	ValueClaimed      string `json:"value_claimed"`
	RemainingQuantity string `json:"remaining_quantity"`
	Timestamp         int64  `json:"timestamp"`
}

// ClaimCompensatedPayloadV1 is the typed payload for harvest.claim_compensated
type ClaimCompensatedPayloadV1 struct {
	ClaimID          string `json:"claim_id"`
	AllocationID     string `json:"allocation_id"`
	QuantityReleased string `json:"quantity_released"`
	Timestamp        int64  `json:"timestamp"`
}

// AllocationExpiredPayloadV1 is the typed payload for allocation.expired
type AllocationExpiredPayloadV1 struct {
	AllocationID      string `json:"allocation_id"`
	HarvestID         string `json:"harvest_id"`
	PoolType          string `json:"pool_type"`
	RemainingQuantity string `json:"remaining_quantity"`
	ClaimDeadline     int64  `json:"claim_deadline"`
}

// Type-safe event constructors

// NewHarvestAllocatedEvent creates a harvest.allocated event
func NewHarvestAllocatedEvent(harvest *domain.Harvest, allocations []domain.HarvestAllocation) Event {
	pools := make([]PoolAllocationV1, 0, len(allocations))
	for _, a := range allocations {
		pools = append(pools, PoolAllocationV1{
			AllocationID:      a.ID,
			PoolType:          string(a.PoolType),
			AllocatedQuantity: a.AllocatedQuantity.String(),
			AllocatedValue:    a.AllocatedValue.StringFixed(domain.MoneyPlaces),
		})
	}
	return Event{
		Version: EventSchemaVersion,
		Type:    HarvestAllocated,
		Payload: HarvestAllocatedPayloadV1{
			HarvestID:   harvest.ID,
			GardenID:    harvest.GardenID,
			Allocations: pools,
			Timestamp:   time.Now().Unix(),
		},
	}
}

// NewAllocationCompensatedEvent creates a harvest.allocation_compensated event
func NewAllocationCompensatedEvent(result *domain.AllocationResult) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    AllocationCompensated,
		Payload: AllocationCompensatedPayloadV1{
			HarvestID:     result.HarvestID,
			AllocationIDs: result.AllocationIDs,
			Timestamp:     time.Now().Unix(),
		},
	}
}

// NewHarvestClaimedEvent creates a harvest.claimed event
func NewHarvestClaimedEvent(claim *domain.HarvestClaim, pool domain.PoolType, remaining string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    HarvestClaimed,
		Payload: HarvestClaimedPayloadV1{
			ClaimID:           claim.ID,
			AllocationID:      claim.AllocationID,
			HarvestID:         claim.HarvestID,
			CustomerID:        claim.CustomerID,
			PoolType:          string(pool),
			QuantityClaimed:   claim.QuantityClaimed.String(),
			ValueClaimed:      claim.ValueClaimed.StringFixed(domain.MoneyPlaces),
			RemainingQuantity: remaining,
			Timestamp:         claim.ClaimedAt.Unix(),
		},
		Metadata: map[string]interface{}{
			"membership_id": claim.MembershipID,
		},
	}
}

// NewClaimCompensatedEvent creates a harvest.claim_compensated event
func NewClaimCompensatedEvent(result *domain.ClaimResult) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    ClaimCompensated,
		Payload: ClaimCompensatedPayloadV1{
			ClaimID:          result.ClaimID,
			AllocationID:     result.AllocationID,
			QuantityReleased: result.QuantityClaimed.String(),
			Timestamp:        time.Now().Unix(),
		},
	}
}

// NewAllocationExpiredEvent creates an allocation.expired event
func NewAllocationExpiredEvent(a *domain.HarvestAllocation) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    AllocationExpired,
		Payload: AllocationExpiredPayloadV1{
			AllocationID:      a.ID,
			HarvestID:         a.HarvestID,
			PoolType:          string(a.PoolType),
			RemainingQuantity: a.RemainingQuantity.String(),
			ClaimDeadline:     a.ClaimDeadline.Unix(),
		},
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes an event to all subscribers.
// Handlers run synchronously in subscription order.
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf(LogMsgHandlerErrorFormat, len(errs), event.Type, errs)
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// PublishBestEffort publishes on bus and logs instead of returning failures.
// A nil bus is a no-op.
func PublishBestEffort(ctx context.Context, bus Bus, evt Event, log interface {
	Warn(msg string, args ...any)
}) {
	if bus == nil {
		return
	}
	if err := bus.Publish(ctx, evt); err != nil {
		log.Warn(LogMsgEventPublishFailed, "event_type", evt.Type, "error", err)
	}
}
