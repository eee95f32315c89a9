package metrics

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/osse101/HarvestShare_Go/internal/event"
	"github.com/osse101/HarvestShare_Go/internal/logger"
)

// EventMetricsCollector subscribes to events and records metrics
type EventMetricsCollector struct{}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to all harvest events
func (e *EventMetricsCollector) Register(bus event.Bus) error {
	eventTypes := []event.Type{
		event.HarvestAllocated,
		event.AllocationCompensated,
		event.HarvestClaimed,
		event.ClaimCompensated,
		event.AllocationExpired,
	}

	for _, eventType := range eventTypes {
		bus.Subscribe(eventType, e.HandleEvent)
	}

	return nil
}

// HandleEvent processes events and updates metrics
func (e *EventMetricsCollector) HandleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	EventsPublished.WithLabelValues(string(evt.Type)).Inc()

	var err error
	switch evt.Type {
	case event.HarvestAllocated:
		var p event.HarvestAllocatedPayloadV1
		if p, err = event.DecodePayload[event.HarvestAllocatedPayloadV1](evt.Payload); err == nil {
			for _, a := range p.Allocations {
				AllocationsTotal.WithLabelValues(a.PoolType).Inc()
			}
		}

	case event.AllocationCompensated:
		CompensationsTotal.WithLabelValues(ProcedureCompensateAllocate).Inc()

	case event.HarvestClaimed:
		var p event.HarvestClaimedPayloadV1
		if p, err = event.DecodePayload[event.HarvestClaimedPayloadV1](evt.Payload); err == nil {
			ClaimsTotal.WithLabelValues(p.PoolType).Inc()
			if qty, perr := decimal.NewFromString(p.QuantityClaimed); perr == nil {
				ClaimedQuantity.WithLabelValues(p.PoolType).Add(qty.InexactFloat64())
			}
		}

	case event.ClaimCompensated:
		CompensationsTotal.WithLabelValues(ProcedureCompensateClaim).Inc()

	case event.AllocationExpired:
		var p event.AllocationExpiredPayloadV1
		if p, err = event.DecodePayload[event.AllocationExpiredPayloadV1](evt.Payload); err == nil {
			AllocationExpirations.WithLabelValues(p.PoolType).Inc()
		}
	}

	if err != nil {
		EventHandlerErrors.WithLabelValues(string(evt.Type)).Inc()
		log.Debug(LogMsgEventPayloadUnreadable, "type", evt.Type, "error", err)
		return nil
	}

	log.Debug(LogMsgMetricsRecorded, "type", evt.Type)
	return nil
}
