package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventHandlerErrors,
			Help: HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Business Metrics
var (
	AllocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameAllocations,
			Help: HelpTextAllocations,
		},
		[]string{LabelPoolType},
	)

	ClaimsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameClaims,
			Help: HelpTextClaims,
		},
		[]string{LabelPoolType},
	)

	ClaimedQuantity = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameClaimedQuantity,
			Help: HelpTextClaimedQuantity,
		},
		[]string{LabelPoolType},
	)

	CompensationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameCompensations,
			Help: HelpTextCompensations,
		},
		[]string{LabelProcedure},
	)

	ClaimConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameClaimConflicts,
			Help: HelpTextClaimConflicts,
		},
	)

	AllocationExpirations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameAllocationExpirations,
			Help: HelpTextAllocationExpirations,
		},
		[]string{LabelPoolType},
	)

	ProcedureDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameProcedureDuration,
			Help:    HelpTextProcedureDuration,
			Buckets: ProcedureLatencyBuckets,
		},
		[]string{LabelProcedure},
	)
)

// ObserveProcedure records the elapsed time since start for procedure.
// Intended for use with defer.
func ObserveProcedure(procedure string, start time.Time) {
	ProcedureDuration.WithLabelValues(procedure).Observe(time.Since(start).Seconds())
}
