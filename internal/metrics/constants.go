package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Event metric names
const (
	MetricNameEventsPublished    = "events_published_total"
	MetricNameEventHandlerErrors = "event_handler_errors_total"
)

// Business metric names
const (
	MetricNameAllocations           = "harvest_allocations_total"
	MetricNameClaims                = "harvest_claims_total"
	MetricNameClaimedQuantity       = "harvest_claimed_quantity_total"
	MetricNameCompensations         = "harvest_compensations_total"
	MetricNameClaimConflicts        = "harvest_claim_conflicts_total"
	MetricNameAllocationExpirations = "allocation_expirations_total"
	MetricNameProcedureDuration     = "harvest_procedure_duration_seconds"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Event metric help text
const (
	HelpTextEventsPublished    = "Total number of events published"
	HelpTextEventHandlerErrors = "Total number of event handler errors"
)

// Business metric help text
const (
	HelpTextAllocations           = "Total number of pool allocations created"
	HelpTextClaims                = "Total number of claims recorded"
	HelpTextClaimedQuantity       = "Total harvest quantity claimed"
	HelpTextCompensations         = "Total number of compensating rollbacks executed"
	HelpTextClaimConflicts        = "Total number of concurrent claim conflicts retried"
	HelpTextAllocationExpirations = "Total number of allocations expired past their claim deadline"
	HelpTextProcedureDuration     = "Duration of harvest procedures in seconds"
)

// ============================================================================
// Metric Label Names
// ============================================================================

// Common label names used across metrics
const (
	LabelMethod    = "method"
	LabelPath      = "path"
	LabelStatus    = "status"
	LabelType      = "type"
	LabelPoolType  = "pool_type"
	LabelProcedure = "procedure"
)

// Procedure label values
const (
	ProcedureAllocate           = "allocate"
	ProcedureClaim              = "claim"
	ProcedureCompensateAllocate = "compensate_allocate"
	ProcedureCompensateClaim    = "compensate_claim"
)

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds, from 1ms to 10s.
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// ProcedureLatencyBuckets covers in-memory runs (sub-millisecond) up to slow database round trips.
var ProcedureLatencyBuckets = []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5}

// ============================================================================
// Log Messages
// ============================================================================

// Debug log messages
const (
	LogMsgEventPayloadUnreadable = "Event payload could not be decoded"
	LogMsgMetricsRecorded        = "Metrics recorded for event"
)
