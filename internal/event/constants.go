package event

// Event schema versioning
const (
	// EventSchemaVersion is the current event schema version
	EventSchemaVersion = "1.0"
)

// Log message constants
const (
	// LogMsgEventPublishFailed is logged when a best-effort publish fails
	LogMsgEventPublishFailed = "Event publish failed"

	// LogMsgHandlerErrorFormat formats aggregated handler errors
	LogMsgHandlerErrorFormat = "encountered %d errors while handling event %s: %v"
)
