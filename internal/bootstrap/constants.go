package bootstrap

import "time"

// Shutdown settings
const (
	ShutdownTimeout = 30 * time.Second
)

// Log messages
const (
	LogMsgLoggingInitialized         = "Logging initialized"
	LogMsgStartingApp                = "Starting harvest share service"
	LogMsgConfigLoaded               = "Configuration loaded"
	LogMsgStoreOpened                = "Store opened"
	LogMsgSeedSkipped                = "SEED_FILE is only applied to the memory store; ignoring"
	LogMsgSeedApplied                = "Seed data applied"
	LogMsgRuleCacheDisabled          = "Rule cache disabled"
	LogMsgEventSystemInitialized     = "Event system initialized"
	LogMsgMetricsCollectorRegistered = "Metrics collector registered"
	LogMsgServicesInitialized        = "Services initialized"
	LogMsgShuttingDown               = "Shutting down"
	LogMsgServerForcedShutdown       = "Server forced to shutdown"
	LogMsgExpiryWorkerShutdownFailed = "Expiry worker shutdown failed"
	LogMsgStopped                    = "Service stopped"
)

// Error messages
const (
	ErrMsgFailedOpenStore       = "failed to open store"
	ErrMsgFailedLoadSeed        = "failed to load seed data"
	ErrMsgFailedRegisterMetrics = "failed to register metrics collector"
)
