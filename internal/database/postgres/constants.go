package postgres

// PostgreSQL error codes
const (
	PgErrorCodeForeignKeyViolation = "23503"
	PgErrorCodeCheckViolation      = "23514"
)

// Entity names used in state errors
const (
	entityHarvest = "harvest"
	entityClaim   = "claim"
)

// Log messages
const (
	LogMsgFailedToRollback = "Failed to rollback transaction"
)
