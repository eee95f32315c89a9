package worker

import "errors"

// ErrPoolStopped is returned when enqueueing on a stopped pool
var ErrPoolStopped = errors.New("worker pool stopped")

// ============================================================================
// Log Messages - Worker Pool
// ============================================================================

// LogMsgWorkerJobFailed is logged when a worker fails to process a job
const LogMsgWorkerJobFailed = "Worker job failed"

// ============================================================================
// Log Messages - Expiry Worker
// ============================================================================

// Log messages for expiry worker operations
const (
	LogMsgExpirySweepScheduled = "Expiry sweep scheduled"
	LogMsgExpirySweepStarting  = "Expiry sweep starting"
	LogMsgExpirySweepCompleted = "Expiry sweep completed"
	LogMsgExpirySweepFailed    = "Expiry sweep failed"
	LogMsgHarvestCompleted     = "Harvest completed"
	LogMsgCompletionFailed     = "Harvest completion check failed"
)

// ============================================================================
// Test Configuration
// ============================================================================

// Test pool configuration values used in pool_test.go
const (
	TestWorkerCount           = 2
	TestQueueSize             = 10
	TestExpectedJobCount      = 2
	TestWorkerProcessWaitTime = 100 // milliseconds
)
