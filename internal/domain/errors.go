package domain

import (
	"errors"
	"fmt"
	"time"
)

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	ErrMsgHarvestNotFound        = "harvest not found"
	ErrMsgAllocationNotFound     = "allocation not found"
	ErrMsgClaimNotFound          = "claim not found"
	ErrMsgInvalidState           = "invalid state"
	ErrMsgDeadlineExpired        = "claim deadline expired"
	ErrMsgNoRemainingQuantity    = "no remaining quantity"
	ErrMsgConcurrentModification = "concurrent modification detected"
	ErrMsgInvalidInput           = "invalid input"
	ErrMsgInvalidClaimTransition = "invalid claim status transition"
)

// Common domain errors
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	ErrHarvestNotFound        = errors.New(ErrMsgHarvestNotFound)
	ErrAllocationNotFound     = errors.New(ErrMsgAllocationNotFound)
	ErrClaimNotFound          = errors.New(ErrMsgClaimNotFound)
	ErrInvalidState           = errors.New(ErrMsgInvalidState)
	ErrDeadlineExpired        = errors.New(ErrMsgDeadlineExpired)
	ErrNoRemainingQuantity    = errors.New(ErrMsgNoRemainingQuantity)
	ErrConcurrentModification = errors.New(ErrMsgConcurrentModification)
	ErrInvalidInput           = errors.New(ErrMsgInvalidInput)
	ErrInvalidClaimTransition = errors.New(ErrMsgInvalidClaimTransition)
)

// InvalidStateError reports an entity found in an unexpected lifecycle state
type InvalidStateError struct {
	Entity   string
	ID       string
	Expected string
	Actual   string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: %s %s is %q, expected %q", ErrMsgInvalidState, e.Entity, e.ID, e.Actual, e.Expected)
}

func (e *InvalidStateError) Unwrap() error {
	return ErrInvalidState
}

// DeadlineExpiredError reports a claim attempted after the allocation's deadline
type DeadlineExpiredError struct {
	AllocationID string
	Deadline     time.Time
	At           time.Time
}

func (e *DeadlineExpiredError) Error() string {
	return fmt.Sprintf("%s: allocation %s closed at %s (attempted %s)",
		ErrMsgDeadlineExpired, e.AllocationID, e.Deadline.Format(time.RFC3339), e.At.Format(time.RFC3339))
}

func (e *DeadlineExpiredError) Unwrap() error {
	return ErrDeadlineExpired
}

// IsNotFound returns true if the error indicates a missing record
func IsNotFound(err error) bool {
	return errors.Is(err, ErrHarvestNotFound) ||
		errors.Is(err, ErrAllocationNotFound) ||
		errors.Is(err, ErrClaimNotFound)
}

// IsClientError returns true if the error is a validation failure the caller must resolve
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrDeadlineExpired) ||
		errors.Is(err, ErrNoRemainingQuantity) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidClaimTransition) ||
		IsNotFound(err)
}

// IsRetryable returns true if the error might succeed on retry
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}
