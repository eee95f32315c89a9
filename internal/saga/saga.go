// Package saga runs do/undo step pairs as one logical unit.
//
// Steps execute in order. When a step fails, every step that already completed is
// compensated in reverse order with the value its do function returned. Compensation
// runs on a context detached from cancellation so an aborted request still unwinds.
package saga

import (
	"context"
	"errors"
	"fmt"

	"github.com/osse101/HarvestShare_Go/internal/logger"
)

// Step is one unit of a saga
type Step interface {
	Name() string
	Execute(ctx context.Context) error
	Compensate(ctx context.Context) error
}

// TypedStep pairs a do function with the undo that consumes its result
type TypedStep[T any] struct {
	name   string
	do     func(ctx context.Context) (T, error)
	undo   func(ctx context.Context, result T) error
	result T
	done   bool
}

// NewStep creates a step. undo may be nil for steps with nothing to revert.
func NewStep[T any](name string, do func(ctx context.Context) (T, error), undo func(ctx context.Context, result T) error) *TypedStep[T] {
	return &TypedStep[T]{name: name, do: do, undo: undo}
}

func (s *TypedStep[T]) Name() string { return s.name }

// Result returns the value produced by the do function
func (s *TypedStep[T]) Result() T { return s.result }

// Execute runs the do function and records its result
func (s *TypedStep[T]) Execute(ctx context.Context) error {
	result, err := s.do(ctx)
	if err != nil {
		return err
	}
	s.result = result
	s.done = true
	return nil
}

// Compensate runs the undo function once for a completed step
func (s *TypedStep[T]) Compensate(ctx context.Context) error {
	if !s.done || s.undo == nil {
		return nil
	}
	if err := s.undo(ctx, s.result); err != nil {
		return err
	}
	s.done = false
	return nil
}

// StepError reports the failing step and any compensation failures
type StepError struct {
	Step             string
	Err              error
	CompensationErrs []error
}

func (e *StepError) Error() string {
	msg := fmt.Sprintf("saga step %q failed: %v", e.Step, e.Err)
	if len(e.CompensationErrs) > 0 {
		msg += fmt.Sprintf(" (compensation errors: %v)", errors.Join(e.CompensationErrs...))
	}
	return msg
}

func (e *StepError) Unwrap() []error {
	return append([]error{e.Err}, e.CompensationErrs...)
}

// Run executes steps in order and compensates completed steps on the first failure
func Run(ctx context.Context, steps ...Step) error {
	log := logger.FromContext(ctx)

	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return compensate(ctx, steps[:i], step.Name(), err)
		}
		if err := step.Execute(ctx); err != nil {
			log.Warn("Saga step failed, compensating", "step", step.Name(), "completed", i, "error", err)
			return compensate(ctx, steps[:i], step.Name(), err)
		}
		log.Debug("Saga step completed", "step", step.Name())
	}
	return nil
}

// Compensate undoes already executed steps in reverse order.
// It is used when a failure happens after Run returned successfully.
func Compensate(ctx context.Context, steps ...Step) error {
	var errs []error
	undoCtx := context.WithoutCancel(ctx)
	for i := len(steps) - 1; i >= 0; i-- {
		if err := steps[i].Compensate(undoCtx); err != nil {
			logger.FromContext(ctx).Error("Saga compensation failed", "step", steps[i].Name(), "error", err)
			errs = append(errs, fmt.Errorf("compensate %s: %w", steps[i].Name(), err))
		}
	}
	return errors.Join(errs...)
}

func compensate(ctx context.Context, completed []Step, failed string, cause error) error {
	stepErr := &StepError{Step: failed, Err: cause}
	if err := Compensate(ctx, completed...); err != nil {
		stepErr.CompensationErrs = []error{err}
	}
	return stepErr
}
