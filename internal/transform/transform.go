package transform

import (
	"fmt"

	"github.com/rgehrsitz/tanda/internal/domain"
)

// RunTransform defines the interface for all what-if transformations of a tanda run.
// Transforms are composable operations that inject events into a run,
// enabling features like template comparison and interactive exploration.
type RunTransform interface {
	// Apply returns a new run with the transform's events appended.
	// The base run is never modified.
	Apply(base domain.TandaRun) (domain.TandaRun, error)

	// Name returns a short identifier for this transform (e.g., "miss_payment").
	Name() string

	// Description returns a human-readable description of what this transform does.
	Description() string

	// Validate checks the transform parameters against the run without applying it.
	Validate(base domain.TandaRun) error
}

// ApplyTransforms applies a sequence of transforms to a base run.
// Each transform receives the output of the previous one.
func ApplyTransforms(base domain.TandaRun, transforms []RunTransform) (domain.TandaRun, error) {
	current := copyRun(base)

	for i, transform := range transforms {
		if transform == nil {
			return domain.TandaRun{}, fmt.Errorf("transform at index %d is nil", i)
		}

		if err := transform.Validate(current); err != nil {
			return domain.TandaRun{}, fmt.Errorf("transform %s validation failed: %w", transform.Name(), err)
		}

		next, err := transform.Apply(current)
		if err != nil {
			return domain.TandaRun{}, fmt.Errorf("transform %s failed: %w", transform.Name(), err)
		}

		current = next
	}

	return current, nil
}

// copyRun returns a run sharing no slices with base
func copyRun(base domain.TandaRun) domain.TandaRun {
	return domain.TandaRun{
		Group:         base.Group.Clone(),
		HorizonMonths: base.HorizonMonths,
		Events:        append([]domain.SimulationEvent(nil), base.Events...),
	}
}

// withEvents appends events to a copy of base
func withEvents(base domain.TandaRun, events ...domain.SimulationEvent) domain.TandaRun {
	run := copyRun(base)
	run.Events = append(run.Events, events...)
	return run
}

// TransformError represents an error that occurred during transformation.
type TransformError struct {
	TransformName string
	Operation     string
	Reason        string
	Err           error
}

func (e *TransformError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transform %s (%s): %s: %v", e.TransformName, e.Operation, e.Reason, e.Err)
	}
	return fmt.Sprintf("transform %s (%s): %s", e.TransformName, e.Operation, e.Reason)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// NewTransformError creates a new TransformError.
func NewTransformError(transformName, operation, reason string, err error) error {
	return &TransformError{
		TransformName: transformName,
		Operation:     operation,
		Reason:        reason,
		Err:           err,
	}
}
