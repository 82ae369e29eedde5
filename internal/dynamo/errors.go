package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidConfig indicates a malformed run configuration
	// (non-positive dt or duration).
	ErrInvalidConfig = errors.New("dynamo: invalid run configuration")

	// ErrSampleInterval indicates a sampling interval that is not a
	// positive integer multiple of dt.
	ErrSampleInterval = errors.New("dynamo: sample interval not commensurate with dt")

	// ErrInvalidState indicates a state vector with NaN or Inf values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrParameterBounds indicates a model parameter outside its valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrDimensionMismatch indicates mismatched state/system dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")
)

// RunError wraps an error with the step and simulated time it occurred at.
type RunError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *RunError) Unwrap() error {
	return e.Wrapped
}
