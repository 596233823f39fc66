package core

import (
	"errors"
	"fmt"
	"math"
)

// Shared error taxonomy. Packages wrap these sentinels with context via
// fmt.Errorf("pkg: detail: %w", ...) so callers can match with errors.Is.
var (
	// ErrInvalidParameter marks non-physical or out-of-range configuration.
	ErrInvalidParameter = errors.New("core: invalid parameter")

	// ErrNumericalInstability marks a computation that produced or detected
	// non-finite or degenerate values (singular matrices, runaway residuals).
	ErrNumericalInstability = errors.New("core: numerical instability")

	// ErrShapeMismatch marks series or grid length disagreements.
	ErrShapeMismatch = errors.New("core: shape mismatch")
)

// InstabilityError reports a numerical failure at a specific sample so that
// the offending run can be diagnosed. It matches ErrNumericalInstability
// under errors.Is.
type InstabilityError struct {
	Op     string // failing operation, e.g. "kalman"
	Sample int    // index of the sample that triggered the failure
	Detail string
}

// Error implements the error interface.
func (e *InstabilityError) Error() string {
	return fmt.Sprintf("%s: numerical instability at sample %d: %s", e.Op, e.Sample, e.Detail)
}

// Unwrap returns ErrNumericalInstability.
func (e *InstabilityError) Unwrap() error { return ErrNumericalInstability }

// IsFinite reports whether x is neither NaN nor infinite.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// FirstNonFinite returns the index of the first NaN or Inf value in data,
// or -1 if every value is finite.
func FirstNonFinite(data []float64) int {
	for i, v := range data {
		if !IsFinite(v) {
			return i
		}
	}

	return -1
}
