package core

import (
	"fmt"
	"math"
)

// TimeGrid describes a uniformly sampled time axis. The sample at index i
// lies at Start + float64(i)*Dt; spacing is constant and strictly positive,
// so the grid is strictly increasing by construction.
type TimeGrid struct {
	Start float64 // time of the first sample
	Dt    float64 // spacing between consecutive samples
	N     int     // number of samples
}

// NewTimeGrid creates a grid of n samples starting at start with spacing dt.
func NewTimeGrid(start, dt float64, n int) (TimeGrid, error) {
	g := TimeGrid{Start: start, Dt: dt, N: n}

	err := g.Validate()
	if err != nil {
		return TimeGrid{}, err
	}

	return g, nil
}

// GridRange creates a grid covering the half-open interval [start, stop)
// with spacing dt. The sample count is ceil((stop-start)/dt), so stop itself
// is excluded.
func GridRange(start, stop, dt float64) (TimeGrid, error) {
	if dt <= 0 || !IsFinite(dt) {
		return TimeGrid{}, fmt.Errorf("core: grid spacing must be positive and finite, got %g: %w", dt, ErrInvalidParameter)
	}

	if stop <= start {
		return TimeGrid{}, fmt.Errorf("core: grid stop %g must exceed start %g: %w", stop, start, ErrInvalidParameter)
	}

	n := int(math.Ceil((stop - start) / dt))

	return NewTimeGrid(start, dt, n)
}

// Validate checks that the grid parameters are physical.
func (g TimeGrid) Validate() error {
	if g.N <= 0 {
		return fmt.Errorf("core: grid must hold at least one sample, got %d: %w", g.N, ErrInvalidParameter)
	}

	if g.Dt <= 0 || !IsFinite(g.Dt) {
		return fmt.Errorf("core: grid spacing must be positive and finite, got %g: %w", g.Dt, ErrInvalidParameter)
	}

	if !IsFinite(g.Start) {
		return fmt.Errorf("core: grid start must be finite, got %g: %w", g.Start, ErrInvalidParameter)
	}

	return nil
}

// Len returns the number of samples in the grid.
func (g TimeGrid) Len() int { return g.N }

// Time returns the time of sample i.
func (g TimeGrid) Time(i int) float64 { return g.Start + float64(i)*g.Dt }

// Times materializes the full time axis.
func (g TimeGrid) Times() []float64 {
	out := make([]float64, g.N)
	for i := range out {
		out[i] = g.Time(i)
	}

	return out
}

// SampleRate returns the sampling rate 1/Dt.
func (g TimeGrid) SampleRate() float64 { return 1 / g.Dt }

// Nyquist returns the Nyquist frequency 1/(2*Dt), the highest frequency the
// grid can represent.
func (g TimeGrid) Nyquist() float64 { return 1 / (2 * g.Dt) }
