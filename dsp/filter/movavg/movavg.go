package movavg

import (
	"fmt"

	"github.com/cwbudde/algo-recon/dsp/core"
)

// DefaultWindow is the reference smoothing window length.
const DefaultWindow = 5

// Filter implements the causal trailing moving average.
type Filter struct {
	window int
}

// New creates a moving-average filter with the given window length.
func New(window int) (*Filter, error) {
	if window <= 0 {
		return nil, fmt.Errorf("movavg: window must be positive, got %d: %w", window, core.ErrInvalidParameter)
	}

	return &Filter{window: window}, nil
}

// Window returns the configured window length.
func (f *Filter) Window() int { return f.window }

// Name returns the strategy identifier used in experiment tables.
func (f *Filter) Name() string { return "movavg" }

// Warmup returns the number of startup samples dominated by the shrinking
// window; metric evaluation excludes them.
func (f *Filter) Warmup() int { return f.window }

// Process returns the filtered series.
func (f *Filter) Process(observed []float64) ([]float64, error) {
	out := make([]float64, len(observed))

	err := f.ProcessInto(out, observed)
	if err != nil {
		return nil, err
	}

	return out, nil
}

// ProcessInto filters observed into dst. Both slices must have the same
// length. dst must not alias observed: the running sum re-reads samples
// that leave the window.
func (f *Filter) ProcessInto(dst, observed []float64) error {
	if len(dst) != len(observed) {
		return fmt.Errorf("movavg: dst length %d does not match input length %d: %w", len(dst), len(observed), core.ErrShapeMismatch)
	}

	var sum float64

	w := float64(f.window)
	for i, x := range observed {
		sum += x

		if i >= f.window {
			sum -= observed[i-f.window]
			dst[i] = sum / w
		} else {
			dst[i] = sum / float64(i+1)
		}
	}

	return nil
}
