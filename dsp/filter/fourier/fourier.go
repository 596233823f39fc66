package fourier

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
	"github.com/mjibson/go-dsp/fft"

	"github.com/cwbudde/algo-recon/dsp/core"
)

// DefaultCutoff is the reference cutoff frequency in cycles per time unit.
const DefaultCutoff = 0.5

// defaultImagTolerance scales the permitted residual imaginary part of the
// inverse transform relative to the input peak.
const defaultImagTolerance = 1e-9

// Filter implements the frequency-domain low-pass reconstruction.
type Filter struct {
	cutoff  float64
	grid    core.TimeGrid
	imagTol float64
}

// Option configures a Filter.
type Option func(*Filter) error

// WithImagTolerance overrides the relative tolerance for the residual
// imaginary part of the inverse transform (default 1e-9).
func WithImagTolerance(factor float64) Option {
	return func(f *Filter) error {
		if factor <= 0 || !core.IsFinite(factor) {
			return fmt.Errorf("fourier: imaginary tolerance must be positive, got %g: %w", factor, core.ErrInvalidParameter)
		}

		f.imagTol = factor

		return nil
	}
}

// New creates a low-pass filter with the given cutoff frequency for series
// sampled on the given grid. A cutoff at or above the grid's Nyquist
// frequency is allowed and degenerates to the identity.
func New(cutoffHz float64, grid core.TimeGrid, opts ...Option) (*Filter, error) {
	if cutoffHz <= 0 || !core.IsFinite(cutoffHz) {
		return nil, fmt.Errorf("fourier: cutoff must be positive, got %g: %w", cutoffHz, core.ErrInvalidParameter)
	}

	err := grid.Validate()
	if err != nil {
		return nil, err
	}

	f := &Filter{
		cutoff:  cutoffHz,
		grid:    grid,
		imagTol: defaultImagTolerance,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		err := opt(f)
		if err != nil {
			return nil, err
		}
	}

	return f, nil
}

// Cutoff returns the configured cutoff frequency.
func (f *Filter) Cutoff() float64 { return f.cutoff }

// Name returns the strategy identifier used in experiment tables.
func (f *Filter) Name() string { return "fourier" }

// Warmup returns 0: the filter is non-causal and has no startup transient.
func (f *Filter) Warmup() int { return 0 }

// Process returns the low-pass filtered series. The input length must
// match the grid the filter was created for.
func (f *Filter) Process(observed []float64) ([]float64, error) {
	n := f.grid.Len()
	if len(observed) != n {
		return nil, fmt.Errorf("fourier: input length %d does not match grid length %d: %w", len(observed), n, core.ErrShapeMismatch)
	}

	// Every representable frequency lies at or below Nyquist, so the mask
	// would keep all bins; skip the round trip.
	if f.cutoff >= f.grid.Nyquist() {
		return core.Clone(observed), nil
	}

	spec := fft.FFTReal(observed)

	// Bin k carries frequency k/(n*dt) for the lower half and (k-n)/(n*dt)
	// for the mirrored upper half. Masking on the magnitude keeps the
	// spectrum conjugate-symmetric.
	binWidth := 1 / (float64(n) * f.grid.Dt)
	for k := range spec {
		kk := k
		if 2*k > n {
			kk = k - n
		}

		if math.Abs(float64(kk))*binWidth > f.cutoff {
			spec[k] = 0
		}
	}

	inv := fft.IFFT(spec)

	out := make([]float64, n)
	maxImag := 0.0
	maxImagAt := 0

	for i, c := range inv {
		out[i] = real(c)

		im := math.Abs(imag(c))
		if im > maxImag {
			maxImag = im
			maxImagAt = i
		}
	}

	if maxImag > f.imagTol*vecmath.MaxAbs(observed) {
		return nil, &core.InstabilityError{
			Op:     "fourier",
			Sample: maxImagAt,
			Detail: fmt.Sprintf("residual imaginary part %g exceeds tolerance", maxImag),
		}
	}

	if idx := core.FirstNonFinite(out); idx >= 0 {
		return nil, &core.InstabilityError{
			Op:     "fourier",
			Sample: idx,
			Detail: fmt.Sprintf("non-finite value %g after inverse transform", out[idx]),
		}
	}

	return out, nil
}
