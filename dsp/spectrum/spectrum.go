package spectrum

import (
	"fmt"
	"math"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-recon/dsp/core"
	"github.com/cwbudde/algo-recon/dsp/window"
)

// DefaultSegmentSize is the transform length of each averaged periodogram.
// It suits residual series of a thousand samples or more; shorter grids
// need WithSegmentSize.
const DefaultSegmentSize = 256

// minSegmentSize keeps at least a handful of frequency bins per estimate.
const minSegmentSize = 8

// scratchBuf holds pooled scratch memory for periodogram accumulation.
type scratchBuf struct {
	data []float64
}

var scratchPool = sync.Pool{
	New: func() any { return &scratchBuf{} },
}

func getScratch(n int) (re, im, pwr []float64, buf *scratchBuf) {
	buf = scratchPool.Get().(*scratchBuf)
	buf.data = core.EnsureLen(buf.data, 3*n)

	return buf.data[:n], buf.data[n : 2*n], buf.data[2*n:], buf
}

func putScratch(buf *scratchBuf) {
	scratchPool.Put(buf)
}

// Welch estimates one-sided power spectral densities by averaging windowed
// periodograms over overlapping segments of a series.
type Welch struct {
	grid     core.TimeGrid
	segment  int
	overlap  int
	winType  window.Type
	win      []float64
	winPower float64 // sum of squared window coefficients
	plan     *algofft.Plan[complex128]
}

// Option configures a Welch estimator.
type Option func(*Welch) error

// WithSegmentSize overrides the periodogram length. The size must be a
// power of two no smaller than 8 so that it maps onto a transform plan.
func WithSegmentSize(n int) Option {
	return func(w *Welch) error {
		if n < minSegmentSize || n&(n-1) != 0 {
			return fmt.Errorf("spectrum: segment size must be a power of two >= %d, got %d: %w", minSegmentSize, n, core.ErrInvalidParameter)
		}

		w.segment = n

		return nil
	}
}

// WithOverlap overrides the number of samples shared by consecutive
// segments (default half a segment).
func WithOverlap(n int) Option {
	return func(w *Welch) error {
		if n < 0 {
			return fmt.Errorf("spectrum: overlap must be >= 0, got %d: %w", n, core.ErrInvalidParameter)
		}

		w.overlap = n

		return nil
	}
}

// WithWindow selects the segment window (default Hann).
func WithWindow(t window.Type) Option {
	return func(w *Welch) error {
		if t.String() == "unknown" {
			return fmt.Errorf("spectrum: unknown window type %d: %w", int(t), core.ErrInvalidParameter)
		}

		w.winType = t

		return nil
	}
}

// New creates an estimator for series sampled on the given grid. The grid
// must hold at least one full segment.
func New(grid core.TimeGrid, opts ...Option) (*Welch, error) {
	err := grid.Validate()
	if err != nil {
		return nil, err
	}

	w := &Welch{
		grid:    grid,
		segment: DefaultSegmentSize,
		overlap: -1,
		winType: window.TypeHann,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		err := opt(w)
		if err != nil {
			return nil, err
		}
	}

	if w.overlap < 0 {
		w.overlap = w.segment / 2
	}

	if w.overlap >= w.segment {
		return nil, fmt.Errorf("spectrum: overlap %d must be smaller than segment %d: %w", w.overlap, w.segment, core.ErrInvalidParameter)
	}

	if grid.Len() < w.segment {
		return nil, fmt.Errorf("spectrum: grid length %d is shorter than segment %d: %w", grid.Len(), w.segment, core.ErrInvalidParameter)
	}

	// Periodic form: each segment spans whole window periods under the DFT.
	w.win = window.Generate(w.winType, w.segment, window.WithPeriodic())
	w.winPower = window.Analyze(w.win).Power * float64(w.segment)

	plan, err := algofft.NewPlan64(w.segment)
	if err != nil {
		return nil, fmt.Errorf("spectrum: fft plan: %w", err)
	}

	w.plan = plan

	return w, nil
}

// SegmentSize returns the periodogram length.
func (w *Welch) SegmentSize() int { return w.segment }

// Overlap returns the number of samples shared by consecutive segments.
func (w *Welch) Overlap() int { return w.overlap }

// WindowType returns the segment window.
func (w *Welch) WindowType() window.Type { return w.winType }

// Resolution returns the frequency spacing between PSD bins.
func (w *Welch) Resolution() float64 { return w.grid.SampleRate() / float64(w.segment) }

// Estimate returns the one-sided density of series, which must match the
// grid length. Bins follow
//
//	P[k] = d[k] * sum_s |X_s[k]|^2 / (count * fs * sum(w^2))
//
// where X_s is the windowed transform of segment s and d[k] doubles every
// bin strictly between DC and Nyquist, so that integrating the density
// over frequency recovers the mean square of the series.
func (w *Welch) Estimate(series []float64) (PSD, error) {
	if len(series) != w.grid.Len() {
		return PSD{}, fmt.Errorf("spectrum: series length %d does not match grid length %d: %w", len(series), w.grid.Len(), core.ErrShapeMismatch)
	}

	if idx := core.FirstNonFinite(series); idx >= 0 {
		return PSD{}, &core.InstabilityError{
			Op:     "spectrum",
			Sample: idx,
			Detail: fmt.Sprintf("non-finite value %g in input", series[idx]),
		}
	}

	half := w.segment/2 + 1
	step := w.segment - w.overlap
	count := (len(series)-w.segment)/step + 1

	in := make([]complex128, w.segment)
	out := make([]complex128, w.segment)
	accum := make([]float64, half)

	re, im, pwr, buf := getScratch(half)
	defer putScratch(buf)

	for s := range count {
		off := s * step
		for i := range w.segment {
			in[i] = complex(series[off+i]*w.win[i], 0)
		}

		err := w.plan.Forward(out, in)
		if err != nil {
			return PSD{}, fmt.Errorf("spectrum: fft forward: %w", err)
		}

		for k := range half {
			re[k] = real(out[k])
			im[k] = imag(out[k])
		}

		vecmath.Power(pwr, re, im)
		vecmath.AddBlockInPlace(accum, pwr)
	}

	fs := w.grid.SampleRate()
	vecmath.ScaleBlockInPlace(accum, 1/(float64(count)*fs*w.winPower))

	for k := 1; k < half-1; k++ {
		accum[k] *= 2
	}

	freqs := make([]float64, half)
	binWidth := fs / float64(w.segment)
	for k := range freqs {
		freqs[k] = float64(k) * binWidth
	}

	return PSD{Frequencies: freqs, Power: accum}, nil
}

// PSD is a one-sided power spectral density on bin-center frequencies from
// DC to Nyquist.
type PSD struct {
	Frequencies []float64 // bin centers in cycles per time unit
	Power       []float64 // density in signal units squared per frequency unit
}

// Peak returns the frequency and density of the strongest bin above DC.
func (p PSD) Peak() (frequency, power float64) {
	if len(p.Power) < 2 {
		return 0, 0
	}

	idx := 1 + floats.MaxIdx(p.Power[1:])

	return p.Frequencies[idx], p.Power[idx]
}

// TotalPower integrates the density over frequency, recovering the mean
// square of the analyzed series.
func (p PSD) TotalPower() float64 {
	if len(p.Frequencies) < 2 {
		return 0
	}

	df := p.Frequencies[1] - p.Frequencies[0]

	return vecmath.Sum(p.Power) * df
}

// Flatness returns the Wiener entropy of the density over the bins above
// DC,
//
//	exp(mean(log P[k])) / mean(P[k])
//
// which is 1 for a perfectly flat spectrum and approaches 0 as the power
// concentrates in few bins. White residuals score close to 1; leftover
// drift or tonal structure pulls the value down. Any zero bin makes the
// geometric mean, and so the flatness, zero.
func (p PSD) Flatness() float64 {
	n := len(p.Power)
	if n < 2 {
		return 0
	}

	var (
		sumLin  float64
		sumLog  float64
		hasZero bool
	)

	for _, v := range p.Power[1:] {
		sumLin += v

		if v > 0 {
			sumLog += math.Log(v)
		} else {
			hasZero = true
		}
	}

	bins := float64(n - 1)

	meanLin := sumLin / bins
	if meanLin == 0 || hasZero {
		return 0
	}

	return math.Exp(sumLog/bins) / meanLin
}
