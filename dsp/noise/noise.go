package noise

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-recon/dsp/core"
)

const twoPi = 2 * math.Pi

// Config describes the composite noise process applied to an ideal series:
// i.i.d. Gaussian noise, a deterministic sinusoidal baseline drift, and
// sparse spike outliers.
type Config struct {
	Sigma            float64 // standard deviation of the Gaussian component
	DriftAmplitude   float64 // amplitude of the sinusoidal baseline drift
	DriftFrequency   float64 // frequency of the drift in cycles per time unit
	SpikeProbability float64 // per-sample probability of a spike
	SpikeAmplitude   float64 // spike magnitude; the sign is drawn per spike
}

// DefaultConfig returns the reference full noise model.
func DefaultConfig() Config {
	return Config{
		Sigma:            0.1,
		DriftAmplitude:   0.1,
		DriftFrequency:   0.05,
		SpikeProbability: 0.005,
		SpikeAmplitude:   1.5,
	}
}

// Validate checks that the noise parameters are physical.
func (c Config) Validate() error {
	if c.Sigma < 0 || !core.IsFinite(c.Sigma) {
		return fmt.Errorf("noise: sigma must be >= 0 and finite, got %g: %w", c.Sigma, core.ErrInvalidParameter)
	}

	if c.DriftAmplitude < 0 || !core.IsFinite(c.DriftAmplitude) {
		return fmt.Errorf("noise: drift amplitude must be >= 0 and finite, got %g: %w", c.DriftAmplitude, core.ErrInvalidParameter)
	}

	if c.DriftAmplitude > 0 && (c.DriftFrequency <= 0 || !core.IsFinite(c.DriftFrequency)) {
		return fmt.Errorf("noise: drift frequency must be positive, got %g: %w", c.DriftFrequency, core.ErrInvalidParameter)
	}

	if !(c.SpikeProbability >= 0 && c.SpikeProbability <= 1) {
		return fmt.Errorf("noise: spike probability must be in [0, 1], got %g: %w", c.SpikeProbability, core.ErrInvalidParameter)
	}

	if c.SpikeProbability > 0 && !core.IsFinite(c.SpikeAmplitude) {
		return fmt.Errorf("noise: spike amplitude must be finite, got %g: %w", c.SpikeAmplitude, core.ErrInvalidParameter)
	}

	return nil
}

// Corrupt returns the observed series: the ideal series plus all three
// noise contributions. The generator is derived from the explicit seed, so
// two calls with the same inputs are bit-identical and calls with
// different seeds are statistically independent.
func Corrupt(ideal []float64, grid core.TimeGrid, cfg Config, seed uint64) ([]float64, error) {
	out := make([]float64, len(ideal))

	err := CorruptInto(out, ideal, grid, cfg, seed)
	if err != nil {
		return nil, err
	}

	return out, nil
}

// CorruptInto writes the observed series into dst. dst and ideal must both
// match the grid length. Useful for hot loops that reuse buffers.
func CorruptInto(dst, ideal []float64, grid core.TimeGrid, cfg Config, seed uint64) error {
	err := cfg.Validate()
	if err != nil {
		return err
	}

	err = grid.Validate()
	if err != nil {
		return err
	}

	if len(ideal) != grid.Len() {
		return fmt.Errorf("noise: ideal length %d does not match grid length %d: %w", len(ideal), grid.Len(), core.ErrShapeMismatch)
	}

	if len(dst) != grid.Len() {
		return fmt.Errorf("noise: dst length %d does not match grid length %d: %w", len(dst), grid.Len(), core.ErrShapeMismatch)
	}

	// One generator per call; the stage order below fixes the stream layout.
	rng := rand.New(rand.NewPCG(seed, seed))

	gaussianInto(dst, rng, cfg.Sigma)

	if cfg.DriftAmplitude > 0 {
		driftAddInto(dst, grid, cfg.DriftAmplitude, cfg.DriftFrequency)
	}

	if cfg.SpikeProbability > 0 {
		spikesAddInto(dst, rng, cfg.SpikeProbability, cfg.SpikeAmplitude)
	}

	vecmath.AddBlockInPlace(dst, ideal)

	return nil
}

// Gaussian returns n i.i.d. zero-mean Gaussian samples with the given
// standard deviation, drawn from rng.
func Gaussian(rng *rand.Rand, sigma float64, n int) []float64 {
	out := make([]float64, n)
	gaussianInto(out, rng, sigma)

	return out
}

// Drift returns the deterministic sinusoidal baseline
//
//	D(t) = amplitude * sin(2*pi*frequency*t)
//
// sampled on the grid.
func Drift(grid core.TimeGrid, amplitude, frequency float64) []float64 {
	out := make([]float64, grid.Len())
	driftAddInto(out, grid, amplitude, frequency)

	return out
}

// Spikes returns a sparse impulse train: each sample carries, with the
// given probability, an impulse of the given magnitude and equiprobable
// random sign.
func Spikes(rng *rand.Rand, prob, amplitude float64, n int) []float64 {
	out := make([]float64, n)
	spikesAddInto(out, rng, prob, amplitude)

	return out
}

func gaussianInto(dst []float64, rng *rand.Rand, sigma float64) {
	for i := range dst {
		dst[i] = rng.NormFloat64() * sigma
	}
}

func driftAddInto(dst []float64, grid core.TimeGrid, amplitude, frequency float64) {
	for i := range dst {
		dst[i] += amplitude * math.Sin(twoPi*frequency*grid.Time(i))
	}
}

func spikesAddInto(dst []float64, rng *rand.Rand, prob, amplitude float64) {
	for i := range dst {
		if rng.Float64() >= prob {
			continue
		}

		if rng.IntN(2) == 0 {
			dst[i] += amplitude
		} else {
			dst[i] -= amplitude
		}
	}
}
