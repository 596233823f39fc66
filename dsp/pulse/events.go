package pulse

import (
	"fmt"
	"math/rand/v2"

	"github.com/cwbudde/algo-recon/dsp/core"
)

// EventRange bounds the randomized parameters of a synthetic event batch.
// Each generated event draws its amplitude, arrival time, and width
// uniformly from the respective interval.
type EventRange struct {
	AmplitudeMin float64
	AmplitudeMax float64
	ArrivalMin   float64
	ArrivalMax   float64
	SigmaMin     float64
	SigmaMax     float64
}

// DefaultEventRange returns the reference spread of detector events:
// amplitudes within 20% of unity, arrival between t=40 and t=60, width
// between 3 and 7.
func DefaultEventRange() EventRange {
	return EventRange{
		AmplitudeMin: 0.8,
		AmplitudeMax: 1.2,
		ArrivalMin:   40.0,
		ArrivalMax:   60.0,
		SigmaMin:     3.0,
		SigmaMax:     7.0,
	}
}

// Validate checks that every interval is ordered and physical.
func (r EventRange) Validate() error {
	if r.AmplitudeMin <= 0 || r.AmplitudeMin > r.AmplitudeMax {
		return fmt.Errorf("pulse: amplitude range [%g, %g] must be positive and ordered: %w", r.AmplitudeMin, r.AmplitudeMax, core.ErrInvalidParameter)
	}

	if r.ArrivalMin > r.ArrivalMax {
		return fmt.Errorf("pulse: arrival range [%g, %g] must be ordered: %w", r.ArrivalMin, r.ArrivalMax, core.ErrInvalidParameter)
	}

	if r.SigmaMin <= 0 || r.SigmaMin > r.SigmaMax {
		return fmt.Errorf("pulse: sigma range [%g, %g] must be positive and ordered: %w", r.SigmaMin, r.SigmaMax, core.ErrInvalidParameter)
	}

	return nil
}

// RandomConfigs draws n event configurations from r using the supplied
// generator. Passing the same generator state reproduces the same batch.
func RandomConfigs(rng *rand.Rand, n int, r EventRange) ([]Config, error) {
	if n <= 0 {
		return nil, fmt.Errorf("pulse: event count must be positive, got %d: %w", n, core.ErrInvalidParameter)
	}

	err := r.Validate()
	if err != nil {
		return nil, err
	}

	out := make([]Config, n)
	for i := range out {
		out[i] = Config{
			Amplitude:   uniform(rng, r.AmplitudeMin, r.AmplitudeMax),
			ArrivalTime: uniform(rng, r.ArrivalMin, r.ArrivalMax),
			Sigma:       uniform(rng, r.SigmaMin, r.SigmaMax),
		}
	}

	return out, nil
}

// GenerateBatch synthesizes one series per config on a shared grid.
func GenerateBatch(grid core.TimeGrid, cfgs []Config) ([][]float64, error) {
	if len(cfgs) == 0 {
		return nil, fmt.Errorf("pulse: batch must hold at least one event: %w", core.ErrInvalidParameter)
	}

	out := make([][]float64, len(cfgs))
	for i, cfg := range cfgs {
		series, err := Generate(grid, cfg)
		if err != nil {
			return nil, fmt.Errorf("pulse: event %d: %w", i, err)
		}

		out[i] = series
	}

	return out, nil
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
