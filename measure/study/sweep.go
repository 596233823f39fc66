package study

import (
	"context"
	"fmt"

	"github.com/cwbudde/algo-recon/dsp/core"
	"github.com/cwbudde/algo-recon/dsp/noise"
	"github.com/cwbudde/algo-recon/dsp/pulse"
)

// SweepConfig parameterizes the noise-level sweep: one reference pulse
// corrupted by pure Gaussian noise at each level, reconstructed by every
// strategy, repeated with independent seeds.
type SweepConfig struct {
	Grid        core.TimeGrid
	Pulse       pulse.Config
	Levels      []float64
	Repetitions int
	BaseSeed    uint64
	// Workers caps the pool size; 0 uses one worker per available CPU.
	Workers    int
	Strategies []Strategy
	Progress   ProgressFunc
}

// DefaultSweepConfig returns the reference sweep: the default pulse on
// the standard grid, six noise levels from clean to half the pulse
// height, twenty repetitions each.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		Grid:        core.TimeGrid{Start: 0, Dt: 0.1, N: 1000},
		Pulse:       pulse.DefaultConfig(),
		Levels:      []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5},
		Repetitions: 20,
		BaseSeed:    42,
	}
}

// Validate checks the sweep parameters.
func (c SweepConfig) Validate() error {
	err := c.Grid.Validate()
	if err != nil {
		return err
	}

	err = c.Pulse.Validate()
	if err != nil {
		return err
	}

	if len(c.Levels) == 0 {
		return fmt.Errorf("study: sweep needs at least one noise level: %w", core.ErrInvalidParameter)
	}

	for _, level := range c.Levels {
		if level < 0 || !core.IsFinite(level) {
			return fmt.Errorf("study: noise level must be >= 0 and finite, got %g: %w",
				level, core.ErrInvalidParameter)
		}
	}

	if c.Repetitions <= 0 {
		return fmt.Errorf("study: repetitions must be positive, got %d: %w",
			c.Repetitions, core.ErrInvalidParameter)
	}

	if c.Workers < 0 {
		return fmt.Errorf("study: workers must be >= 0, got %d: %w", c.Workers, core.ErrInvalidParameter)
	}

	return nil
}

// NoiseSweep measures reconstruction quality against the Gaussian noise
// level. Each (level, repetition) run draws its stream from
// DeriveSeed(BaseSeed, level, rep), so the resulting table is identical
// for any worker count. On cancellation the finished repetitions are
// folded and returned together with the context error.
func NoiseSweep(ctx context.Context, cfg SweepConfig) (Table, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	strats := cfg.Strategies
	if strats == nil {
		strats, err = DefaultStrategies(cfg.Grid)
		if err != nil {
			return nil, err
		}
	}

	err = validateStrategies(strats)
	if err != nil {
		return nil, err
	}

	strats = append([]Strategy{baseline{}}, strats...)

	names := make([]string, len(strats))
	for i, s := range strats {
		names[i] = s.Name()
	}

	ideal, err := pulse.Generate(cfg.Grid, cfg.Pulse)
	if err != nil {
		return nil, err
	}

	eval := func(c, r int) []stratResult {
		level := cfg.Levels[c]
		seed := DeriveSeed(cfg.BaseSeed, level, uint64(r))

		res := make([]stratResult, len(strats))

		observed, err := noise.Corrupt(ideal, cfg.Grid, noise.Config{Sigma: level}, seed)
		if err != nil {
			for s := range res {
				res[s].failed++
			}

			return res
		}

		scoreInto(res, strats, observed, ideal)

		return res
	}

	slots, runErr := runGrid(ctx, len(cfg.Levels), cfg.Repetitions, cfg.Workers, cfg.Progress, eval)

	return foldTable(slots, names, cfg.Levels, cfg.Repetitions), runErr
}
