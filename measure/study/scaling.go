package study

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/cwbudde/algo-recon/dsp/core"
	"github.com/cwbudde/algo-recon/dsp/noise"
	"github.com/cwbudde/algo-recon/dsp/pulse"
)

// ScalingConfig parameterizes the event-count scaling study: batches of
// randomized events, each corrupted by Gaussian noise and scored per
// event, across growing batch sizes.
type ScalingConfig struct {
	Grid        core.TimeGrid
	Events      pulse.EventRange
	EventCounts []int
	NoiseSigma  float64
	Repetitions int
	BaseSeed    uint64
	// Workers caps the pool size; 0 uses one worker per available CPU.
	Workers    int
	Strategies []Strategy
	Progress   ProgressFunc
}

// DefaultScalingConfig returns the reference study: batches of 100,
// 1000 and 10000 events on the standard grid under moderate noise,
// thirty repetitions per batch size.
func DefaultScalingConfig() ScalingConfig {
	return ScalingConfig{
		Grid:        core.TimeGrid{Start: 0, Dt: 0.1, N: 1000},
		Events:      pulse.DefaultEventRange(),
		EventCounts: []int{100, 1000, 10000},
		NoiseSigma:  0.2,
		Repetitions: 30,
		BaseSeed:    42,
	}
}

// Validate checks the study parameters.
func (c ScalingConfig) Validate() error {
	err := c.Grid.Validate()
	if err != nil {
		return err
	}

	err = c.Events.Validate()
	if err != nil {
		return err
	}

	if len(c.EventCounts) == 0 {
		return fmt.Errorf("study: scaling needs at least one event count: %w", core.ErrInvalidParameter)
	}

	for _, n := range c.EventCounts {
		if n <= 0 {
			return fmt.Errorf("study: event count must be positive, got %d: %w", n, core.ErrInvalidParameter)
		}
	}

	if c.NoiseSigma < 0 || !core.IsFinite(c.NoiseSigma) {
		return fmt.Errorf("study: noise sigma must be >= 0 and finite, got %g: %w",
			c.NoiseSigma, core.ErrInvalidParameter)
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

// ScalingStudy measures how reconstruction quality evolves with batch
// size. A repetition draws its whole batch from one stream seeded by
// DeriveSeed(BaseSeed, count, rep) and scores every event individually,
// so a cell at coordinate count aggregates count×Repetitions event
// scores. Failing events are excluded and counted per strategy. On
// cancellation the finished repetitions are folded and returned together
// with the context error.
func ScalingStudy(ctx context.Context, cfg ScalingConfig) (Table, error) {
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

	coords := make([]float64, len(cfg.EventCounts))
	for i, n := range cfg.EventCounts {
		coords[i] = float64(n)
	}

	noiseCfg := noise.Config{Sigma: cfg.NoiseSigma}

	eval := func(c, r int) []stratResult {
		count := cfg.EventCounts[c]
		seed := DeriveSeed(cfg.BaseSeed, coords[c], uint64(r))
		rng := rand.New(rand.NewPCG(seed, seed))

		res := make([]stratResult, len(strats))

		cfgs, err := pulse.RandomConfigs(rng, count, cfg.Events)
		if err != nil {
			for s := range res {
				res[s].failed += count
			}

			return res
		}

		ideal := make([]float64, cfg.Grid.Len())
		observed := make([]float64, cfg.Grid.Len())

		for _, ev := range cfgs {
			evSeed := rng.Uint64()

			err := pulse.GenerateInto(ideal, cfg.Grid, ev)
			if err != nil {
				for s := range res {
					res[s].failed++
				}

				continue
			}

			err = noise.CorruptInto(observed, ideal, cfg.Grid, noiseCfg, evSeed)
			if err != nil {
				for s := range res {
					res[s].failed++
				}

				continue
			}

			scoreInto(res, strats, observed, ideal)
		}

		return res
	}

	slots, runErr := runGrid(ctx, len(cfg.EventCounts), cfg.Repetitions, cfg.Workers, cfg.Progress, eval)

	return foldTable(slots, names, coords, cfg.Repetitions), runErr
}
