package study

import (
	"fmt"

	"github.com/cwbudde/algo-recon/dsp/core"
	"github.com/cwbudde/algo-recon/dsp/filter/fourier"
	"github.com/cwbudde/algo-recon/dsp/filter/kalman"
	"github.com/cwbudde/algo-recon/dsp/filter/movavg"
)

// BaselineName labels the unfiltered observation that every study scores
// alongside the real strategies.
const BaselineName = "noisy"

// Strategy is a reconstruction filter a study can run: a name for report
// rows, the number of leading samples its scoring should skip while the
// filter settles, and the batch transform itself.
type Strategy interface {
	Name() string
	Warmup() int
	Process(observed []float64) ([]float64, error)
}

// DefaultStrategies builds the standard comparison set for a grid: the
// moving average, the spectral low-pass and the Kalman filter, each with
// its package defaults.
func DefaultStrategies(grid core.TimeGrid) ([]Strategy, error) {
	ma, err := movavg.New(movavg.DefaultWindow)
	if err != nil {
		return nil, err
	}

	lp, err := fourier.New(fourier.DefaultCutoff, grid)
	if err != nil {
		return nil, err
	}

	kf, err := kalman.New()
	if err != nil {
		return nil, err
	}

	return []Strategy{ma, lp, kf}, nil
}

// baseline passes the observation through untouched so the raw noise
// level shows up as a report row of its own.
type baseline struct{}

func (baseline) Name() string { return BaselineName }

func (baseline) Warmup() int { return 0 }

func (baseline) Process(observed []float64) ([]float64, error) {
	return core.Clone(observed), nil
}

// validateStrategies rejects empty sets, duplicate names and names that
// collide with the baseline row.
func validateStrategies(strats []Strategy) error {
	if len(strats) == 0 {
		return fmt.Errorf("study: at least one strategy is required: %w", core.ErrInvalidParameter)
	}

	seen := make(map[string]struct{}, len(strats)+1)
	seen[BaselineName] = struct{}{}

	for _, s := range strats {
		if s == nil {
			return fmt.Errorf("study: nil strategy: %w", core.ErrInvalidParameter)
		}

		name := s.Name()
		if _, dup := seen[name]; dup {
			return fmt.Errorf("study: duplicate strategy name %q: %w", name, core.ErrInvalidParameter)
		}

		seen[name] = struct{}{}
	}

	return nil
}
