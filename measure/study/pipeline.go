package study

import (
	"github.com/cwbudde/algo-recon/dsp/core"
	"github.com/cwbudde/algo-recon/dsp/noise"
	"github.com/cwbudde/algo-recon/dsp/pulse"
	"github.com/cwbudde/algo-recon/measure/quality"
)

// Pipeline describes one synthetic acquisition: a pulse on a grid, the
// noise model corrupting it and the strategies reconstructing it. A nil
// Strategies field selects DefaultStrategies for the grid.
type Pipeline struct {
	Grid       core.TimeGrid
	Pulse      pulse.Config
	Noise      noise.Config
	Strategies []Strategy
}

// RunResult carries everything a single run produced: the series pair,
// each strategy's reconstruction and the quality scores, including the
// unfiltered baseline under BaselineName.
type RunResult struct {
	Seed     uint64
	Ideal    []float64
	Observed []float64
	Recon    map[string][]float64
	Metrics  map[string]quality.MetricSet
}

// Run synthesizes, corrupts and reconstructs one pulse with the given
// seed. Unlike the batched studies, a failing strategy aborts the run
// with its error, since there is nothing to aggregate over.
func (p Pipeline) Run(seed uint64) (RunResult, error) {
	err := p.Grid.Validate()
	if err != nil {
		return RunResult{}, err
	}

	strats := p.Strategies
	if strats == nil {
		strats, err = DefaultStrategies(p.Grid)
		if err != nil {
			return RunResult{}, err
		}
	}

	err = validateStrategies(strats)
	if err != nil {
		return RunResult{}, err
	}

	ideal, err := pulse.Generate(p.Grid, p.Pulse)
	if err != nil {
		return RunResult{}, err
	}

	observed, err := noise.Corrupt(ideal, p.Grid, p.Noise, seed)
	if err != nil {
		return RunResult{}, err
	}

	res := RunResult{
		Seed:     seed,
		Ideal:    ideal,
		Observed: observed,
		Recon:    make(map[string][]float64, len(strats)),
		Metrics:  make(map[string]quality.MetricSet, len(strats)+1),
	}

	res.Metrics[BaselineName], err = quality.Score(observed, ideal, 0)
	if err != nil {
		return RunResult{}, err
	}

	for _, s := range strats {
		rec, err := s.Process(observed)
		if err != nil {
			return RunResult{}, err
		}

		m, err := quality.Score(rec, ideal, s.Warmup())
		if err != nil {
			return RunResult{}, err
		}

		res.Recon[s.Name()] = rec
		res.Metrics[s.Name()] = m
	}

	return res, nil
}
