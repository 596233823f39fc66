package study

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-recon/dsp/core"
	"github.com/cwbudde/algo-recon/dsp/filter/kalman"
	"github.com/cwbudde/algo-recon/dsp/noise"
	"github.com/cwbudde/algo-recon/dsp/pulse"
)

// stubStrategy lets tests inject arbitrary reconstruction behavior.
type stubStrategy struct {
	name    string
	warmup  int
	process func([]float64) ([]float64, error)
}

func (s stubStrategy) Name() string { return s.name }

func (s stubStrategy) Warmup() int { return s.warmup }

func (s stubStrategy) Process(observed []float64) ([]float64, error) {
	return s.process(observed)
}

func unstable(name string) stubStrategy {
	return stubStrategy{
		name: name,
		process: func([]float64) ([]float64, error) {
			return nil, &core.InstabilityError{Op: name, Sample: 0, Detail: "stub"}
		},
	}
}

func referencePipeline() Pipeline {
	return Pipeline{
		Grid:  core.TimeGrid{Start: 0, Dt: 0.1, N: 1000},
		Pulse: pulse.DefaultConfig(),
		Noise: noise.Config{Sigma: 0.1},
	}
}

func TestRunDeterministic(t *testing.T) {
	p := referencePipeline()

	a, err := p.Run(7)
	require.NoError(t, err)

	b, err := p.Run(7)
	require.NoError(t, err)

	require.Equal(t, a, b)

	c, err := p.Run(8)
	require.NoError(t, err)

	assert.NotEqual(t, a.Observed, c.Observed)
	assert.Equal(t, a.Ideal, c.Ideal)
}

func TestRunDefaultStrategies(t *testing.T) {
	p := referencePipeline()

	res, err := p.Run(1)
	require.NoError(t, err)

	require.Len(t, res.Recon, 3)
	require.Len(t, res.Metrics, 4)

	for _, name := range []string{"movavg", "fourier", "kalman"} {
		require.Contains(t, res.Recon, name)
		require.Contains(t, res.Metrics, name)
		assert.Len(t, res.Recon[name], p.Grid.Len())
	}

	require.Contains(t, res.Metrics, BaselineName)
}

func TestKalmanBeatsRawNoise(t *testing.T) {
	kf, err := kalman.New()
	require.NoError(t, err)

	p := referencePipeline()
	p.Strategies = []Strategy{kf}

	wins := 0
	const runs = 50

	for i := 0; i < runs; i++ {
		res, err := p.Run(DeriveSeed(42, 0.1, uint64(i)))
		require.NoError(t, err)

		if res.Metrics[kf.Name()].MSE < res.Metrics[BaselineName].MSE {
			wins++
		}
	}

	// At least 95% of independently seeded runs.
	assert.GreaterOrEqual(t, wins, 48)
}

func TestRunPropagatesStrategyFailure(t *testing.T) {
	p := referencePipeline()
	p.Strategies = []Strategy{unstable("flaky")}

	_, err := p.Run(1)
	require.ErrorIs(t, err, core.ErrNumericalInstability)
}

func TestRunValidation(t *testing.T) {
	p := referencePipeline()
	p.Grid = core.TimeGrid{}

	_, err := p.Run(1)
	require.ErrorIs(t, err, core.ErrInvalidParameter)

	p = referencePipeline()
	p.Noise.Sigma = -1

	_, err = p.Run(1)
	require.ErrorIs(t, err, core.ErrInvalidParameter)

	p = referencePipeline()
	p.Pulse.Sigma = 0

	_, err = p.Run(1)
	require.ErrorIs(t, err, core.ErrInvalidParameter)

	identity := func(in []float64) ([]float64, error) { return core.Clone(in), nil }

	p = referencePipeline()
	p.Strategies = []Strategy{stubStrategy{name: BaselineName, process: identity}}

	_, err = p.Run(1)
	require.ErrorIs(t, err, core.ErrInvalidParameter)

	p = referencePipeline()
	p.Strategies = []Strategy{
		stubStrategy{name: "twin", process: identity},
		stubStrategy{name: "twin", process: identity},
	}

	_, err = p.Run(1)
	require.ErrorIs(t, err, core.ErrInvalidParameter)

	var nilStrategy Strategy

	p = referencePipeline()
	p.Strategies = []Strategy{nilStrategy}

	_, err = p.Run(1)
	require.ErrorIs(t, err, core.ErrInvalidParameter)

	p = referencePipeline()
	p.Strategies = []Strategy{}

	_, err = p.Run(1)
	require.ErrorIs(t, err, core.ErrInvalidParameter)
}
