package study

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-recon/dsp/core"
	"github.com/cwbudde/algo-recon/dsp/filter/kalman"
	"github.com/cwbudde/algo-recon/dsp/filter/movavg"
	"github.com/cwbudde/algo-recon/dsp/pulse"
)

func smallScalingConfig() ScalingConfig {
	return ScalingConfig{
		Grid:        core.TimeGrid{Start: 0, Dt: 1.0, N: 101},
		Events:      pulse.DefaultEventRange(),
		EventCounts: []int{5, 9},
		NoiseSigma:  0.2,
		Repetitions: 3,
		BaseSeed:    11,
	}
}

func TestScalingDeterministicAcrossWorkers(t *testing.T) {
	var tables []Table

	for _, workers := range []int{1, 3} {
		cfg := smallScalingConfig()
		cfg.Workers = workers

		table, err := ScalingStudy(context.Background(), cfg)
		require.NoError(t, err)

		tables = append(tables, table)
	}

	require.Len(t, tables[0], 8)
	require.Equal(t, tables[0], tables[1])
}

func TestScalingCellAccounting(t *testing.T) {
	cfg := smallScalingConfig()

	table, err := ScalingStudy(context.Background(), cfg)
	require.NoError(t, err)

	for _, name := range []string{BaselineName, "movavg", "fourier", "kalman"} {
		for _, count := range cfg.EventCounts {
			cell, ok := table.Cell(name, float64(count))
			require.True(t, ok, "%s@%d", name, count)

			// Every event of every repetition is scored individually.
			assert.Equal(t, count*cfg.Repetitions, cell.Count)
			assert.Zero(t, cell.Failed)
			assert.False(t, math.IsNaN(cell.Bias.Mean))
		}
	}
}

func TestScalingFailureIsolation(t *testing.T) {
	ma, err := movavg.New(movavg.DefaultWindow)
	require.NoError(t, err)

	cfg := smallScalingConfig()
	cfg.EventCounts = []int{5}
	cfg.Strategies = []Strategy{ma, unstable("flaky")}

	table, err := ScalingStudy(context.Background(), cfg)
	require.NoError(t, err)

	flaky, ok := table.Cell("flaky", 5)
	require.True(t, ok)
	assert.Zero(t, flaky.Count)
	assert.Equal(t, 5*cfg.Repetitions, flaky.Failed)

	good, ok := table.Cell(ma.Name(), 5)
	require.True(t, ok)
	assert.Equal(t, 5*cfg.Repetitions, good.Count)
	assert.Zero(t, good.Failed)
}

func TestBiasConvergesWithBatchSize(t *testing.T) {
	if testing.Short() {
		t.Skip("full scaling study")
	}

	ma, err := movavg.New(movavg.DefaultWindow)
	require.NoError(t, err)

	kf, err := kalman.New()
	require.NoError(t, err)

	cfg := ScalingConfig{
		Grid:        core.TimeGrid{Start: 0, Dt: 1.0, N: 101},
		Events:      pulse.DefaultEventRange(),
		EventCounts: []int{100, 1000, 10000},
		NoiseSigma:  0.2,
		Repetitions: 30,
		BaseSeed:    42,
		Strategies:  []Strategy{ma, kf},
	}

	table, err := ScalingStudy(context.Background(), cfg)
	require.NoError(t, err)

	for _, name := range []string{ma.Name(), kf.Name()} {
		var (
			prevAbs float64
			prevSE  float64
		)

		for i, count := range cfg.EventCounts {
			cell, ok := table.Cell(name, float64(count))
			require.True(t, ok, name)
			require.Equal(t, count*cfg.Repetitions, cell.Count)

			abs := math.Abs(cell.Bias.Mean)
			se := cell.Bias.Std / math.Sqrt(float64(cell.Count))

			// Both filters conserve the pulse mass over the scored range,
			// so the per-event bias averages toward zero and its magnitude
			// shrinks as batches grow. One standard error per cell absorbs
			// the sampling noise of the comparison.
			if i > 0 {
				assert.LessOrEqual(t, abs, prevAbs+prevSE+se,
					"%s at %d events", name, count)
				assert.Less(t, se, prevSE, "%s at %d events", name, count)
			}

			prevAbs = abs
			prevSE = se
		}
	}
}

func TestScalingValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ScalingConfig)
	}{
		{"empty counts", func(c *ScalingConfig) { c.EventCounts = nil }},
		{"zero count", func(c *ScalingConfig) { c.EventCounts = []int{0} }},
		{"negative sigma", func(c *ScalingConfig) { c.NoiseSigma = -0.1 }},
		{"zero repetitions", func(c *ScalingConfig) { c.Repetitions = 0 }},
		{"negative workers", func(c *ScalingConfig) { c.Workers = -2 }},
		{"bad grid", func(c *ScalingConfig) { c.Grid = core.TimeGrid{} }},
		{"bad event range", func(c *ScalingConfig) { c.Events.SigmaMin = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := smallScalingConfig()
			tc.mutate(&cfg)

			_, err := ScalingStudy(context.Background(), cfg)
			require.ErrorIs(t, err, core.ErrInvalidParameter)
		})
	}
}

func TestDefaultScalingConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultScalingConfig().Validate())
}
