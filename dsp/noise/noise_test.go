package noise

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/cwbudde/algo-recon/dsp/core"
	"github.com/cwbudde/algo-recon/dsp/pulse"
	"github.com/cwbudde/algo-recon/internal/testutil"
)

func testGrid(t *testing.T) core.TimeGrid {
	t.Helper()

	g, err := core.GridRange(0, 100, 0.1)
	if err != nil {
		t.Fatalf("GridRange: %v", err)
	}

	return g
}

func testPulse(t *testing.T, grid core.TimeGrid) []float64 {
	t.Helper()

	ideal, err := pulse.Generate(grid, pulse.DefaultConfig())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	return ideal
}

func TestCorruptReproducible(t *testing.T) {
	grid := testGrid(t)
	ideal := testPulse(t, grid)
	cfg := DefaultConfig()

	a, err := Corrupt(ideal, grid, cfg, 42)
	if err != nil {
		t.Fatalf("Corrupt: %v", err)
	}

	b, err := Corrupt(ideal, grid, cfg, 42)
	if err != nil {
		t.Fatalf("Corrupt: %v", err)
	}

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("index %d: %v != %v", i, a[i], b[i])
		}
	}
}

func TestCorruptSeedsIndependent(t *testing.T) {
	grid := testGrid(t)
	ideal := testPulse(t, grid)
	cfg := DefaultConfig()

	a, err := Corrupt(ideal, grid, cfg, 1)
	if err != nil {
		t.Fatalf("Corrupt: %v", err)
	}

	b, err := Corrupt(ideal, grid, cfg, 2)
	if err != nil {
		t.Fatalf("Corrupt: %v", err)
	}

	var sum float64
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}

	if sum/float64(len(a)) == 0 {
		t.Fatal("different seeds produced identical series")
	}
}

func TestCorruptZeroConfigIsIdentity(t *testing.T) {
	grid := testGrid(t)
	ideal := testPulse(t, grid)

	out, err := Corrupt(ideal, grid, Config{}, 7)
	if err != nil {
		t.Fatalf("Corrupt: %v", err)
	}

	for i := range out {
		if out[i] != ideal[i] {
			t.Fatalf("index %d: %v != %v", i, out[i], ideal[i])
		}
	}
}

func TestCorruptGaussianStats(t *testing.T) {
	grid, err := core.GridRange(0, 1000, 0.1)
	if err != nil {
		t.Fatalf("GridRange: %v", err)
	}

	ideal := make([]float64, grid.Len())

	const sigma = 0.3
	out, err := Corrupt(ideal, grid, Config{Sigma: sigma}, 99)
	if err != nil {
		t.Fatalf("Corrupt: %v", err)
	}

	var sum, sumSq float64
	for _, v := range out {
		sum += v
		sumSq += v * v
	}

	n := float64(len(out))
	mean := sum / n
	std := math.Sqrt(sumSq/n - mean*mean)

	// 10k samples: mean within 5 sigma/sqrt(n), std within a few percent.
	if math.Abs(mean) > 5*sigma/math.Sqrt(n) {
		t.Fatalf("mean = %v, want ~0", mean)
	}

	if math.Abs(std-sigma) > 0.05*sigma {
		t.Fatalf("std = %v, want ~%v", std, sigma)
	}
}

func TestDriftMatchesFormula(t *testing.T) {
	grid, err := core.NewTimeGrid(0, 0.5, 64)
	if err != nil {
		t.Fatalf("NewTimeGrid: %v", err)
	}

	const (
		amp  = 0.25
		freq = 0.05
	)

	got := Drift(grid, amp, freq)

	want := make([]float64, grid.Len())
	for i := range want {
		want[i] = amp * math.Sin(2*math.Pi*freq*grid.Time(i))
	}

	testutil.RequireSliceNearlyEqual(t, got, want, 1e-15)
}

func TestSpikesRateAndMagnitude(t *testing.T) {
	const (
		n    = 100000
		prob = 0.01
		amp  = 1.5
	)

	rng := rand.New(rand.NewPCG(5, 5))
	out := Spikes(rng, prob, amp, n)

	var hits, positive int
	for i, v := range out {
		switch {
		case v == 0:
		case v == amp:
			hits++
			positive++
		case v == -amp:
			hits++
		default:
			t.Fatalf("index %d: unexpected spike value %v", i, v)
		}
	}

	// Binomial(100000, 0.01): ~1000 +- 5*sqrt(990).
	if hits < 800 || hits > 1200 {
		t.Fatalf("hits = %d, want ~1000", hits)
	}

	// Signs are equiprobable.
	ratio := float64(positive) / float64(hits)
	if ratio < 0.4 || ratio > 0.6 {
		t.Fatalf("positive ratio = %v, want ~0.5", ratio)
	}
}

func TestCorruptValidation(t *testing.T) {
	grid := testGrid(t)
	ideal := testPulse(t, grid)

	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "negative sigma", cfg: Config{Sigma: -0.1}},
		{name: "negative drift amplitude", cfg: Config{DriftAmplitude: -1, DriftFrequency: 0.05}},
		{name: "drift without frequency", cfg: Config{DriftAmplitude: 0.1}},
		{name: "probability above one", cfg: Config{SpikeProbability: 1.5}},
		{name: "negative probability", cfg: Config{SpikeProbability: -0.5}},
		{name: "nan probability", cfg: Config{SpikeProbability: math.NaN()}},
		{name: "infinite spike amplitude", cfg: Config{SpikeProbability: 0.1, SpikeAmplitude: math.Inf(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Corrupt(ideal, grid, tt.cfg, 1)
			if !errors.Is(err, core.ErrInvalidParameter) {
				t.Fatalf("err = %v, want ErrInvalidParameter", err)
			}
		})
	}
}

func TestCorruptShapeMismatch(t *testing.T) {
	grid := testGrid(t)

	short := make([]float64, grid.Len()-1)
	_, err := Corrupt(short, grid, DefaultConfig(), 1)
	if !errors.Is(err, core.ErrShapeMismatch) {
		t.Fatalf("err = %v, want ErrShapeMismatch", err)
	}
}

func BenchmarkCorruptInto(b *testing.B) {
	grid, err := core.GridRange(0, 100, 0.1)
	if err != nil {
		b.Fatalf("GridRange: %v", err)
	}

	ideal, err := pulse.Generate(grid, pulse.DefaultConfig())
	if err != nil {
		b.Fatalf("Generate: %v", err)
	}

	cfg := DefaultConfig()
	dst := make([]float64, grid.Len())

	b.ResetTimer()
	for i := range b.N {
		_ = CorruptInto(dst, ideal, grid, cfg, uint64(i))
	}
}
