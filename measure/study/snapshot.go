package study

import (
	"github.com/cwbudde/algo-recon/dsp/core"
	"github.com/cwbudde/algo-recon/dsp/filter/fourier"
	"github.com/cwbudde/algo-recon/dsp/filter/kalman"
	"github.com/cwbudde/algo-recon/dsp/noise"
	"github.com/cwbudde/algo-recon/dsp/pulse"
	"github.com/cwbudde/algo-recon/measure/quality"
)

// SnapshotRequest selects the single run returned to interactive
// viewers. Start from DefaultSnapshotRequest and override fields; the
// values are used as given.
type SnapshotRequest struct {
	Amplitude      float64 `json:"amplitude"`
	ArrivalTime    float64 `json:"arrival_time"`
	Sigma          float64 `json:"sigma"`
	NoiseSigma     float64 `json:"noise_sigma"`
	DriftAmplitude float64 `json:"drift_amplitude"`
	Cutoff         float64 `json:"cutoff"`
	Seed           uint64  `json:"seed"`
}

// DefaultSnapshotRequest returns the reference pulse under the full
// noise model with both default reconstructions.
func DefaultSnapshotRequest() SnapshotRequest {
	p := pulse.DefaultConfig()
	n := noise.DefaultConfig()

	return SnapshotRequest{
		Amplitude:      p.Amplitude,
		ArrivalTime:    p.ArrivalTime,
		Sigma:          p.Sigma,
		NoiseSigma:     n.Sigma,
		DriftAmplitude: n.DriftAmplitude,
		Cutoff:         fourier.DefaultCutoff,
		Seed:           42,
	}
}

// SnapshotResult is the keyed single-run payload: the time axis, the
// clean and corrupted series, and the two reconstructions, plus the
// quality scores per series.
type SnapshotResult struct {
	Time    []float64                    `json:"time"`
	Clean   []float64                    `json:"clean"`
	Noisy   []float64                    `json:"noisy"`
	Kalman  []float64                    `json:"kalman"`
	Fourier []float64                    `json:"fourier"`
	Metrics map[string]quality.MetricSet `json:"metrics"`
}

// Snapshot runs one acquisition on the reference grid and packages the
// series for display.
func Snapshot(req SnapshotRequest) (SnapshotResult, error) {
	grid, err := core.GridRange(0, 100, 0.1)
	if err != nil {
		return SnapshotResult{}, err
	}

	kf, err := kalman.New()
	if err != nil {
		return SnapshotResult{}, err
	}

	lp, err := fourier.New(req.Cutoff, grid)
	if err != nil {
		return SnapshotResult{}, err
	}

	// Spike settings stay at their defaults; the request only steers the
	// Gaussian level and the drift height.
	noiseCfg := noise.DefaultConfig()
	noiseCfg.Sigma = req.NoiseSigma
	noiseCfg.DriftAmplitude = req.DriftAmplitude

	p := Pipeline{
		Grid: grid,
		Pulse: pulse.Config{
			Amplitude:   req.Amplitude,
			ArrivalTime: req.ArrivalTime,
			Sigma:       req.Sigma,
		},
		Noise:      noiseCfg,
		Strategies: []Strategy{kf, lp},
	}

	run, err := p.Run(req.Seed)
	if err != nil {
		return SnapshotResult{}, err
	}

	return SnapshotResult{
		Time:    grid.Times(),
		Clean:   run.Ideal,
		Noisy:   run.Observed,
		Kalman:  run.Recon[kf.Name()],
		Fourier: run.Recon[lp.Name()],
		Metrics: run.Metrics,
	}, nil
}
