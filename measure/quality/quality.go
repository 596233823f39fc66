// Package quality scores reconstructed series against their noise-free
// reference.
package quality

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-recon/dsp/core"
)

// MetricSet bundles the reconstruction quality figures for one series
// pair. SNRdB is +Inf when the residual vanishes entirely and -Inf when
// the reference carries no power.
type MetricSet struct {
	MSE       float64 `json:"mse"`
	SNRdB     float64 `json:"snr_db"`
	PeakError float64 `json:"peak_error"`
	Bias      float64 `json:"bias"`
}

// Score compares a reconstruction against the ideal series over the
// samples at or after warmup, where the first warmup samples cover a
// filter's settling region. All four metrics are computed over the same
// range:
//
//	MSE        = mean((rec − ideal)²)
//	SNRdB      = 10·log10(power(ideal) / power(rec − ideal))
//	PeakError  = |max(rec) − max(ideal)|
//	Bias       = mean(rec − ideal)
//
// Samples before warmup are never inspected. Mismatched lengths, a
// negative warmup or a warmup that leaves nothing to score are rejected;
// a non-finite sample in the scored region reports a numerical
// instability carrying its absolute index.
func Score(reconstructed, ideal []float64, warmup int) (MetricSet, error) {
	if len(reconstructed) != len(ideal) {
		return MetricSet{}, fmt.Errorf("quality: reconstructed has %d samples, ideal has %d: %w",
			len(reconstructed), len(ideal), core.ErrShapeMismatch)
	}

	if warmup < 0 {
		return MetricSet{}, fmt.Errorf("quality: warmup must be non-negative, got %d: %w",
			warmup, core.ErrInvalidParameter)
	}

	if warmup >= len(ideal) {
		return MetricSet{}, fmt.Errorf("quality: warmup %d leaves no samples to score in series of length %d: %w",
			warmup, len(ideal), core.ErrInvalidParameter)
	}

	rec := reconstructed[warmup:]
	ref := ideal[warmup:]

	if i := core.FirstNonFinite(rec); i >= 0 {
		return MetricSet{}, &core.InstabilityError{
			Op:     "quality",
			Sample: warmup + i,
			Detail: "non-finite reconstructed sample",
		}
	}

	if i := core.FirstNonFinite(ref); i >= 0 {
		return MetricSet{}, &core.InstabilityError{
			Op:     "quality",
			Sample: warmup + i,
			Detail: "non-finite reference sample",
		}
	}

	res := make([]float64, len(rec))
	for i := range res {
		res[i] = rec[i] - ref[i]
	}

	n := float64(len(res))
	resPower := vecmath.DotProduct(res, res) / n
	refPower := vecmath.DotProduct(ref, ref) / n

	snr := math.Inf(1)
	if resPower > 0 {
		snr = core.LinearPowerToDB(refPower / resPower)
	}

	return MetricSet{
		MSE:       resPower,
		SNRdB:     snr,
		PeakError: math.Abs(floats.Max(rec) - floats.Max(ref)),
		Bias:      vecmath.Sum(res) / n,
	}, nil
}
