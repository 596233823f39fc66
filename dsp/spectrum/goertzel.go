package spectrum

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-recon/dsp/core"
)

// Goertzel evaluates a single frequency component of a series without
// computing a full transform. It runs the second-order recursion
//
//	s[i] = x[i] + 2*cos(2*pi*f/fs)*s[i-1] - s[i-2]
//
// and reads the component power off the final two states. The analyzer is
// stateful: Power reflects every sample processed since the last Reset,
// and matches |X[k]|^2 of a DFT over the same samples when the frequency
// is bin-aligned.
type Goertzel struct {
	frequency float64
	coeff     float64
	s0, s1    float64
}

// NewGoertzel creates an analyzer for the target frequency on series
// sampled on the given grid. The frequency must lie in [0, Nyquist].
func NewGoertzel(frequencyHz float64, grid core.TimeGrid) (*Goertzel, error) {
	err := grid.Validate()
	if err != nil {
		return nil, err
	}

	if frequencyHz < 0 || frequencyHz > grid.Nyquist() || !core.IsFinite(frequencyHz) {
		return nil, fmt.Errorf("spectrum: frequency must lie in [0, %g], got %g: %w", grid.Nyquist(), frequencyHz, core.ErrInvalidParameter)
	}

	return &Goertzel{
		frequency: frequencyHz,
		coeff:     2 * math.Cos(2*math.Pi*frequencyHz/grid.SampleRate()),
	}, nil
}

// Frequency returns the target frequency.
func (g *Goertzel) Frequency() float64 { return g.frequency }

// Reset clears the internal state.
func (g *Goertzel) Reset() {
	g.s0 = 0
	g.s1 = 0
}

// ProcessSample updates the internal state with a single input sample.
func (g *Goertzel) ProcessSample(input float64) {
	s := input + g.coeff*g.s0 - g.s1
	g.s1 = g.s0
	g.s0 = s
}

// ProcessBlock updates the internal state with a block of samples.
func (g *Goertzel) ProcessBlock(input []float64) {
	s0, s1 := g.s0, g.s1

	coeff := g.coeff
	for _, x := range input {
		s := x + coeff*s0 - s1
		s1 = s0
		s0 = s
	}

	g.s0, g.s1 = s0, s1
}

// Power returns the squared magnitude of the frequency component.
func (g *Goertzel) Power() float64 {
	return g.s0*g.s0 + g.s1*g.s1 - g.coeff*g.s0*g.s1
}

// Magnitude returns the magnitude of the frequency component.
func (g *Goertzel) Magnitude() float64 {
	p := g.Power()
	if p <= 0 {
		return 0
	}

	return math.Sqrt(p)
}

// TonePower evaluates |X(f)|^2 of the whole series at one frequency. The
// series length must match the grid.
func TonePower(series []float64, frequencyHz float64, grid core.TimeGrid) (float64, error) {
	if len(series) != grid.Len() {
		return 0, fmt.Errorf("spectrum: series length %d does not match grid length %d: %w", len(series), grid.Len(), core.ErrShapeMismatch)
	}

	g, err := NewGoertzel(frequencyHz, grid)
	if err != nil {
		return 0, err
	}

	g.ProcessBlock(series)

	return g.Power(), nil
}

// ToneAmplitude estimates the amplitude of a sinusoid at the given
// frequency,
//
//	A = 2*sqrt(|X(f)|^2) / N
//
// which is exact for a bin-aligned tone strictly between DC and Nyquist.
// The drift component of the reference noise model satisfies this on any
// grid spanning whole drift periods.
func ToneAmplitude(series []float64, frequencyHz float64, grid core.TimeGrid) (float64, error) {
	p, err := TonePower(series, frequencyHz, grid)
	if err != nil {
		return 0, err
	}

	if p <= 0 {
		return 0, nil
	}

	return 2 * math.Sqrt(p) / float64(len(series)), nil
}
