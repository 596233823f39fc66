package pulse

import (
	"fmt"

	"github.com/cwbudde/algo-recon/dsp/core"
)

// Config holds the parameters of a single Gaussian detector pulse
//
//	S(t) = A * exp(-(t - t0)^2 / (2 * sigma^2))
//
// where A is the peak amplitude, t0 the arrival time of the pulse center,
// and sigma its width.
type Config struct {
	Amplitude   float64 // peak height A
	ArrivalTime float64 // pulse center t0
	Sigma       float64 // pulse width
}

// DefaultConfig returns the reference pulse: unit amplitude arriving at
// t=50 with width 5.
func DefaultConfig() Config {
	return Config{
		Amplitude:   1.0,
		ArrivalTime: 50.0,
		Sigma:       5.0,
	}
}

// Validate checks that the pulse parameters are physical.
func (c Config) Validate() error {
	if c.Amplitude <= 0 || !core.IsFinite(c.Amplitude) {
		return fmt.Errorf("pulse: amplitude must be positive and finite, got %g: %w", c.Amplitude, core.ErrInvalidParameter)
	}

	if c.Sigma <= 0 || !core.IsFinite(c.Sigma) {
		return fmt.Errorf("pulse: sigma must be positive and finite, got %g: %w", c.Sigma, core.ErrInvalidParameter)
	}

	if !core.IsFinite(c.ArrivalTime) {
		return fmt.Errorf("pulse: arrival time must be finite, got %g: %w", c.ArrivalTime, core.ErrInvalidParameter)
	}

	return nil
}

// Generate synthesizes the ideal pulse on the given grid. The result is
// deterministic and depends only on the inputs.
func Generate(grid core.TimeGrid, cfg Config) ([]float64, error) {
	err := grid.Validate()
	if err != nil {
		return nil, err
	}

	out := make([]float64, grid.Len())

	err = GenerateInto(out, grid, cfg)
	if err != nil {
		return nil, err
	}

	return out, nil
}

// GenerateInto synthesizes the pulse into dst, which must match the grid
// length. Useful for hot loops that reuse buffers.
func GenerateInto(dst []float64, grid core.TimeGrid, cfg Config) error {
	err := cfg.Validate()
	if err != nil {
		return err
	}

	err = grid.Validate()
	if err != nil {
		return err
	}

	if len(dst) != grid.Len() {
		return fmt.Errorf("pulse: dst length %d does not match grid length %d: %w", len(dst), grid.Len(), core.ErrShapeMismatch)
	}

	inv := 1 / (2 * cfg.Sigma * cfg.Sigma)
	for i := range dst {
		d := grid.Time(i) - cfg.ArrivalTime
		dst[i] = cfg.Amplitude * mathExp(-d*d*inv)
	}

	return nil
}
