package kalman

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-recon/dsp/core"
)

// Model describes the linear-Gaussian state-space system
//
//	x_k = F x_{k-1} + w_k,   w_k ~ N(0, Q)
//	z_k = H x_k     + v_k,   v_k ~ N(0, R)
//
// for a scalar measurement stream: H is a single row and R a 1×1
// variance. The state dimension is free.
type Model struct {
	// F is the n×n state transition matrix.
	F *mat.Dense
	// H is the 1×n observation row mapping state to measurement.
	H *mat.Dense
	// Q is the n×n process noise covariance.
	Q *mat.Dense
	// R is the 1×1 measurement noise variance.
	R *mat.Dense
}

// LocalLevel returns the one-dimensional random-walk model: the level
// itself is observed and wanders with process variance q against
// measurement variance r.
func LocalLevel(q, r float64) Model {
	return Model{
		F: mat.NewDense(1, 1, []float64{1}),
		H: mat.NewDense(1, 1, []float64{1}),
		Q: mat.NewDense(1, 1, []float64{q}),
		R: mat.NewDense(1, 1, []float64{r}),
	}
}

// LocalTrend returns the two-state constant-velocity model over a step
// of dt time units. Only the level is observed; the process noise is the
// discrete white-noise acceleration covariance
//
//	Q = q · | dt⁴/4  dt³/2 |
//	        | dt³/2  dt²   |
//
// scaled by the acceleration variance q.
func LocalTrend(dt, q, r float64) Model {
	dt2 := dt * dt

	return Model{
		F: mat.NewDense(2, 2, []float64{
			1, dt,
			0, 1,
		}),
		H: mat.NewDense(1, 2, []float64{1, 0}),
		Q: mat.NewDense(2, 2, []float64{
			q * dt2 * dt2 / 4, q * dt2 * dt / 2,
			q * dt2 * dt / 2, q * dt2,
		}),
		R: mat.NewDense(1, 1, []float64{r}),
	}
}

// Dim returns the state dimension, or 0 when the model is incomplete.
func (m Model) Dim() int {
	if m.F == nil {
		return 0
	}

	r, _ := m.F.Dims()

	return r
}

// Validate checks matrix presence, shapes and entries.
func (m Model) Validate() error {
	if m.F == nil || m.H == nil || m.Q == nil || m.R == nil {
		return fmt.Errorf("kalman: model matrices must all be set: %w", core.ErrInvalidParameter)
	}

	n, c := m.F.Dims()
	if n != c || n == 0 {
		return fmt.Errorf("kalman: transition matrix must be square and non-empty, got %dx%d: %w",
			n, c, core.ErrInvalidParameter)
	}

	hr, hc := m.H.Dims()
	if hr != 1 || hc != n {
		return fmt.Errorf("kalman: observation matrix must be 1x%d, got %dx%d: %w",
			n, hr, hc, core.ErrInvalidParameter)
	}

	qr, qc := m.Q.Dims()
	if qr != n || qc != n {
		return fmt.Errorf("kalman: process noise must be %dx%d, got %dx%d: %w",
			n, n, qr, qc, core.ErrInvalidParameter)
	}

	rr, rc := m.R.Dims()
	if rr != 1 || rc != 1 {
		return fmt.Errorf("kalman: measurement noise must be 1x1, got %dx%d: %w",
			rr, rc, core.ErrInvalidParameter)
	}

	for _, d := range []*mat.Dense{m.F, m.H, m.Q, m.R} {
		if !denseFinite(d) {
			return fmt.Errorf("kalman: model matrices must be finite: %w", core.ErrInvalidParameter)
		}
	}

	for i := 0; i < n; i++ {
		if m.Q.At(i, i) < 0 {
			return fmt.Errorf("kalman: process noise diagonal must be non-negative: %w",
				core.ErrInvalidParameter)
		}
	}

	if m.R.At(0, 0) < 0 {
		return fmt.Errorf("kalman: measurement noise must be non-negative: %w", core.ErrInvalidParameter)
	}

	return nil
}

func denseFinite(d *mat.Dense) bool {
	r, c := d.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if !core.IsFinite(d.At(i, j)) {
				return false
			}
		}
	}

	return true
}

func eye(n int) *mat.Dense {
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		d.Set(i, i, 1)
	}

	return d
}
