package kalman

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-recon/dsp/core"
)

const (
	// DefaultProcessNoise is the local-level process variance used when no
	// model is configured.
	DefaultProcessNoise = 1e-4
	// DefaultMeasurementNoise is the matching measurement variance.
	DefaultMeasurementNoise = 1e-2
	// DefaultInitialVariance is the prior covariance placed on every state
	// component, wide enough that the first measurements dominate.
	DefaultInitialVariance = 1e3
	// DefaultWarmup is the number of leading samples the filter reports as
	// still converging from the diffuse prior.
	DefaultWarmup = 10

	// defaultDetTolerance bounds |S| from below before the gain division.
	defaultDetTolerance = 1e-12
)

// State carries the estimate mean and covariance between recursions.
type State struct {
	X *mat.VecDense
	P *mat.Dense
}

// NewState returns the diffuse prior for an n-dimensional state: zero
// mean with DefaultInitialVariance on the covariance diagonal. n must be
// at least 1.
func NewState(n int) State {
	p := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		p.Set(i, i, DefaultInitialVariance)
	}

	return State{
		X: mat.NewVecDense(n, nil),
		P: p,
	}
}

// Predict advances the state one step through the transition model:
//
//	x' = F x
//	P' = F P Fᵀ + Q
//
// The input state is not modified.
func Predict(m Model, s State) State {
	n := m.Dim()

	x := mat.NewVecDense(n, nil)
	x.MulVec(m.F, s.X)

	var fp, fpft mat.Dense

	fp.Mul(m.F, s.P)
	fpft.Mul(&fp, m.F.T())

	p := mat.NewDense(n, n, nil)
	p.Add(&fpft, m.Q)

	return State{X: x, P: p}
}

// Update folds the scalar measurement z into a predicted state:
//
//	y = z − H x'
//	S = H P' Hᵀ + R
//	K = P' Hᵀ S⁻¹
//	x″ = x' + K y
//	P″ = (I − K H) P'
//
// followed by re-symmetrization of P″. It fails with a numerical
// instability when |S| drops below 1e-12; the input state is not
// modified.
func Update(m Model, s State, z float64) (State, error) {
	return update(m, s, z, defaultDetTolerance)
}

func update(m Model, s State, z float64, detTol float64) (State, error) {
	n := m.Dim()

	// P' Hᵀ is reused for both the innovation covariance and the gain.
	var ph mat.Dense

	ph.Mul(s.P, m.H.T())

	var hph mat.Dense

	hph.Mul(m.H, &ph)

	innovVar := hph.At(0, 0) + m.R.At(0, 0)
	if !core.IsFinite(innovVar) || math.Abs(innovVar) < detTol {
		return State{}, fmt.Errorf("kalman: innovation covariance %.3e is singular: %w",
			innovVar, core.ErrNumericalInstability)
	}

	zhat := mat.NewVecDense(1, nil)
	zhat.MulVec(m.H, s.X)
	innov := z - zhat.AtVec(0)

	k := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		k.SetVec(i, ph.At(i, 0)/innovVar)
	}

	x := mat.NewVecDense(n, nil)
	x.AddScaledVec(s.X, innov, k)

	var kh, imkh, p mat.Dense

	kh.Mul(k, m.H)
	imkh.Sub(eye(n), &kh)
	p.Mul(&imkh, s.P)

	// Re-symmetrize so rounding drift cannot leave P asymmetric.
	sym := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := 0.5 * (p.At(i, j) + p.At(j, i))
			sym.Set(i, j, v)
			sym.Set(j, i, v)
		}
	}

	return State{X: x, P: sym}, nil
}

// Filter runs the predict/update recursion over whole series.
type Filter struct {
	model  Model
	x0     []float64
	p0     *mat.Dense
	warmup int
	detTol float64
}

// Option adjusts filter construction.
type Option func(*Filter) error

// WithModel replaces the default local-level model.
func WithModel(m Model) Option {
	return func(f *Filter) error {
		err := m.Validate()
		if err != nil {
			return err
		}

		f.model = m

		return nil
	}
}

// WithInitialState sets the prior mean. The number of values must match
// the model's state dimension.
func WithInitialState(values ...float64) Option {
	return func(f *Filter) error {
		for _, v := range values {
			if !core.IsFinite(v) {
				return fmt.Errorf("kalman: initial state must be finite: %w", core.ErrInvalidParameter)
			}
		}

		f.x0 = append([]float64(nil), values...)

		return nil
	}
}

// WithInitialCovariance sets the prior covariance in place of the
// diffuse default.
func WithInitialCovariance(p *mat.Dense) Option {
	return func(f *Filter) error {
		if p == nil || !denseFinite(p) {
			return fmt.Errorf("kalman: initial covariance must be set and finite: %w",
				core.ErrInvalidParameter)
		}

		f.p0 = p

		return nil
	}
}

// WithWarmup overrides the convergence margin reported by Warmup.
func WithWarmup(n int) Option {
	return func(f *Filter) error {
		if n < 0 {
			return fmt.Errorf("kalman: warmup must be non-negative, got %d: %w",
				n, core.ErrInvalidParameter)
		}

		f.warmup = n

		return nil
	}
}

// WithDetTolerance overrides the lower bound on |S| that triggers the
// singular-innovation error.
func WithDetTolerance(tol float64) Option {
	return func(f *Filter) error {
		if !(tol > 0) || !core.IsFinite(tol) {
			return fmt.Errorf("kalman: det tolerance must be positive and finite, got %v: %w",
				tol, core.ErrInvalidParameter)
		}

		f.detTol = tol

		return nil
	}
}

// New builds a filter around the local-level default model, a zero prior
// mean and a diffuse prior covariance, then applies the options.
func New(opts ...Option) (*Filter, error) {
	f := &Filter{
		model:  LocalLevel(DefaultProcessNoise, DefaultMeasurementNoise),
		warmup: DefaultWarmup,
		detTol: defaultDetTolerance,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		err := opt(f)
		if err != nil {
			return nil, err
		}
	}

	err := f.model.Validate()
	if err != nil {
		return nil, err
	}

	dim := f.model.Dim()

	if f.x0 != nil && len(f.x0) != dim {
		return nil, fmt.Errorf("kalman: initial state has %d values for a %d-dimensional model: %w",
			len(f.x0), dim, core.ErrInvalidParameter)
	}

	if f.p0 != nil {
		pr, pc := f.p0.Dims()
		if pr != dim || pc != dim {
			return nil, fmt.Errorf("kalman: initial covariance is %dx%d for a %d-dimensional model: %w",
				pr, pc, dim, core.ErrInvalidParameter)
		}
	}

	return f, nil
}

// Name identifies the strategy in study reports.
func (f *Filter) Name() string { return "kalman" }

// Warmup returns the number of leading samples dominated by the prior.
func (f *Filter) Warmup() int { return f.warmup }

// Model returns the configured state-space model.
func (f *Filter) Model() Model { return f.model }

// Process filters the series sample by sample and returns the estimated
// measurement H·x after each update. A singular innovation covariance or
// a non-finite measurement aborts with the offending sample index.
func (f *Filter) Process(observed []float64) ([]float64, error) {
	if len(observed) == 0 {
		return []float64{}, nil
	}

	if f.model.Dim() == 1 {
		return f.processScalar(observed)
	}

	return f.processMatrix(observed)
}

// processScalar is the allocation-free recursion for one-dimensional
// models, where every matrix in the update collapses to a float.
func (f *Filter) processScalar(observed []float64) ([]float64, error) {
	ft := f.model.F.At(0, 0)
	h := f.model.H.At(0, 0)
	q := f.model.Q.At(0, 0)
	r := f.model.R.At(0, 0)

	x := 0.0
	if f.x0 != nil {
		x = f.x0[0]
	}

	p := DefaultInitialVariance
	if f.p0 != nil {
		p = f.p0.At(0, 0)
	}

	out := make([]float64, len(observed))

	for i, z := range observed {
		if !core.IsFinite(z) {
			return nil, &core.InstabilityError{Op: "kalman", Sample: i, Detail: "non-finite measurement"}
		}

		x = ft * x
		p = ft*p*ft + q

		innovVar := h*p*h + r
		if !core.IsFinite(innovVar) || math.Abs(innovVar) < f.detTol {
			return nil, &core.InstabilityError{
				Op:     "kalman",
				Sample: i,
				Detail: fmt.Sprintf("innovation covariance %.3e is singular", innovVar),
			}
		}

		k := p * h / innovVar
		x += k * (z - h*x)
		p = (1 - k*h) * p

		out[i] = h * x
	}

	return out, nil
}

func (f *Filter) processMatrix(observed []float64) ([]float64, error) {
	st := f.initialState()
	out := make([]float64, len(observed))

	var zhat mat.VecDense

	for i, z := range observed {
		if !core.IsFinite(z) {
			return nil, &core.InstabilityError{Op: "kalman", Sample: i, Detail: "non-finite measurement"}
		}

		st = Predict(f.model, st)

		next, err := update(f.model, st, z, f.detTol)
		if err != nil {
			return nil, &core.InstabilityError{
				Op:     "kalman",
				Sample: i,
				Detail: "innovation covariance is singular",
			}
		}

		st = next

		zhat.MulVec(f.model.H, st.X)
		out[i] = zhat.AtVec(0)
	}

	if i := core.FirstNonFinite(out); i >= 0 {
		return nil, &core.InstabilityError{Op: "kalman", Sample: i, Detail: "non-finite estimate"}
	}

	return out, nil
}

func (f *Filter) initialState() State {
	dim := f.model.Dim()
	st := NewState(dim)

	if f.x0 != nil {
		for i, v := range f.x0 {
			st.X.SetVec(i, v)
		}
	}

	if f.p0 != nil {
		st.P.CloneFrom(f.p0)
	}

	return st
}
