// Package agg accumulates streaming means and variances that can be
// merged across workers.
package agg

import "math"

// Accumulator builds the running mean and second central moment of a
// stream of observations using Welford's update. Partial accumulators
// from independent workers fold together with Merge; the combination is
// commutative and associative up to floating-point rounding, so the
// merge order a scheduler happens to produce does not matter.
type Accumulator struct {
	n    int
	mean float64
	m2   float64
}

// Add folds one observation into the running moments.
func (a *Accumulator) Add(x float64) {
	a.n++

	delta := x - a.mean
	a.mean += delta / float64(a.n)
	a.m2 += delta * (x - a.mean)
}

// Merge folds the observations summarized in b into a, as if every one
// of them had been passed to Add.
func (a *Accumulator) Merge(b Accumulator) {
	if b.n == 0 {
		return
	}

	if a.n == 0 {
		*a = b
		return
	}

	na := float64(a.n)
	nb := float64(b.n)
	n := na + nb

	delta := b.mean - a.mean
	a.mean += delta * nb / n
	a.m2 += b.m2 + delta*delta*na*nb/n
	a.n += b.n
}

// Count returns the number of observations folded in so far.
func (a *Accumulator) Count() int { return a.n }

// Mean returns the running mean, or 0 before any observation.
func (a *Accumulator) Mean() float64 { return a.mean }

// Variance returns the population variance, or 0 before any observation.
func (a *Accumulator) Variance() float64 {
	if a.n == 0 {
		return 0
	}

	return a.m2 / float64(a.n)
}

// StdDev returns the population standard deviation.
func (a *Accumulator) StdDev() float64 {
	return math.Sqrt(a.Variance())
}

// Reset clears the accumulator for reuse.
func (a *Accumulator) Reset() {
	*a = Accumulator{}
}

// Moment is a serializable snapshot of an accumulator.
type Moment struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// Moment captures the current mean and standard deviation.
func (a *Accumulator) Moment() Moment {
	return Moment{Mean: a.Mean(), Std: a.StdDev()}
}
