//go:build fastmath

package pulse

import (
	"github.com/meko-christian/algo-approx"
)

// mathExp computes e^x using fast approximation. Batch synthesis spends
// nearly all of its time in exp, so the reduced precision trades well here.
func mathExp(x float64) float64 {
	return approx.FastExp(x)
}
