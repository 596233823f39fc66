package window

// Analysis holds the spectral properties of a window that power-spectrum
// normalization depends on.
type Analysis struct {
	// CoherentGain is sum(w[n]) / N, the DC response of the window.
	CoherentGain float64
	// Power is sum(w[n]^2) / N, the incoherent power gain.
	Power float64
	// ENBW is the equivalent noise bandwidth in bins.
	ENBW float64
}

// Analyze computes gain and bandwidth properties of the given coefficients.
// A zero-sum window yields ENBW 0.
func Analyze(coeffs []float64) Analysis {
	n := len(coeffs)
	if n == 0 {
		return Analysis{}
	}

	sum := 0.0
	sumSq := 0.0
	for _, c := range coeffs {
		sum += c
		sumSq += c * c
	}

	a := Analysis{
		CoherentGain: sum / float64(n),
		Power:        sumSq / float64(n),
	}
	if sum != 0 {
		a.ENBW = float64(n) * sumSq / (sum * sum)
	}
	return a
}

// EquivalentNoiseBandwidth returns the ENBW in bins for a window.
func EquivalentNoiseBandwidth(coeffs []float64) (float64, error) {
	if len(coeffs) == 0 {
		return 0, errEmptyCoeffs
	}

	a := Analyze(coeffs)
	if a.CoherentGain == 0 {
		return 0, errZeroCoherentGain
	}
	return a.ENBW, nil
}
