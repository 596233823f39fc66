// Package fourier provides a frequency-domain low-pass reconstruction
// filter.
//
// The observed series is transformed as a whole, every bin whose frequency
// magnitude exceeds the cutoff is zeroed, and the result is transformed
// back. The mask is symmetric in frequency magnitude, so the conjugate
// symmetry of the real input spectrum is preserved and the inverse
// transform is real up to floating-point residue; the residual imaginary
// part is checked against a tolerance proportional to the input magnitude.
//
// The filter is non-causal: it sees the entire series at once and cannot
// be used online. Gibbs ringing near sharp cutoffs is an expected property
// of the ideal-brick-wall mask, not a defect. A cutoff at or above the
// Nyquist frequency keeps every bin and degenerates to the identity.
package fourier
