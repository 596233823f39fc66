// Package spectrum characterizes the noise riding on an observed series.
//
// Welch estimates one-sided power spectral densities by averaging windowed
// periodograms, so the white component shows up as a flat density and the
// baseline drift as a peak at its frequency. PSD.Flatness condenses a
// density into a single whiteness figure. Goertzel evaluates a single
// frequency bin without a full transform, which is enough to read the drift
// amplitude straight off a residual series.
package spectrum
