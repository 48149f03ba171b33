// Package spectrum measures rendered signals in the frequency domain.
//
// An [Analyzer] owns an FFT plan, a periodic Hann window and its scratch
// buffers. [Analyzer.Magnitude] returns a single-frame amplitude spectrum
// calibrated so a bin-centred sine of amplitude A reads A.
// [Analyzer.PowerSpectrum] and [Analyzer.Transfer] average half-overlapping
// frames (Welch) and are used to check a filter's measured response against
// its analytic one.
package spectrum
