package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitude spectrum of data up to the
// Nyquist frequency. Input is zero-padded to the next power of two.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}

	n := 1
	for n < len(data) {
		n *= 2
	}
	padded := make([]float64, n)
	copy(padded, data)

	coeffs := fft.FFTReal(padded)

	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(coeffs[i])
	}
	return ps
}

// DominantFrequency returns the peak bin (excluding the mean) of the
// spectrum, converted to cycles per unit time given the record length.
func DominantFrequency(data []float64, duration float64) float64 {
	ps := PowerSpectrum(data)
	if len(ps) < 2 || duration <= 0 {
		return 0
	}

	maxPower := 0.0
	maxIdx := 0
	for i := 1; i < len(ps); i++ {
		if ps[i] > maxPower {
			maxPower = ps[i]
			maxIdx = i
		}
	}
	if maxIdx == 0 {
		return 0
	}

	// Padding stretched the record; frequency resolution follows the
	// padded length.
	n := 1
	for n < len(data) {
		n *= 2
	}
	paddedDuration := duration * float64(n) / float64(len(data))
	return float64(maxIdx) / paddedDuration
}
