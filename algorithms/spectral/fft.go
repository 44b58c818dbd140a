package spectral

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
)

// FFT provides Fast Fourier Transform functionality backed by
// mjibson/go-dsp.
type FFT struct{}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute computes the FFT of a real signal
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	// go-dsp handles all sizes, including non-power-of-2
	return fft.FFTReal(x)
}

// MagnitudeSpectrum computes the one-sided magnitude spectrum of a
// real signal. The result has len(x)/2+1 bins, DC through Nyquist.
func (f *FFT) MagnitudeSpectrum(x []float64) []float64 {
	if len(x) == 0 {
		return []float64{}
	}

	spectrum := fft.FFTReal(x)
	numBins := len(x)/2 + 1
	magnitudes := make([]float64, numBins)

	for i := 0; i < numBins; i++ {
		magnitudes[i] = math.Hypot(real(spectrum[i]), imag(spectrum[i]))
	}

	return magnitudes
}
