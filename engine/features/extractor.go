package features

import (
	"github.com/soniform/soniform/algorithms/common"
	"github.com/soniform/soniform/algorithms/spectral"
	"github.com/soniform/soniform/algorithms/temporal"
	"github.com/soniform/soniform/algorithms/windowing"
	"github.com/soniform/soniform/engine/config"
)

// Extractor turns fixed-size mono PCM blocks into smoothed
// FeatureSnapshots. It is a pure function of the input blocks plus
// its own smoothing state; it performs no I/O and allocates only the
// windowed scratch copy per call.
//
// Caller contract: every block has exactly the configured block size
// and blocks arrive in stream order with 50% overlap. An empty block
// is a precondition violation, not a runtime error.
type Extractor struct {
	blockSize int

	window   *windowing.Hann
	fft      *spectral.FFT
	centroid *spectral.SpectralCentroid
	zcr      *spectral.ZeroCrossingRate

	smoothRMS      *common.ExponentialSmoother
	smoothCentroid *common.ExponentialSmoother
	smoothZCR      *common.ExponentialSmoother
	onsets         *temporal.OnsetDetector

	scratch []float64
}

// NewExtractor creates an extractor for the given stream format and
// smoothing constants
func NewExtractor(phys *config.PhysicsConstants, stream *config.StreamConfig) *Extractor {
	return &Extractor{
		blockSize: stream.BlockSize,
		window:    windowing.NewHann(stream.BlockSize, false),
		fft:       spectral.NewFFT(),
		centroid:  spectral.NewSpectralCentroid(stream.SampleRate),
		zcr:       spectral.NewZeroCrossingRate(stream.SampleRate),

		smoothRMS:      common.NewExponentialSmoother(phys.AlphaRMS),
		smoothCentroid: common.NewExponentialSmoother(phys.AlphaCentroid),
		smoothZCR:      common.NewExponentialSmoother(phys.AlphaZCR),
		onsets:         temporal.NewOnsetDetector(phys.OnsetThreshold, phys.OnsetCooldown),

		scratch: make([]float64, stream.BlockSize),
	}
}

// ProcessBlock extracts one FeatureSnapshot from a full block.
// The onset event (as opposed to the continuous strength) is
// reported both in the snapshot and as the second return value.
func (e *Extractor) ProcessBlock(block []float64, timestamp float64) (FeatureSnapshot, bool) {
	rawRMS := common.RMS(block)
	rms := common.Clamp01(e.smoothRMS.Process(rawRMS))

	copy(e.scratch, block)
	// scratch is allocated at the window size, so the length check in
	// ApplyInPlace cannot fail
	_ = e.window.ApplyInPlace(e.scratch)
	magnitudes := e.fft.MagnitudeSpectrum(e.scratch)
	centroid := common.Clamp01(e.smoothCentroid.Process(e.centroid.ComputeNormalized(magnitudes)))

	zcr := common.Clamp01(e.smoothZCR.Process(e.zcr.ComputeNormalized(block)))

	strength, fired := e.onsets.Process(rawRMS, timestamp)

	snap := FeatureSnapshot{
		Timestamp:        timestamp,
		RMS:              rms,
		SpectralCentroid: centroid,
		ZeroCrossingRate: zcr,
		OnsetStrength:    common.Clamp01(strength),
		OnsetFired:       fired,
	}
	if fired {
		snap.OnsetTime = timestamp
	}

	return snap, fired
}

// BlockSize returns the configured block size
func (e *Extractor) BlockSize() int {
	return e.blockSize
}

// Reset clears all smoothing and onset state for a new stream
func (e *Extractor) Reset() {
	e.smoothRMS.Reset()
	e.smoothCentroid.Reset()
	e.smoothZCR.Reset()
	e.onsets.Reset()
}
