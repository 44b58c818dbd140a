package spectral

// ZeroCrossingRate calculates zero crossing rate per block.
// High ZCR indicates noisy/fricative content, low ZCR indicates
// tonal content.
type ZeroCrossingRate struct {
	sampleRate int
}

// NewZeroCrossingRate creates a new zero crossing rate calculator
func NewZeroCrossingRate(sampleRate int) *ZeroCrossingRate {
	return &ZeroCrossingRate{
		sampleRate: sampleRate,
	}
}

// ComputeNormalized calculates normalized ZCR (0-1 range): sign
// changes between consecutive samples divided by the maximum
// possible count for the block
func (zcr *ZeroCrossingRate) ComputeNormalized(frame []float64) float64 {
	if len(frame) < 2 {
		return 0.0
	}

	crossings := 0
	for i := 1; i < len(frame); i++ {
		if (frame[i-1] >= 0 && frame[i] < 0) || (frame[i-1] < 0 && frame[i] >= 0) {
			crossings++
		}
	}

	// Normalize by maximum possible crossings (alternating signal)
	maxCrossings := len(frame) - 1
	return float64(crossings) / float64(maxCrossings)
}

// Compute calculates ZCR as crossings per second
func (zcr *ZeroCrossingRate) Compute(frame []float64) float64 {
	if len(frame) < 2 || zcr.sampleRate <= 0 {
		return 0.0
	}

	crossings := zcr.ComputeNormalized(frame) * float64(len(frame)-1)
	frameDuration := float64(len(frame)) / float64(zcr.sampleRate)
	return crossings / frameDuration
}
