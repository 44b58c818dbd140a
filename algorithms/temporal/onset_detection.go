package temporal

// OnsetDetector detects energy onsets in a streaming RMS sequence.
// Strength is the positive RMS derivative between consecutive
// blocks; a discrete onset event fires only when the strength
// crosses the threshold and the cooldown window since the previous
// event has elapsed. The cooldown keeps sustained loud input from
// flooding the consumer with events.
type OnsetDetector struct {
	threshold float64
	cooldown  float64

	prevRMS   float64
	primed    bool
	lastOnset float64
	hasOnset  bool
}

// NewOnsetDetector creates a streaming onset detector.
// threshold is the minimum positive RMS delta, cooldown the minimum
// event spacing in seconds of block-time.
func NewOnsetDetector(threshold, cooldown float64) *OnsetDetector {
	return &OnsetDetector{
		threshold: threshold,
		cooldown:  cooldown,
	}
}

// Process feeds one raw (unsmoothed) block RMS value stamped with
// the block's time. It returns the onset strength for this block and
// whether a discrete onset event fired.
func (od *OnsetDetector) Process(rawRMS, timestamp float64) (strength float64, fired bool) {
	if !od.primed {
		od.prevRMS = rawRMS
		od.primed = true
		return 0.0, false
	}

	delta := rawRMS - od.prevRMS
	od.prevRMS = rawRMS

	if delta > 0 {
		strength = delta
	}

	if strength >= od.threshold {
		if !od.hasOnset || timestamp-od.lastOnset >= od.cooldown {
			od.lastOnset = timestamp
			od.hasOnset = true
			fired = true
		}
	}

	return strength, fired
}

// Reset clears detector state for a new stream
func (od *OnsetDetector) Reset() {
	od.prevRMS = 0
	od.primed = false
	od.lastOnset = 0
	od.hasOnset = false
}
