package features

// FeatureSnapshot is a timestamped bundle of the four scalar audio
// measurements driving the physics. Immutable once produced; one is
// emitted per analysis block. Timestamps are seconds, monotonic from
// stream start.
//
// OnsetFired marks the discrete onset event for this block; it is a
// stored fact, never interpolated. OnsetTime carries the event's own
// timestamp so replayed impulses are seeded from the exact moment the
// live event fired.
type FeatureSnapshot struct {
	Timestamp        float64 `json:"t"`
	RMS              float64 `json:"rms"`
	SpectralCentroid float64 `json:"centroid"`
	ZeroCrossingRate float64 `json:"zcr"`
	OnsetStrength    float64 `json:"onset_strength"`
	OnsetFired       bool    `json:"onset,omitempty"`
	OnsetTime        float64 `json:"onset_time,omitempty"`
}
