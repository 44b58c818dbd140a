package common

// ExponentialSmoother applies one-pole exponential smoothing to a
// scalar stream: smoothed = alpha*raw + (1-alpha)*prev.
// The first sample initializes the smoother directly so there is no
// warm-up transient from an arbitrary zero state.
type ExponentialSmoother struct {
	alpha  float64
	value  float64
	primed bool
}

// NewExponentialSmoother creates a smoother with the given factor.
// Alpha outside (0, 1] is clamped into range.
func NewExponentialSmoother(alpha float64) *ExponentialSmoother {
	if alpha <= 0 {
		alpha = 1e-3
	}
	if alpha > 1 {
		alpha = 1
	}
	return &ExponentialSmoother{alpha: alpha}
}

// Process feeds one raw sample and returns the smoothed value
func (s *ExponentialSmoother) Process(raw float64) float64 {
	if !s.primed {
		s.value = raw
		s.primed = true
		return s.value
	}

	s.value = s.alpha*raw + (1.0-s.alpha)*s.value
	return s.value
}

// Value returns the current smoothed value without advancing state
func (s *ExponentialSmoother) Value() float64 {
	return s.value
}

// Reset clears the smoother back to its unprimed state
func (s *ExponentialSmoother) Reset() {
	s.value = 0
	s.primed = false
}
