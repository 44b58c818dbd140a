package silence

import (
	"math"

	"github.com/soniform/soniform/engine/config"
)

// Phase is the silence state of the input stream
type Phase int

const (
	// PhaseActive: smoothed RMS above the silence threshold
	PhaseActive Phase = iota
	// PhaseSettling: below threshold for less than the settle duration
	PhaseSettling
	// PhaseAmbient: below threshold for the settle duration or longer.
	// Terminal until sound returns; behavior never changes again no
	// matter how long it persists.
	PhaseAmbient
)

func (p Phase) String() string {
	switch p {
	case PhaseActive:
		return "active"
	case PhaseSettling:
		return "settling"
	case PhaseAmbient:
		return "ambient"
	default:
		return "unknown"
	}
}

// Classifier tracks the smoothed RMS stream and classifies it into
// the three-phase silence state machine. It is a pure deterministic
// function of (rms, time) observations: it cannot fail, only
// transition.
//
// The Settling ripple decay and the Ambient oscillator are exposed in
// closed form over elapsed silence time rather than as per-call
// accumulators, so live capture (block cadence) and offline replay
// (frame cadence) observe identical values at identical times.
type Classifier struct {
	cfg *config.PhysicsConstants

	phase        Phase
	silenceStart float64
	ambientStart float64
}

// NewClassifier creates a classifier in the Active phase
func NewClassifier(cfg *config.PhysicsConstants) *Classifier {
	return &Classifier{cfg: cfg, phase: PhaseActive}
}

// Observe advances the state machine with one smoothed RMS sample.
// Returns the phase after the observation.
func (c *Classifier) Observe(rms, now float64) Phase {
	if rms > c.cfg.SilenceThreshold {
		// Any sample above threshold snaps back to Active with no
		// ramp-up delay; the feature smoothing supplies gradualness.
		c.phase = PhaseActive
		return c.phase
	}

	switch c.phase {
	case PhaseActive:
		c.phase = PhaseSettling
		c.silenceStart = now
	case PhaseSettling:
		if now-c.silenceStart >= c.cfg.SettleDuration {
			c.phase = PhaseAmbient
			// Anchor the oscillator to the settle boundary, not the
			// observation that happened to cross it, so the phase of
			// the sine does not depend on observation cadence.
			c.ambientStart = c.silenceStart + c.cfg.SettleDuration
		}
	case PhaseAmbient:
		// Terminal; nothing further happens.
	}

	return c.phase
}

// Phase returns the current phase
func (c *Classifier) Phase() Phase {
	return c.phase
}

// RippleMultiplier returns the decaying ripple-amplitude multiplier:
// 1.0 while Active, exp(-elapsed/tau) once silence begins. It
// monotonically approaches but never reaches zero.
func (c *Classifier) RippleMultiplier(now float64) float64 {
	if c.phase == PhaseActive {
		return 1.0
	}

	elapsed := now - c.silenceStart
	if elapsed < 0 {
		elapsed = 0
	}
	return math.Exp(-elapsed / c.cfg.RippleDecayTau)
}

// AmbientOffset returns the continuous low-amplitude breathing
// offset (in world units) while Ambient, zero otherwise. The
// oscillation never stops while silence persists.
func (c *Classifier) AmbientOffset(now float64) float64 {
	if c.phase != PhaseAmbient {
		return 0.0
	}

	elapsed := now - c.ambientStart
	amplitude := c.cfg.AmbientAmplitude * c.cfg.BaseRadius
	return amplitude * math.Sin(2*math.Pi*c.cfg.AmbientFrequency*elapsed)
}

// Reset returns the classifier to the Active phase
func (c *Classifier) Reset() {
	c.phase = PhaseActive
	c.silenceStart = 0
	c.ambientStart = 0
}
