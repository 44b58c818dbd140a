package forces

import (
	"github.com/soniform/soniform/engine/config"
	"github.com/soniform/soniform/engine/features"
	"github.com/soniform/soniform/engine/silence"
)

// Mapper converts feature snapshots plus the silence phase into
// physics inputs. It is pure given its inputs; the only mutable state
// in the capture pipeline lives in the extractor's smoothers and the
// silence classifier.
type Mapper struct {
	cfg *config.PhysicsConstants
}

// NewMapper creates a force mapper over the shared constants
func NewMapper(cfg *config.PhysicsConstants) *Mapper {
	return &Mapper{cfg: cfg}
}

// Map produces the physics input for one snapshot. now is the time
// the mapping is evaluated at (the snapshot timestamp during live
// capture, the frame time during replay); the classifier must
// already have observed this snapshot's RMS.
func (m *Mapper) Map(snap features.FeatureSnapshot, cls *silence.Classifier, now float64) Forces {
	cfg := m.cfg

	f := Forces{
		RadialPressure:  snap.RMS * cfg.ExpansionScale * cfg.BaseRadius,
		SpringConstant:  cfg.SpringConstant + snap.SpectralCentroid*cfg.TensionRange,
		RippleAmplitude: snap.ZeroCrossingRate * cfg.RippleAmplitudeMax * cfg.BaseRadius * cls.RippleMultiplier(now),
		AmbientOffset:   cls.AmbientOffset(now),
	}

	if snap.OnsetFired {
		f.Impulse = &Impulse{
			Start:     snap.OnsetTime,
			Duration:  cfg.ImpulseDuration,
			Magnitude: snap.OnsetStrength * cfg.ImpulseScale,
			Direction: ImpulseDirection(snap.OnsetTime),
		}
	}

	return f
}
