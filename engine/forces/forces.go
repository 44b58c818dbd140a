package forces

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Impulse is a time-bounded directional kick injected by an onset
// event. Start is the timestamp of the onset event itself (not of
// any particular tick), which doubles as the impulse's identity: the
// simulator admits each Start exactly once even when the same Forces
// value is reused across ticks or replayed frames.
type Impulse struct {
	Start     float64
	Duration  float64
	Magnitude float64
	Direction r3.Vec
}

// Forces is the complete per-block physics input produced by the
// Mapper and consumed by the simulator. A value is immutable once
// produced; the simulator may hold it across several ticks when no
// newer block has arrived.
type Forces struct {
	// RadialPressure is a uniform outward force per vertex
	RadialPressure float64
	// SpringConstant is the dynamic surface-tension spring constant
	SpringConstant float64
	// RippleAmplitude scales the noise ripple displacement, silence
	// decay already applied
	RippleAmplitude float64
	// AmbientOffset is the uniform breathing displacement while the
	// stream is in the Ambient silence phase
	AmbientOffset float64
	// Impulse is non-nil only for the block on which an onset fired
	Impulse *Impulse
}
