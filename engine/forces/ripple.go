package forces

import (
	opensimplex "github.com/ojrac/opensimplex-go"
	"gonum.org/v1/gonum/spatial/r3"
)

// RippleField is a smooth seeded noise field sampled per vertex
// direction plus time. The same seed and parameters are used by the
// live and replay simulators; evaluation depends only on (dir, t), so
// both paths see bit-identical displacement.
type RippleField struct {
	noise        opensimplex.Noise
	spatialFreq  float64
	temporalFreq float64
}

// NewRippleField creates a field from a fixed seed and the spatial /
// temporal frequencies
func NewRippleField(seed int64, spatialFreq, temporalFreq float64) *RippleField {
	return &RippleField{
		noise:        opensimplex.New(seed),
		spatialFreq:  spatialFreq,
		temporalFreq: temporalFreq,
	}
}

// Eval samples the field for a unit direction at time t. Output is
// in [-1, 1]; the caller scales by the ripple amplitude.
func (rf *RippleField) Eval(dir r3.Vec, t float64) float64 {
	return rf.noise.Eval4(
		dir.X*rf.spatialFreq,
		dir.Y*rf.spatialFreq,
		dir.Z*rf.spatialFreq,
		t*rf.temporalFreq,
	)
}
