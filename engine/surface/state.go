package surface

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// State is the renderable surface snapshot published after each tick.
// It is a deep copy: the renderer may hold it for as long as it likes
// without observing torn writes from later ticks. Version increases
// by one per tick.
//
// States are never persisted; only the feature timeline that produced
// them is, which is what makes exports reproducible without storing
// geometry.
type State struct {
	Version         uint64
	Time            float64
	BaseRadius      float64
	RippleAmplitude float64
	Positions       []r3.Vec
	Velocities      []r3.Vec
}

// VertexCount returns the number of vertices in the snapshot
func (s *State) VertexCount() int {
	return len(s.Positions)
}

// KineticEnergy sums 1/2*|v|^2 over all vertices (unit mass)
func (s *State) KineticEnergy() float64 {
	total := 0.0
	for _, v := range s.Velocities {
		total += 0.5 * (v.X*v.X + v.Y*v.Y + v.Z*v.Z)
	}
	return total
}

// AverageRadialOffset returns the mean absolute deviation of vertex
// distance from the base radius
func (s *State) AverageRadialOffset() float64 {
	if len(s.Positions) == 0 {
		return 0.0
	}

	total := 0.0
	for _, p := range s.Positions {
		r := math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
		total += math.Abs(r - s.BaseRadius)
	}
	return total / float64(len(s.Positions))
}
