package forces

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// splitmix64 advances the splitmix64 generator one step. Used as a
// bit mixer so impulse directions are a pure function of the onset
// timestamp rather than of any process-local RNG state.
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// unitFloat maps 53 bits of a hash to [0, 1)
func unitFloat(x uint64) float64 {
	return float64(x>>11) / (1 << 53)
}

// ImpulseDirection derives a pseudo-random unit vector from an onset
// event's timestamp. Two runs over the same timeline reproduce the
// identical direction, which is what keeps exported replays
// pixel-equal to the live session.
func ImpulseDirection(timestamp float64) r3.Vec {
	h := splitmix64(math.Float64bits(timestamp))
	u := unitFloat(h)
	h = splitmix64(h)
	v := unitFloat(h)

	// Uniform point on the unit sphere
	z := 2.0*u - 1.0
	theta := 2.0 * math.Pi * v
	s := math.Sqrt(1.0 - z*z)

	return r3.Vec{
		X: s * math.Cos(theta),
		Y: s * math.Sin(theta),
		Z: z,
	}
}
