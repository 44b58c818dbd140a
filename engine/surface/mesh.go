package surface

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// SphereDirections generates n near-uniform unit directions on the
// sphere using the Fibonacci lattice. The lattice is a pure function
// of n, so every process builds the identical mesh topology — a
// requirement for replaying a timeline captured elsewhere.
func SphereDirections(n int) ([]r3.Vec, error) {
	if n <= 0 {
		return nil, fmt.Errorf("vertex count must be positive, got %d", n)
	}

	golden := math.Pi * (3.0 - math.Sqrt(5.0))
	dirs := make([]r3.Vec, n)

	for i := 0; i < n; i++ {
		// Latitude spread avoids poles coinciding for small n
		y := 1.0 - 2.0*(float64(i)+0.5)/float64(n)
		radius := math.Sqrt(1.0 - y*y)
		theta := golden * float64(i)

		dirs[i] = r3.Vec{
			X: math.Cos(theta) * radius,
			Y: y,
			Z: math.Sin(theta) * radius,
		}
	}

	return dirs, nil
}
