package bond

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// BondAngle returns the angle between the bond vectors x1-x0 and x2-x1 of
// the first three particles of x.  A straight chain has angle 0.
func BondAngle(x []float64, dim int) float64 {
	v1 := make([]float64, dim)
	v2 := make([]float64, dim)
	for c := 0; c < dim; c++ {
		v1[c] = x[dim+c] - x[c]
		v2[c] = x[2*dim+c] - x[dim+c]
	}

	cos := floats.Dot(v1, v2) / (floats.Norm(v1, 2) * floats.Norm(v2, 2))
	// rounding can push |cos| a hair past 1
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos)
}
