package manifold

import (
	"math"

	"github.com/onehalfatsquared/cpfold"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Pdet returns the pseudo-determinant of jac: the product of its singular
// values greater than tol.  A nil jac has pseudo-determinant 1.  If the SVD
// fails Pdet returns NaN, which makes any ratio built from it reject.
func Pdet(jac *mat.Dense, tol float64) float64 {
	if jac == nil {
		return 1
	}

	var svd mat.SVD
	if !svd.Factorize(jac, mat.SVDNone) {
		return math.NaN()
	}
	pdet := 1.0
	for _, s := range svd.Values(nil) {
		if math.Abs(s) > tol {
			pdet *= math.Abs(s)
		}
	}
	return pdet
}

// Density is the unnormalized isotropic gaussian density of a tangent move
// v with standard deviation sigma.  The normalization depends only on the
// tangent dimension and cancels in every ratio.
func Density(v []float64, sigma float64) float64 {
	return math.Exp(-floats.Dot(v, v) / (2 * sigma * sigma))
}

// Ratio is the Metropolis-Hastings ratio of moving from x to y:
//
//	[wy/pdety * density(vr)] / [wx/pdetx * density(v)]
//
// where v is the forward tangent move and vr the reverse one.  It is
// evaluated in log space so that tiny densities do not underflow.
func Ratio(wx, pdetx, wy, pdety float64, v, vr []float64, sigma float64) float64 {
	s2 := 2 * sigma * sigma
	logr := math.Log(wy) - math.Log(pdety) - floats.Dot(vr, vr)/s2 -
		(math.Log(wx) - math.Log(pdetx) - floats.Dot(v, v)/s2)
	return math.Exp(logr)
}

// Propose draws r ~ N(0, sigma^2 I_d) and returns the ambient move t*r.  A
// nil t (no tangent directions) gives the zero move.
func Propose(t *mat.Dense, df int, sigma float64, rng cpfold.Rng) []float64 {
	v := make([]float64, df)
	if t == nil {
		return v
	}

	_, d := t.Dims()
	r := make([]float64, d)
	for i := range r {
		r[i] = sigma * rng.NormFloat64()
	}
	mat.NewVecDense(df, v).MulVec(t, mat.NewVecDense(d, r))
	return v
}
