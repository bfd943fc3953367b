// Package manifold implements Monte Carlo on a manifold for clusters whose
// bonds fix pairwise distances to one.  A sampler proposes isotropic
// gaussian moves in the tangent space of the constraint manifold, projects
// them back with Newton's method along the constraint gradients, and accepts
// with a Metropolis-Hastings ratio that carries the pseudo-determinant of the
// constraint Jacobian.  Every accepted move is checked for reversibility by
// replaying the reverse move from the destination.
package manifold

import (
	"github.com/onehalfatsquared/cpfold/bond"
	"gonum.org/v1/gonum/mat"
)

// Jacobian returns the b×df Jacobian of the bond constraints of s at x.
// Row k holds the gradient of |x_p - x_q|^2 - 1 for the k-th bonded pair:
// 2(x_p - x_q) in the columns of p and the negation in the columns of q.
// It returns nil when s has no bonds; callers treat that as the free case
// whose tangent space is the whole space.
func Jacobian(x []float64, s *bond.Set) *mat.Dense {
	if s.Len() == 0 {
		return nil
	}

	dim := s.Dim()
	jac := mat.NewDense(s.Len(), len(x), nil)
	for k, p := range s.Pairs() {
		i, j := p[0], p[1]
		for c := 0; c < dim; c++ {
			diff := x[dim*i+c] - x[dim*j+c]
			jac.Set(k, dim*i+c, 2*diff)
			jac.Set(k, dim*j+c, -2*diff)
		}
	}
	return jac
}

// Tangent returns a df×d orthonormal basis of the null space of jac, with
// d = df - b.  The basis is the last d columns of the orthogonal factor of
// a QR factorization of jac^T; jac must have full row rank.  A nil jac gives
// the identity.  Tangent returns nil when d is zero.
func Tangent(jac *mat.Dense, df int) *mat.Dense {
	if jac == nil {
		return eye(df)
	}

	b, _ := jac.Dims()
	if b == df {
		return nil
	}

	var qr mat.QR
	qr.Factorize(jac.T())
	var q mat.Dense
	qr.QTo(&q)
	return mat.DenseCopyOf(q.Slice(0, df, b, df))
}

// ReverseTangent orthogonally projects x - y onto the span of the columns
// of t:
//
//	vr = t * t^T * (x - y)
//
// t must have orthonormal columns.  A nil t gives the zero vector.
func ReverseTangent(t *mat.Dense, x, y []float64) []float64 {
	vr := make([]float64, len(x))
	if t == nil {
		return vr
	}

	diff := make([]float64, len(x))
	for i := range diff {
		diff[i] = x[i] - y[i]
	}

	_, d := t.Dims()
	coeff := mat.NewVecDense(d, nil)
	coeff.MulVec(t.T(), mat.NewVecDense(len(x), diff))
	mat.NewVecDense(len(x), vr).MulVec(t, coeff)
	return vr
}

func eye(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}
