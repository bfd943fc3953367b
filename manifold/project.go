package manifold

import (
	"github.com/onehalfatsquared/cpfold/bond"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// rankCond is the relative singular value cutoff for the least squares
// Newton solves.  Near-singular systems are solved in the least squares
// sense instead of failing.
const rankCond = 1e-12

// Project moves z back onto the constraint manifold of s along the rows of
// jac, the constraint Jacobian at the point the move started from.  It
// solves
//
//	constraints(z + jac^T * a) = 0
//
// for a with Newton's method.  Each iteration builds the b×b system
// Jacobian J = Jacobian(z + jac^T*a) * jac^T and solves J*da = -F with an SVD
// least squares solve.  Project returns the projected point and true once
// the constraint residual drops below tol, or false after maxIter updates.
// Failure is an ordinary outcome that callers turn into a rejection.
func Project(z []float64, jac *mat.Dense, s *bond.Set, tol float64, maxIter int) (y []float64, ok bool) {
	y = append([]float64(nil), z...)
	if jac == nil {
		return y, true
	}

	b, df := jac.Dims()
	jt := jac.T()
	yv := mat.NewVecDense(df, y)
	zv := mat.NewVecDense(df, z)
	a := mat.NewVecDense(b, nil)
	da := mat.NewVecDense(b, nil)
	f := mat.NewVecDense(b, nil)
	fdata := f.RawVector().Data

	var sys mat.Dense
	var svd mat.SVD
	for it := 0; ; it++ {
		s.Constraints(y, fdata)
		if floats.Norm(fdata, 2) < tol {
			return y, true
		} else if it == maxIter {
			return y, false
		}

		sys.Mul(Jacobian(y, s), jt)
		if !svd.Factorize(&sys, mat.SVDThin) {
			return y, false
		}
		rank := svd.Rank(rankCond)
		if rank == 0 {
			return y, false
		}
		f.ScaleVec(-1, f)
		svd.SolveVecTo(da, f, rank)

		a.AddVec(a, da)
		yv.MulVec(jt, a)
		yv.AddVec(yv, zv)
	}
}

// Refine pulls x onto the manifold of s with a full-coordinate Newton
// iteration, taking the minimum norm step J*dx = -F each time.  It is meant
// for configurations that are only approximately bonded, such as the moment
// a new bond forms, before their topology is matched.  It stops when the
// step norm drops below tol and reports whether that happened within
// maxIter steps.
func Refine(x []float64, s *bond.Set, tol float64, maxIter int) ([]float64, bool) {
	y := append([]float64(nil), x...)
	if s.Len() == 0 {
		return y, true
	}

	b, df := s.Len(), len(x)
	yv := mat.NewVecDense(df, y)
	dx := mat.NewVecDense(df, nil)
	f := mat.NewVecDense(b, nil)
	fdata := f.RawVector().Data

	var svd mat.SVD
	for it := 0; it < maxIter; it++ {
		s.Constraints(y, fdata)
		if !svd.Factorize(Jacobian(y, s), mat.SVDThin) {
			return y, false
		}
		rank := svd.Rank(rankCond)
		if rank == 0 {
			return y, false
		}
		f.ScaleVec(-1, f)
		svd.SolveVecTo(dx, f, rank)
		yv.AddVec(yv, dx)

		if floats.Norm(dx.RawVector().Data, 2) < tol {
			return y, true
		}
	}
	return y, false
}
