package bond

import (
	"fmt"
	"math"

	"github.com/onehalfatsquared/cpfold"
	"gonum.org/v1/gonum/floats"
)

// Set is the list of bonded pairs of an adjacency in a fixed spatial
// dimension.  Each pair (p,q) imposes g(x) = |x_p - x_q|^2 - 1 = 0.  A Set is
// immutable and safe to share between chains.
type Set struct {
	dim   int
	adj   Adjacency
	pairs [][2]int
}

// NewSet derives the bonded pairs of adj in row-major upper-triangular
// order.  It fails with cpfold.ErrMalformedBonds if dim is not 2 or 3 or if
// there are more bonds than coordinates.
func NewSet(adj Adjacency, dim int) (*Set, error) {
	if dim != 2 && dim != 3 {
		return nil, fmt.Errorf("%w: dimension %v", cpfold.ErrMalformedBonds, dim)
	}

	s := &Set{dim: dim, adj: adj.Clone()}
	for i := 0; i < adj.N(); i++ {
		for j := i + 1; j < adj.N(); j++ {
			if adj.At(i, j) {
				s.pairs = append(s.pairs, [2]int{i, j})
			}
		}
	}
	if s.Free() < 0 {
		return nil, fmt.Errorf("%w: %v bonds exceed %v coordinates", cpfold.ErrMalformedBonds, s.Len(), s.Dof())
	}
	return s, nil
}

func (s *Set) Dim() int { return s.dim }

// N is the particle count.
func (s *Set) N() int { return s.adj.N() }

// Len is the number of bonds b.
func (s *Set) Len() int { return len(s.pairs) }

// Dof is the ambient coordinate count df = Dim*N.
func (s *Set) Dof() int { return s.dim * s.adj.N() }

// Free is the manifold dimension d = df - b.
func (s *Set) Free() int { return s.Dof() - s.Len() }

func (s *Set) Pairs() [][2]int { return s.pairs }

func (s *Set) Adjacency() Adjacency { return s.adj }

// Constraints evaluates every bond constraint at x into dst, allocating dst
// if it is nil.
func (s *Set) Constraints(x, dst []float64) []float64 {
	if dst == nil {
		dst = make([]float64, len(s.pairs))
	}
	for k, p := range s.pairs {
		dst[k] = dist2(x, s.dim, p[0], p[1]) - 1
	}
	return dst
}

// Residual is the 2-norm of the constraint vector at x.
func (s *Set) Residual(x []float64) float64 {
	if len(s.pairs) == 0 {
		return 0
	}
	return floats.Norm(s.Constraints(x, nil), 2)
}

// Satisfied reports whether every bond constraint at x is within tol.
func (s *Set) Satisfied(x []float64, tol float64) bool {
	for _, g := range s.Constraints(x, nil) {
		if math.Abs(g) >= tol {
			return false
		}
	}
	return true
}

// Steric reports whether every non-bonded pair in x is at least unit
// distance apart.
func (s *Set) Steric(x []float64) bool {
	n := s.adj.N()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if !s.adj.At(i, j) && dist2(x, s.dim, i, j) < 1 {
				return false
			}
		}
	}
	return true
}
