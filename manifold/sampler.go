package manifold

import (
	"fmt"

	"github.com/onehalfatsquared/cpfold"
	"github.com/onehalfatsquared/cpfold/bond"
	"github.com/onehalfatsquared/cpfold/weight"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Sampler is one Markov chain on the manifold of a fixed bond set.  It owns
// its configuration and random source and is not safe for concurrent use;
// run independent chains in separate Samplers.
type Sampler struct {
	set   *bond.Set
	w     weight.Weighter
	rng   cpfold.Rng
	cfg   cpfold.Config
	x     []float64
	stats Stats
}

// New builds a sampler starting from x0.  A nil w weighs bonds with
// cfg.Kappa and a nil rng uses a private stream seeded with cfg.Seed.  New
// fails with cpfold.ErrMalformedBonds if x0 does not match the bond set or
// the constraint Jacobian at x0 is rank deficient.
func New(x0 []float64, set *bond.Set, w weight.Weighter, rng cpfold.Rng, cfg cpfold.Config) (*Sampler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	} else if set.Dim() != cfg.Dim {
		return nil, fmt.Errorf("%w: bond set dimension %v, config dimension %v", cpfold.ErrMalformedBonds, set.Dim(), cfg.Dim)
	} else if len(x0) != set.Dof() {
		return nil, fmt.Errorf("%w: configuration has %v coordinates, want %v", cpfold.ErrMalformedBonds, len(x0), set.Dof())
	}

	if jac := Jacobian(x0, set); jac != nil {
		var svd mat.SVD
		if !svd.Factorize(jac, mat.SVDNone) {
			return nil, fmt.Errorf("%w: constraint jacobian factorization failed", cpfold.ErrMalformedBonds)
		}
		rank := 0
		for _, s := range svd.Values(nil) {
			if s > cfg.NewtonTol {
				rank++
			}
		}
		if rank < set.Len() {
			return nil, fmt.Errorf("%w: constraint jacobian has rank %v < %v bonds", cpfold.ErrMalformedBonds, rank, set.Len())
		}
	}

	if w == nil {
		w = weight.Sticky{Kappa: cfg.Kappa}
	}
	if rng == nil {
		rng = cpfold.NewRng(cfg.Seed)
	}
	return &Sampler{
		set: set,
		w:   w,
		rng: rng,
		cfg: cfg,
		x:   append([]float64(nil), x0...),
	}, nil
}

// Pos returns a copy of the current configuration.
func (s *Sampler) Pos() []float64 { return append([]float64(nil), s.x...) }

// Reset replaces the current configuration with a copy of x.
func (s *Sampler) Reset(x []float64) {
	if len(x) != len(s.x) {
		panic(fmt.Sprintf("reset configuration len %v incompatible with %v", len(x), len(s.x)))
	}
	s.x = append([]float64(nil), x...)
}

func (s *Sampler) Set() *bond.Set { return s.set }

func (s *Sampler) Stats() Stats { return s.stats }

// Run takes n steps and returns how many were accepted.
func (s *Sampler) Run(n int) int {
	accepted := 0
	for i := 0; i < n; i++ {
		if s.Step() == Accepted {
			accepted++
		}
	}
	return accepted
}

// Step runs one Markov step and reports where it ended.  On any rejection
// the configuration is left exactly as it was.
func (s *Sampler) Step() Outcome {
	o := s.step()
	s.stats.Counts[o]++
	return o
}

func (s *Sampler) step() Outcome {
	x := s.x
	df := len(x)
	tol, maxiter := s.cfg.NewtonTol, s.cfg.NewtonIter

	// geometry at x
	jx := Jacobian(x, s.set)
	tx := Tangent(jx, df)

	v := Propose(tx, df, s.cfg.Sigma, s.rng)
	y, ok := Project(floats.AddTo(make([]float64, df), x, v), jx, s.set, tol, maxiter)
	if !ok {
		return RejectProjection
	} else if !s.set.Steric(y) {
		return RejectSteric
	}

	// geometry at y, and the move that would bring y back to x
	jy := Jacobian(y, s.set)
	ty := Tangent(jy, df)
	vr := ReverseTangent(ty, x, y)

	w := s.w.Weight(s.set)
	ratio := Ratio(w, Pdet(jx, tol), w, Pdet(jy, tol), v, vr, s.cfg.Sigma)
	if u := s.rng.Float64(); !(u <= ratio) {
		return RejectMH
	}

	xr, ok := Project(floats.AddTo(make([]float64, df), y, vr), jy, s.set, tol, maxiter)
	if !ok {
		return RejectReverseProjection
	} else if floats.Distance(x, xr, 2) > s.cfg.ReversibilityTol() {
		return RejectReversibility
	}

	s.x = y
	return Accepted
}
