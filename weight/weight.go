// Package weight provides the statistical weight a sampler assigns to a
// bond topology.  The sampler treats a Weighter as an opaque functor.
package weight

import (
	"math"

	"github.com/onehalfatsquared/cpfold/bond"
)

type Weighter interface {
	// Weight returns the positive statistical weight of the bonds in s.
	Weight(s *bond.Set) float64
}

// Func adapts a plain function of the bond count.
type Func func(nbonds int) float64

func (fn Func) Weight(s *bond.Set) float64 { return fn(s.Len()) }

// Sticky weighs every bond by the same sticky parameter: Kappa^b.
type Sticky struct {
	Kappa float64
}

func (w Sticky) Weight(s *bond.Set) float64 { return math.Pow(w.Kappa, float64(s.Len())) }

// Pair is an unordered pair of particle types.
type Pair [2]int

// NewPair orders a and b so that Pair{a,b} == Pair{b,a} lookups agree.
func NewPair(a, b int) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{a, b}
}

// Typed weighs each bond by the sticky parameter of its particle type pair.
// Types[i] is the type of particle i.  If SkipBackbone is true, bonds between
// consecutive particles (a polymer backbone) carry no weight.  Missing pairs
// weigh 1.
type Typed struct {
	Types        []int
	Kappa        map[Pair]float64
	SkipBackbone bool
}

func (w Typed) Weight(s *bond.Set) float64 {
	prod := 1.0
	for _, p := range s.Pairs() {
		if w.SkipBackbone && p[1] == p[0]+1 {
			continue
		}
		if k, ok := w.Kappa[NewPair(w.Types[p[0]], w.Types[p[1]])]; ok {
			prod *= k
		}
	}
	return prod
}
