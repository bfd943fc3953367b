// Package bench provides small reference systems with known equilibrium
// behavior for checking manifold samplers and first passage estimators.
package bench

import (
	"math"

	"github.com/onehalfatsquared/cpfold"
	"github.com/onehalfatsquared/cpfold/bond"
	"github.com/onehalfatsquared/cpfold/catalog"
	"github.com/onehalfatsquared/cpfold/manifold"
)

var (
	sin  = math.Sin
	cos  = math.Cos
	sqrt = math.Sqrt
)

var AllSystems = []System{
	Trimer{},
	Triangle{},
	Free{N: 1, D: 2},
	Free{N: 1, D: 3},
	Free{N: 3, D: 3},
}

type System interface {
	Name() string
	Dim() int
	Adjacency() bond.Adjacency
	// Seed returns a configuration on the system's manifold.
	Seed() []float64
}

// Trimer is three particles in the plane bonded in a chain.  Its only
// internal coordinate is the bond angle, whose equilibrium marginal is
// uniform on [0, 2π/3]: the surface measure and the pseudo-determinant both
// scale as sqrt(4 - cos²θ) and cancel.
type Trimer struct{}

func (Trimer) Name() string { return "Trimer" }

func (Trimer) Dim() int { return 2 }

func (Trimer) Adjacency() bond.Adjacency {
	adj := bond.NewAdjacency(3)
	adj.Set(0, 1, true)
	adj.Set(1, 2, true)
	return adj
}

func (Trimer) Seed() []float64 { return TrimerAt(math.Pi / 2) }

// MaxAngle is the largest bond angle before the end particles overlap.
func (Trimer) MaxAngle() float64 { return 2 * math.Pi / 3 }

// TrimerAt places a trimer with bond angle theta.
func TrimerAt(theta float64) []float64 {
	return []float64{0, 0, 1, 0, 1 + cos(theta), sin(theta)}
}

// Triangle is three mutually bonded particles in the plane.  It can only
// translate and rotate.
type Triangle struct{}

func (Triangle) Name() string { return "Triangle" }

func (Triangle) Dim() int { return 2 }

func (Triangle) Adjacency() bond.Adjacency {
	adj := Trimer{}.Adjacency()
	adj.Set(0, 2, true)
	return adj
}

func (Triangle) Seed() []float64 { return []float64{0, 0, 1, 0, 0.5, sqrt(3) / 2} }

// Free is N unbonded particles in D dimensions, spaced along the first
// axis.  Only overlaps are ever rejected, so a single particle accepts every
// proposal.
type Free struct {
	N int
	D int
}

func (fn Free) Name() string { return "Free" }

func (fn Free) Dim() int { return fn.D }

func (fn Free) Adjacency() bond.Adjacency { return bond.NewAdjacency(fn.N) }

func (fn Free) Seed() []float64 {
	x := make([]float64, fn.N*fn.D)
	for i := 0; i < fn.N; i++ {
		x[i*fn.D] = 2 * float64(i)
	}
	return x
}

// TrimerCatalog holds the two planar trimer states: the open chain and the
// closed triangle it reaches by forming one bond.
func TrimerCatalog() *catalog.Catalog {
	c := catalog.New(3, 2)
	chain := catalog.State{
		Adj:     Trimer{}.Adjacency(),
		Samples: [][]float64{TrimerAt(0), TrimerAt(math.Pi / 2), TrimerAt(1)},
	}
	tri := catalog.State{
		Adj:     Triangle{}.Adjacency(),
		Samples: [][]float64{Triangle{}.Seed()},
	}
	if _, err := c.Add(chain); err != nil {
		panic(err)
	}
	if _, err := c.Add(tri); err != nil {
		panic(err)
	}
	return c
}

// Report summarizes a benchmark run.
type Report struct {
	Name  string
	Stats manifold.Stats
	// Samples holds one configuration per recorded step.
	Samples [][]float64
}

// Benchmark runs a sampler on sys for steps steps and records the
// configuration after every thin steps.  A thin of zero records nothing.
func Benchmark(sys System, cfg cpfold.Config, steps, thin int, rng cpfold.Rng) (*Report, error) {
	set, err := bond.NewSet(sys.Adjacency(), sys.Dim())
	if err != nil {
		return nil, err
	}
	cfg.Dim = sys.Dim()
	s, err := manifold.New(sys.Seed(), set, nil, rng, cfg)
	if err != nil {
		return nil, err
	}

	r := &Report{Name: sys.Name()}
	for i := 1; i <= steps; i++ {
		s.Step()
		if thin > 0 && i%thin == 0 {
			r.Samples = append(r.Samples, s.Pos())
		}
	}
	r.Stats = s.Stats()
	return r, nil
}
