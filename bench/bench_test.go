package bench_test

import (
	"math"
	"sort"
	"testing"

	"github.com/onehalfatsquared/cpfold"
	"github.com/onehalfatsquared/cpfold/bench"
	"github.com/onehalfatsquared/cpfold/bond"
	"github.com/onehalfatsquared/cpfold/manifold"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

const seed = 7

func TestSeedsOnManifold(t *testing.T) {
	for _, sys := range bench.AllSystems {
		set, err := bond.NewSet(sys.Adjacency(), sys.Dim())
		require.NoError(t, err, sys.Name())
		x := sys.Seed()
		if !set.Satisfied(x, 1e-12) {
			t.Errorf("%v: seed violates bonds, residual %v", sys.Name(), set.Residual(x))
		}
		if !set.Steric(x) {
			t.Errorf("%v: seed has overlapping particles", sys.Name())
		}
	}
}

func TestBenchFree(t *testing.T) {
	cfg := cpfold.Default(3)
	r, err := bench.Benchmark(bench.Free{N: 1, D: 3}, cfg, 2000, 0, cpfold.NewRng(seed))
	require.NoError(t, err)
	if got := r.Stats.Rate(); got != 1 {
		t.Errorf("free particle acceptance: want 1, got %v", got)
	}
	if r.Samples != nil {
		t.Errorf("want no recorded samples, got %v", len(r.Samples))
	}
}

func TestBenchTriangle(t *testing.T) {
	cfg := cpfold.Default(2)
	sys := bench.Triangle{}
	r, err := bench.Benchmark(sys, cfg, 2000, 10, cpfold.NewRng(seed))
	require.NoError(t, err)

	set, err := bond.NewSet(sys.Adjacency(), sys.Dim())
	require.NoError(t, err)
	for i, x := range r.Samples {
		if !set.Satisfied(x, cfg.NewtonTol) {
			t.Fatalf("sample %v: rigid triangle deformed, residual %v", i, set.Residual(x))
		}
		if got, want := bond.BondAngle(x, 2), 2*math.Pi/3; math.Abs(got-want) > 1e-5 {
			t.Fatalf("sample %v: bond angle want %v, got %v", i, want, got)
		}
	}
	if r.Stats.Accepted() == 0 {
		t.Errorf("rigid body moves never accepted")
	}
}

// The bond angle of the planar trimer is uniform on [0, 2π/3] at
// equilibrium, whatever kappa is.
func TestBenchTrimerStationary(t *testing.T) {
	if testing.Short() {
		t.Skip("long sampling run")
	}

	const (
		steps  = 600000
		thin   = 50
		burnin = 2000 / thin
	)
	cfg := cpfold.Default(2)
	sys := bench.Trimer{}
	r, err := bench.Benchmark(sys, cfg, steps, thin, cpfold.NewRng(seed))
	require.NoError(t, err)
	t.Logf("acceptance %v, outcomes %v", r.Stats.Rate(), r.Stats.Counts)

	var angles []float64
	for _, x := range r.Samples[burnin:] {
		angles = append(angles, bond.BondAngle(x, 2))
	}

	mean := 0.0
	for _, a := range angles {
		mean += a
	}
	mean /= float64(len(angles))
	if want := sys.MaxAngle() / 2; math.Abs(mean-want) > 0.05 {
		t.Errorf("mean bond angle: want %v, got %v", want, mean)
	}

	ref := distuv.Uniform{Min: 0, Max: sys.MaxAngle()}
	// a sampler that drops the pseudo-determinant from the acceptance ratio
	// lands around 0.02 to 0.03
	if d := ksDistance(angles, ref.CDF); d > 0.015 {
		t.Errorf("bond angle distribution: KS distance %v from uniform", d)
	}
}

func TestBenchTrimerRejectionsKeepBonds(t *testing.T) {
	cfg := cpfold.Default(2)
	cfg.Sigma = 0.8
	sys := bench.Trimer{}
	r, err := bench.Benchmark(sys, cfg, 3000, 1, cpfold.NewRng(seed))
	require.NoError(t, err)

	set, err := bond.NewSet(sys.Adjacency(), 2)
	require.NoError(t, err)
	for i, x := range r.Samples {
		if !set.Satisfied(x, cfg.NewtonTol) || !set.Steric(x) {
			t.Fatalf("step %v: left the admissible manifold", i)
		}
	}
	if r.Stats.Counts[manifold.RejectSteric] == 0 {
		t.Errorf("wide proposals should sometimes collide the chain ends")
	}
}

func ksDistance(xs []float64, cdf func(float64) float64) float64 {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	n := float64(len(sorted))
	d := 0.0
	for i, x := range sorted {
		f := cdf(x)
		d = math.Max(d, math.Max(f-float64(i)/n, float64(i+1)/n-f))
	}
	return d
}
