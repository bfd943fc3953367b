// Package mfpt drives manifold samplers inside a single bond topology and
// estimates how long a cluster takes to form its next bond.  Chains detect
// topology changes against a Catalog of known states, record which states
// they hit and turn accepted step counts into passage times.
package mfpt

import (
	"github.com/onehalfatsquared/cpfold"
	"github.com/onehalfatsquared/cpfold/bond"
)

// Catalog is the collection of known cluster states.  Chains running in
// parallel read from it concurrently, so NumStates, Adjacency, Bonds, Seed
// and Match must be safe for concurrent use.  Update is only called after
// every chain of an estimate has finished.
type Catalog interface {
	NumStates() int
	Adjacency(state int) bond.Adjacency
	// Bonds is the bond count of state.
	Bonds(state int) int
	// Seed returns a copy of a stored configuration of state chosen with rng.
	Seed(state int, rng cpfold.Rng) ([]float64, error)
	// Match finds the state whose adjacency equals adj exactly.
	Match(adj bond.Adjacency) (state int, ok bool)
	// Update stores the outcome of an estimate for state.
	Update(state int, res *Result) error
}
