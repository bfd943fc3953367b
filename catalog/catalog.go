// Package catalog is an in-memory collection of cluster states: their bond
// topologies, sample configurations and the transition statistics estimated
// for them.
package catalog

import (
	"fmt"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/onehalfatsquared/cpfold"
	"github.com/onehalfatsquared/cpfold/bond"
	"github.com/onehalfatsquared/cpfold/mfpt"
)

// State is one entry of the catalog.
type State struct {
	Adj bond.Adjacency
	// Samples are configurations of the state used to seed chains.
	Samples [][]float64

	// Filled in by Update.
	Estimated bool
	MFPT      float64
	Sigma     float64
	Hits      map[int]int
}

// Catalog holds states of n particles in dim dimensions.  It is safe for
// concurrent use.
type Catalog struct {
	n, dim int

	mu     sync.RWMutex
	states []State
	keys   []*roaring.Bitmap
	// byBonds indexes states by bond count.
	byBonds map[int][]int
}

var _ mfpt.Catalog = (*Catalog)(nil)

func New(n, dim int) *Catalog {
	return &Catalog{n: n, dim: dim, byBonds: map[int][]int{}}
}

// Add appends a state and returns its index.  Every sample must hold the
// coordinates of all particles.  Adding a topology twice is an error.
func (c *Catalog) Add(st State) (int, error) {
	if st.Adj.N() != c.n {
		return 0, fmt.Errorf("%w: adjacency of %v particles in catalog of %v", cpfold.ErrMalformedBonds, st.Adj.N(), c.n)
	}
	for i, x := range st.Samples {
		if len(x) != c.n*c.dim {
			return 0, fmt.Errorf("%w: sample %v has %v coordinates, want %v", cpfold.ErrMalformedBonds, i, len(x), c.n*c.dim)
		}
	}

	st.Adj = st.Adj.Clone()
	key := st.Adj.Bitmap()

	c.mu.Lock()
	defer c.mu.Unlock()
	if i, ok := c.match(key); ok {
		return 0, fmt.Errorf("topology %v already stored as state %v", st.Adj, i)
	}
	id := len(c.states)
	c.states = append(c.states, st)
	c.keys = append(c.keys, key)
	b := int(key.GetCardinality())
	c.byBonds[b] = append(c.byBonds[b], id)
	return id, nil
}

func (c *Catalog) N() int { return c.n }

func (c *Catalog) Dim() int { return c.dim }

func (c *Catalog) NumStates() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.states)
}

// State returns a copy of state i.
func (c *Catalog) State(i int) (State, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i < 0 || i >= len(c.states) {
		return State{}, fmt.Errorf("%w: %v", cpfold.ErrUnknownState, i)
	}
	st := c.states[i]
	if st.Hits != nil {
		hits := make(map[int]int, len(st.Hits))
		for k, v := range st.Hits {
			hits[k] = v
		}
		st.Hits = hits
	}
	return st, nil
}

func (c *Catalog) Adjacency(i int) bond.Adjacency {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.states[i].Adj
}

func (c *Catalog) Bonds(i int) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int(c.keys[i].GetCardinality())
}

// Seed returns a copy of a randomly chosen sample of state i.
func (c *Catalog) Seed(i int, rng cpfold.Rng) ([]float64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i < 0 || i >= len(c.states) {
		return nil, fmt.Errorf("%w: %v", cpfold.ErrUnknownState, i)
	}
	samples := c.states[i].Samples
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: state %v", cpfold.ErrNoSeed, i)
	}
	return append([]float64(nil), samples[rng.Intn(len(samples))]...), nil
}

// Match finds the state with exactly the bonds of adj.
func (c *Catalog) Match(adj bond.Adjacency) (int, bool) {
	if adj.N() != c.n {
		return 0, false
	}
	key := adj.Bitmap()

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.match(key)
}

// match must be called with c.mu held.
func (c *Catalog) match(key *roaring.Bitmap) (int, bool) {
	for _, i := range c.byBonds[int(key.GetCardinality())] {
		if c.keys[i].Equals(key) {
			return i, true
		}
	}
	return 0, false
}

// Update stores the estimate in res for state i.
func (c *Catalog) Update(i int, res *mfpt.Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.states) {
		return fmt.Errorf("%w: %v", cpfold.ErrUnknownState, i)
	}
	st := &c.states[i]
	st.Estimated = true
	st.MFPT = res.MFPT
	st.Sigma = res.Sigma
	st.Hits = res.Hits.Map()
	return nil
}
