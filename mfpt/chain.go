package mfpt

import (
	"fmt"
	"time"

	"github.com/onehalfatsquared/cpfold"
	"github.com/onehalfatsquared/cpfold/bond"
	"github.com/onehalfatsquared/cpfold/manifold"
	"github.com/onehalfatsquared/cpfold/weight"
	"golang.org/x/time/rate"
)

// ProgressInterval throttles progress lines of long running chains.
var ProgressInterval = 10 * time.Second

// Chain is one sampler confined to a single state of a Catalog.  Moves that
// reach another state are recorded and undone, so the chain never leaves its
// state.  A Chain is not safe for concurrent use.
type Chain struct {
	cat     Catalog
	state   int
	bonds   int
	adj     bond.Adjacency
	cfg     cpfold.Config
	log     *cpfold.Logger
	sampler *manifold.Sampler
	hits    *Hits

	// unresolved counts configurations no catalog state matched; first
	// keeps the earliest of them.
	unresolved int
	first      *cpfold.UnresolvedTopologyError

	progress rate.Sometimes
}

// NewChain starts a chain in state from a configuration drawn from the
// catalog.  A stored configuration that misses the bond constraints by more
// than the Newton tolerance is refined onto the manifold first.
func NewChain(cat Catalog, state int, w weight.Weighter, rng cpfold.Rng, cfg cpfold.Config, log *cpfold.Logger) (*Chain, error) {
	if state < 0 || state >= cat.NumStates() {
		return nil, fmt.Errorf("%w: %v of %v", cpfold.ErrUnknownState, state, cat.NumStates())
	}
	if log == nil {
		log = cpfold.NoopLogger()
	}

	adj := cat.Adjacency(state)
	set, err := bond.NewSet(adj, cfg.Dim)
	if err != nil {
		return nil, fmt.Errorf("state %v: %w", state, err)
	}

	x0, err := cat.Seed(state, rng)
	if err != nil {
		return nil, fmt.Errorf("state %v: %w", state, err)
	}
	if len(x0) == set.Dof() && !set.Satisfied(x0, cfg.NewtonTol) {
		y, ok := manifold.Refine(x0, set, cfg.NewtonTol, cfg.NewtonIter)
		if !ok || !set.Satisfied(y, cfg.NewtonTol) {
			return nil, fmt.Errorf("%w: state %v seed does not refine onto its manifold", cpfold.ErrMalformedBonds, state)
		}
		x0 = y
	}

	s, err := manifold.New(x0, set, w, rng, cfg)
	if err != nil {
		return nil, fmt.Errorf("state %v: %w", state, err)
	}

	return &Chain{
		cat:      cat,
		state:    state,
		bonds:    cat.Bonds(state),
		adj:      adj,
		cfg:      cfg,
		log:      log,
		sampler:  s,
		hits:     NewHits(),
		progress: rate.Sometimes{Interval: ProgressInterval},
	}, nil
}

func (c *Chain) State() int { return c.state }

func (c *Chain) Pos() []float64 { return c.sampler.Pos() }

func (c *Chain) Hits() *Hits { return c.hits }

func (c *Chain) Stats() manifold.Stats { return c.sampler.Stats() }

// Unresolved returns how many accepted configurations matched no catalog
// state, and the first of them.
func (c *Chain) Unresolved() (int, *cpfold.UnresolvedTopologyError) {
	return c.unresolved, c.first
}

// Classify reports which state the configuration x is in.  If x has left
// the chain's state, next is the catalog state it reached.  reset is true
// when x must be discarded: its topology is unknown, or it formed more
// than MaxBondJump bonds at once.
func (c *Chain) Classify(x []float64) (next int, reset bool) {
	adj := bond.FromPositions(x, c.cfg.Dim, c.cfg.BondCutoff)
	if adj.Equal(c.adj) {
		return c.state, false
	}

	next, ok := c.cat.Match(adj)
	if !ok {
		// the cutoff can catch configurations that are not quite on the new
		// manifold; pull them onto it and look again
		if set, err := bond.NewSet(adj, c.cfg.Dim); err == nil {
			if y, conv := manifold.Refine(x, set, c.cfg.NewtonTol, c.cfg.NewtonIter); conv {
				adj = bond.FromPositions(y, c.cfg.Dim, c.cfg.BondCutoff)
				next, ok = c.cat.Match(adj)
			}
		}
	}
	if !ok {
		c.unresolved++
		if c.first == nil {
			c.first = &cpfold.UnresolvedTopologyError{
				State:     c.state,
				Bonds:     adj.NumBonds(),
				Adjacency: adj.String(),
			}
			c.log.Warn("state not found in catalog", "bonds", adj.NumBonds(), "adjacency", adj.String())
		}
		return c.state, true
	} else if next == c.state {
		return c.state, false
	}

	if jump := c.cat.Bonds(next) - c.bonds; jump < 1 || jump > c.cfg.MaxBondJump {
		c.log.Debug("discarding multi-bond transition", "next", next, "jump", jump)
		return c.state, true
	}
	return next, false
}

// Equilibrate takes n steps, undoing any accepted move that leaves the
// state or is discarded by Classify.
func (c *Chain) Equilibrate(n int) {
	prev := c.sampler.Pos()
	for i := 0; i < n; i++ {
		if c.sampler.Step() != manifold.Accepted {
			continue
		}
		x := c.sampler.Pos()
		if next, reset := c.Classify(x); reset || next != c.state {
			c.sampler.Reset(prev)
		} else {
			prev = x
		}
	}
}

// Reflect runs the reflecting estimator: a single long trajectory that is
// put back on its previous configuration every time it reaches another
// state.  Each hit after t accepted steps contributes a passage time of
// (t+1)/2 step times.  Reflect returns once it has collected samples
// passage times or taken maxSteps steps.
func (c *Chain) Reflect(samples, maxSteps int) []float64 {
	dt := StepTime(c.cfg.Sigma)
	prev := c.sampler.Pos()
	taus := make([]float64, 0, samples)

	timer := 0
	for i := 0; i < maxSteps && len(taus) < samples; i++ {
		if c.sampler.Step() != manifold.Accepted {
			continue
		}
		timer++

		x := c.sampler.Pos()
		next, reset := c.Classify(x)
		switch {
		case reset:
			timer = 0
			c.sampler.Reset(prev)
		case next != c.state:
			c.hits.Add(next, 1)
			taus = append(taus, float64(timer+1)/2*dt)
			timer = 0
			c.sampler.Reset(prev)
		default:
			prev = x
		}

		c.progress.Do(func() {
			c.log.Info("reflecting", "step", i, "hits", len(taus), "acceptance", c.sampler.Stats().Rate())
		})
	}
	return taus
}

// FirstPassage runs from the current configuration until the chain reaches
// another state, and returns the elapsed time.  ok is false if the attempt
// was discarded or maxTry steps passed without a transition.  The chain is
// left wherever the attempt stopped.
func (c *Chain) FirstPassage(maxTry int) (tau float64, next int, ok bool) {
	dt := StepTime(c.cfg.Sigma)
	for i := 0; i < maxTry; i++ {
		if c.sampler.Step() != manifold.Accepted {
			continue
		}
		tau += dt

		next, reset := c.Classify(c.sampler.Pos())
		if reset {
			return 0, c.state, false
		} else if next != c.state {
			c.hits.Add(next, 1)
			return tau, next, true
		}
	}
	return 0, c.state, false
}

// Naive runs the reset estimator: before every attempt the chain is
// equilibrated inside its state, then one first passage is timed from
// there and the chain returns to the attempt's starting point.  Attempts
// that fail are dropped, so fewer than samples times may come back.
func (c *Chain) Naive(samples, eq, maxTry int) []float64 {
	taus := make([]float64, 0, samples)
	for k := 0; k < samples; k++ {
		c.Equilibrate(eq)
		start := c.sampler.Pos()
		if tau, _, ok := c.FirstPassage(maxTry); ok {
			taus = append(taus, tau)
		}
		c.sampler.Reset(start)

		c.progress.Do(func() {
			c.log.Info("first passage attempts", "attempt", k, "hits", len(taus))
		})
	}
	return taus
}
