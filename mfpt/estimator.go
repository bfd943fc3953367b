package mfpt

import (
	"database/sql"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/onehalfatsquared/cpfold"
	"github.com/onehalfatsquared/cpfold/manifold"
	"github.com/onehalfatsquared/cpfold/weight"
	"golang.org/x/sync/errgroup"
)

// Method selects how passage times are sampled.
type Method int

const (
	// Reflecting runs one long trajectory per worker and reflects it off
	// every transition.
	Reflecting Method = iota
	// Naive times independent first passages, equilibrating before each.
	Naive
)

func (m Method) String() string {
	switch m {
	case Reflecting:
		return "reflecting"
	case Naive:
		return "naive"
	}
	return fmt.Sprintf("method(%d)", int(m))
}

type Option func(*Estimator)

func Logger(l *cpfold.Logger) Option {
	return func(e *Estimator) {
		e.log = l
	}
}

// DB records every estimate into db.  A nil db records nothing.
func DB(db *sql.DB) Option {
	return func(e *Estimator) {
		e.Db = db
	}
}

func Use(m Method) Option {
	return func(e *Estimator) {
		e.method = m
	}
}

// Result is the outcome of estimating one state.
type Result struct {
	RunID  string
	State  int
	Method Method

	// MFPT and Sigma are the mean and standard deviation of the per worker
	// mean passage times.
	MFPT  float64
	Sigma float64
	// MinVar and MinVarSigma combine the worker means by inverse variance.
	MinVar      float64
	MinVarSigma float64

	// Means and Vars hold each worker's sample mean and variance, NaN for
	// workers that collected nothing.
	Means []float64
	Vars  []float64
	// Samples is the number of passage times over all workers.
	Samples int

	Hits  *Hits
	Stats manifold.Stats
	// Unresolved counts configurations that matched no catalog state.
	Unresolved int
	Elapsed    time.Duration
}

// Estimator estimates mean first passage times out of catalog states.
type Estimator struct {
	cat    Catalog
	w      weight.Weighter
	cfg    cpfold.Config
	log    *cpfold.Logger
	method Method
	Db     *sql.DB
}

// New builds an estimator over cat.  A nil w weighs bonds with cfg.Kappa.
func New(cat Catalog, w weight.Weighter, cfg cpfold.Config, opts ...Option) (*Estimator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if w == nil {
		w = weight.Sticky{Kappa: cfg.Kappa}
	}

	e := &Estimator{
		cat: cat,
		w:   w,
		cfg: cfg,
		log: cpfold.NoopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = cpfold.NoopLogger()
	}

	if err := e.initdb(); err != nil {
		return nil, err
	}
	return e, nil
}

// Estimate runs Workers independent chains in state, each with its own
// random stream seeded from Seed plus the worker index, and combines their
// passage times.  The result is written back to the catalog and recorded.
//
// If any chain reached a configuration the catalog does not know, Estimate
// returns the result together with an error wrapping
// cpfold.ErrUnresolvedTopology.
func (e *Estimator) Estimate(state int) (*Result, error) {
	start := time.Now()
	res := &Result{
		RunID:  uuid.NewString(),
		State:  state,
		Method: e.method,
		Means:  make([]float64, e.cfg.Workers),
		Vars:   make([]float64, e.cfg.Workers),
		Hits:   NewHits(),
	}
	log := e.log.WithRun(res.RunID).WithState(state)
	log.Info("beginning mfpt estimate", "states", e.cat.NumStates(), "method", e.method, "workers", e.cfg.Workers)

	var (
		mu    sync.Mutex
		first *cpfold.UnresolvedTopologyError
		g     errgroup.Group
	)
	for wk := 0; wk < e.cfg.Workers; wk++ {
		wk := wk
		g.Go(func() error {
			rng := cpfold.NewRng(e.cfg.Seed + int64(wk))
			c, err := NewChain(e.cat, state, e.w, rng, e.cfg, log.WithWorker(wk))
			if err != nil {
				return err
			}

			// Naive equilibrates before each of its attempts
			var taus []float64
			if e.method == Naive {
				taus = c.Naive(e.cfg.Samples, e.cfg.Equilibrate, e.cfg.MaxTry)
			} else {
				c.Equilibrate(e.cfg.Equilibrate)
				taus = c.Reflect(e.cfg.Samples, e.cfg.MaxSteps)
			}
			m, v := SampleStats(taus)
			n, unres := c.Unresolved()

			mu.Lock()
			defer mu.Unlock()
			res.Means[wk], res.Vars[wk] = m, v
			res.Samples += len(taus)
			res.Hits.Merge(c.Hits())
			res.Stats = res.Stats.Merge(c.Stats())
			res.Unresolved += n
			if first == nil {
				first = unres
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res.MFPT, res.Sigma = SampleStats(finite(res.Means))
	res.Sigma = math.Sqrt(res.Sigma)
	res.MinVar, res.MinVarSigma = MinVarEstimate(res.Means, res.Vars)
	res.MinVarSigma = math.Sqrt(res.MinVarSigma)
	res.Elapsed = time.Since(start)

	log.Info("finished mfpt estimate",
		"mfpt", res.MFPT,
		"sigma", res.Sigma,
		"samples", res.Samples,
		"neighbors", res.Hits.Len(),
		"acceptance", res.Stats.Rate(),
		"elapsed", res.Elapsed,
	)

	if err := e.cat.Update(state, res); err != nil {
		return res, fmt.Errorf("failed to update state %v: %w", state, err)
	}
	if err := e.updateDb(res); err != nil {
		return res, fmt.Errorf("failed to record state %v: %w", state, err)
	}

	if first != nil {
		log.Warn("unresolved topologies", "count", res.Unresolved)
		return res, fmt.Errorf("%v configurations discarded: %w", res.Unresolved, first)
	}
	return res, nil
}
