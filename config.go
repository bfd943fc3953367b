// Package cpfold samples rigid sticky-sphere clusters on their bond
// constraint manifolds and estimates transition statistics between bond
// topologies.  Subpackages hold the pieces: bond (topology and constraint
// functions), manifold (the Monte Carlo on a manifold sampler), weight
// (statistical weights per bond), mfpt (first passage estimators), catalog
// (an in-memory state collaborator) and bench (reference systems).
package cpfold

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Defaults for sampler and estimator runs.
const (
	DefaultSigma       = 0.15
	DefaultKappa       = 2
	DefaultNewtonTol   = 1e-6
	DefaultNewtonIter  = 20
	DefaultSamples     = 1000
	DefaultEquilibrate = 500
	DefaultMaxTry      = 1000
	DefaultMaxSteps    = DefaultSamples * 300
)

// Bond cutoffs: two particles closer than this are considered bonded.
const (
	BondCutoff2D = 1.04
	BondCutoff3D = 1.05
)

// Config holds every tunable of a sampler run.  It is passed explicitly to
// constructors; nothing reads global state.
type Config struct {
	// Dim is the spatial dimension, 2 or 3.
	Dim int `yaml:"dimension"`
	// Sigma is the standard deviation of the tangent space proposal.
	Sigma float64 `yaml:"sigma"`
	// Kappa is the sticky parameter; each bond multiplies the weight by it.
	Kappa float64 `yaml:"kappa"`
	// NewtonTol is the residual norm under which a projection has converged.
	// It is also the pseudo-determinant singular value cutoff.
	NewtonTol float64 `yaml:"newton_tol"`
	// NewtonIter caps the Newton updates of a single projection.
	NewtonIter int `yaml:"newton_iter"`
	// RevTol bounds the distance between a configuration and its
	// reconstruction from the reverse move.  Zero means NewtonTol.
	RevTol     float64 `yaml:"reversibility_tol"`
	BondCutoff float64 `yaml:"bond_cutoff"`

	// Samples is the number of transitions each worker collects.
	Samples int `yaml:"samples"`
	// Equilibrate is the number of steps run before collecting.
	Equilibrate int `yaml:"equilibrate"`
	// MaxTry bounds a single first passage attempt.
	MaxTry int `yaml:"max_try"`
	// MaxSteps bounds a whole reflecting chain.
	MaxSteps int `yaml:"max_steps"`
	// MaxBondJump is the largest bond count increase treated as a single
	// hop.  Larger jumps are discarded.
	MaxBondJump int `yaml:"max_bond_jump"`

	Workers int   `yaml:"workers"`
	Seed    int64 `yaml:"seed"`
}

// Default returns the default configuration for dimension dim.
func Default(dim int) Config {
	cutoff := BondCutoff2D
	if dim == 3 {
		cutoff = BondCutoff3D
	}
	return Config{
		Dim:         dim,
		Sigma:       DefaultSigma,
		Kappa:       DefaultKappa,
		NewtonTol:   DefaultNewtonTol,
		NewtonIter:  DefaultNewtonIter,
		BondCutoff:  cutoff,
		Samples:     DefaultSamples,
		Equilibrate: DefaultEquilibrate,
		MaxTry:      DefaultMaxTry,
		MaxSteps:    DefaultMaxSteps,
		MaxBondJump: 1,
		Workers:     runtime.NumCPU(),
		Seed:        1,
	}
}

// ReversibilityTol returns the tolerance used by the reversibility check.
func (c Config) ReversibilityTol() float64 {
	if c.RevTol == 0 {
		return c.NewtonTol
	}
	return c.RevTol
}

// Validate reports the first impossible setting in c.
func (c Config) Validate() error {
	switch {
	case c.Dim != 2 && c.Dim != 3:
		return fmt.Errorf("%w: dimension %v not 2 or 3", ErrInvalidConfig, c.Dim)
	case c.Sigma <= 0:
		return fmt.Errorf("%w: sigma %v must be positive", ErrInvalidConfig, c.Sigma)
	case c.Kappa <= 0:
		return fmt.Errorf("%w: kappa %v must be positive", ErrInvalidConfig, c.Kappa)
	case c.NewtonTol <= 0:
		return fmt.Errorf("%w: newton tolerance %v must be positive", ErrInvalidConfig, c.NewtonTol)
	case c.NewtonIter < 1:
		return fmt.Errorf("%w: newton iterations %v must be at least 1", ErrInvalidConfig, c.NewtonIter)
	case c.RevTol < 0:
		return fmt.Errorf("%w: reversibility tolerance %v is negative", ErrInvalidConfig, c.RevTol)
	case c.BondCutoff < 1:
		return fmt.Errorf("%w: bond cutoff %v below unit distance", ErrInvalidConfig, c.BondCutoff)
	case c.Samples < 1 || c.MaxTry < 1 || c.MaxSteps < 1:
		return fmt.Errorf("%w: sample budgets must be positive", ErrInvalidConfig)
	case c.Equilibrate < 0:
		return fmt.Errorf("%w: equilibration steps %v is negative", ErrInvalidConfig, c.Equilibrate)
	case c.MaxBondJump < 1:
		return fmt.Errorf("%w: max bond jump %v must be at least 1", ErrInvalidConfig, c.MaxBondJump)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers %v must be at least 1", ErrInvalidConfig, c.Workers)
	}
	return nil
}

// Parse reads YAML data over the defaults for the dimension named in data
// (2 if absent) and validates the result.
func Parse(data []byte) (Config, error) {
	var head struct {
		Dim int `yaml:"dimension"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if head.Dim == 0 {
		head.Dim = 2
	}

	cfg := Default(head.Dim)
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads a YAML configuration file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}
