package cpfold

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	var tests = []struct {
		dim    int
		cutoff float64
	}{
		{2, BondCutoff2D},
		{3, BondCutoff3D},
	}
	for _, test := range tests {
		cfg := Default(test.dim)
		require.NoError(t, cfg.Validate())
		if cfg.BondCutoff != test.cutoff {
			t.Errorf("dim %v cutoff: want %v, got %v", test.dim, test.cutoff, cfg.BondCutoff)
		}
		if cfg.ReversibilityTol() != cfg.NewtonTol {
			t.Errorf("dim %v: reversibility tolerance want %v, got %v", test.dim, cfg.NewtonTol, cfg.ReversibilityTol())
		}
	}
}

func TestValidate(t *testing.T) {
	var tests = []func(*Config){
		func(c *Config) { c.Dim = 4 },
		func(c *Config) { c.Sigma = 0 },
		func(c *Config) { c.Kappa = -1 },
		func(c *Config) { c.NewtonTol = 0 },
		func(c *Config) { c.NewtonIter = 0 },
		func(c *Config) { c.RevTol = -1 },
		func(c *Config) { c.BondCutoff = 0.9 },
		func(c *Config) { c.Samples = 0 },
		func(c *Config) { c.Equilibrate = -1 },
		func(c *Config) { c.MaxBondJump = 0 },
		func(c *Config) { c.Workers = 0 },
	}
	for i, mod := range tests {
		cfg := Default(2)
		mod(&cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("case %v: want ErrInvalidConfig, got %v", i, err)
		}
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte("dimension: 3\nsigma: 0.2\nreversibility_tol: 1e-5\nworkers: 4\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Dim)
	assert.Equal(t, 0.2, cfg.Sigma)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 1e-5, cfg.ReversibilityTol())
	assert.Equal(t, BondCutoff3D, cfg.BondCutoff, "defaults follow the parsed dimension")
	assert.Equal(t, DefaultNewtonIter, cfg.NewtonIter)

	cfg, err = Parse([]byte("kappa: 5\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Dim)
	assert.Equal(t, 5.0, cfg.Kappa)

	_, err = Parse([]byte("sigma: -1\n"))
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	_, err = Parse([]byte("sigma: [1\n"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("samples: 42\n"), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.Samples)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestUnresolvedTopologyError(t *testing.T) {
	err := error(&UnresolvedTopologyError{State: 2, Bonds: 5, Adjacency: "[0-1]"})
	assert.True(t, errors.Is(err, ErrUnresolvedTopology))
	assert.Contains(t, err.Error(), "state 2")
}

func TestLoggerWith(t *testing.T) {
	l := NoopLogger().WithRun("r").WithState(1).WithWorker(0)
	assert.NotNil(t, l.Logger)
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
}
