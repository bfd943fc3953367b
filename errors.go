package cpfold

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig = errors.New("cpfold: invalid config")
	// ErrMalformedBonds marks a bond set that cannot define a manifold: a
	// bad dimension, more constraints than coordinates, or a configuration
	// of the wrong length.
	ErrMalformedBonds = errors.New("cpfold: malformed bond set")
	// ErrUnresolvedTopology is escalated when an accepted move lands on a
	// bond topology the state catalogue does not know.  It means either the
	// catalogue is incomplete or the geometry is wrong.
	ErrUnresolvedTopology = errors.New("cpfold: unresolved topology")
	ErrNoSeed             = errors.New("cpfold: state has no sample configurations")
	ErrUnknownState       = errors.New("cpfold: unknown state")
)

// UnresolvedTopologyError records where an unknown topology showed up.
type UnresolvedTopologyError struct {
	// State is the state the chain was characterizing.
	State int
	// Bonds is the bond count of the unmatched topology.
	Bonds int
	// Adjacency is a printable form of the unmatched adjacency.
	Adjacency string
}

func (e *UnresolvedTopologyError) Error() string {
	return fmt.Sprintf("unresolved topology from state %d: %d bonds %s", e.State, e.Bonds, e.Adjacency)
}

func (e *UnresolvedTopologyError) Unwrap() error { return ErrUnresolvedTopology }
