package manifold

import "errors"

// Rejection causes.  None of them stop a chain.
var (
	ErrNoConvergence = errors.New("manifold: projection did not converge")
	ErrSteric        = errors.New("manifold: steric violation")
	ErrRejected      = errors.New("manifold: metropolis-hastings rejection")
	ErrReversibility = errors.New("manifold: reverse move does not reconstruct origin")
)

// Outcome names the state in which a Markov step ended.
type Outcome int

const (
	Accepted Outcome = iota
	// RejectProjection: the forward Newton projection failed.
	RejectProjection
	// RejectSteric: a non-bonded pair came closer than unit distance.
	RejectSteric
	// RejectMH: the Metropolis-Hastings test failed.
	RejectMH
	// RejectReverseProjection: the reverse Newton projection failed.
	RejectReverseProjection
	// RejectReversibility: the reverse move landed away from the origin.
	RejectReversibility
	numOutcomes
)

var outcomeNames = [numOutcomes]string{
	"accepted",
	"reject-projection",
	"reject-steric",
	"reject-mh",
	"reject-reverse-projection",
	"reject-reversibility",
}

func (o Outcome) String() string {
	if o < 0 || o >= numOutcomes {
		return "unknown"
	}
	return outcomeNames[o]
}

// Err maps a rejection to its cause.  Accepted maps to nil.
func (o Outcome) Err() error {
	switch o {
	case RejectProjection, RejectReverseProjection:
		return ErrNoConvergence
	case RejectSteric:
		return ErrSteric
	case RejectMH:
		return ErrRejected
	case RejectReversibility:
		return ErrReversibility
	}
	return nil
}

// Stats counts step outcomes.
type Stats struct {
	Counts [numOutcomes]int
}

func (st Stats) Steps() int {
	tot := 0
	for _, n := range st.Counts {
		tot += n
	}
	return tot
}

func (st Stats) Accepted() int { return st.Counts[Accepted] }

// Rate is the fraction of steps accepted, or 0 before any step.
func (st Stats) Rate() float64 {
	if n := st.Steps(); n > 0 {
		return float64(st.Accepted()) / float64(n)
	}
	return 0
}

func (st Stats) Merge(other Stats) Stats {
	for i, n := range other.Counts {
		st.Counts[i] += n
	}
	return st
}
