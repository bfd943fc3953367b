package cpfold

import "math/rand"

// Rng is the random source a chain draws from.  *rand.Rand satisfies it.
// Every chain owns its own Rng; implementations need not be safe for
// concurrent use.
type Rng interface {
	Float64() float64
	NormFloat64() float64
	Intn(n int) int
}

// NewRng returns a private random stream seeded with seed.
func NewRng(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
