package promptgen

import "math/rand"

// Rand is the randomness the engine draws from. *rand.Rand satisfies it,
// which is how tests get a seeded, repeatable source.
type Rand interface {
	// Intn returns a value in [0, n). n is always positive.
	Intn(n int) int
}

// globalRand uses the process-wide source, which is safe for concurrent use.
type globalRand struct{}

func (globalRand) Intn(n int) int { return rand.Intn(n) }

// randBetween returns a value in [lo, hi], both inclusive.
func randBetween(r Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.Intn(hi-lo+1)
}
