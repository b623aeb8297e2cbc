package track

import (
	"math/rand/v2"
	"time"
)

// Source picks template indices; IntN returns a value in [0, n)
// *rand.Rand from math/rand/v2 satisfies it
type Source interface {
	IntN(n int) int
}

// NewSource returns a PCG-backed Source, seed 0 seeds from the wall clock
func NewSource(seed uint64) Source {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
