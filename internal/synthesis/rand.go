package synthesis

import (
	"math/rand/v2"
	"sync"
)

// Rand picks phrase variants. IntN returns a value in [0, n).
type Rand interface {
	IntN(n int) int
}

// NewRand returns an unshared generator, seeded from the runtime when seed is 0.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// LockedRand serializes access to a generator shared across goroutines.
type LockedRand struct {
	mu  sync.Mutex
	src Rand
}

func NewLockedRand(src Rand) *LockedRand { return &LockedRand{src: src} }

func (l *LockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.IntN(n)
}
