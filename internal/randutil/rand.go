package randutil

import (
	rand "math/rand/v2"
	"time"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded deterministically from seed. A zero seed
// draws one from the wall clock so unseeded games still differ run to run.
func New(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Derive returns a child generator for stream n of parent. Bots use it so that
// every seat gets an independent but reproducible sequence.
func Derive(parent *rand.Rand, n int) *rand.Rand {
	base := parent.Uint64()
	return rand.New(rand.NewPCG(mix(base+uint64(n)), mix(base^goldenRatio64)))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
