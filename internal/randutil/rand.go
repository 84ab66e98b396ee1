// Package randutil centralises how the game seeds its random sources.
package randutil

import (
	rand "math/rand/v2"
	"time"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded deterministically from seed.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Resolve turns the CLI convention "0 means random" into a concrete seed so
// it can be logged and replayed.
func Resolve(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return time.Now().UnixNano()
}

// Derive returns the i-th child seed of seed. Children are independent of
// each other and of the order they are requested in.
func Derive(seed int64, i int) int64 {
	return int64(mix(uint64(seed) + uint64(i+1)*goldenRatio64))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
