package engine

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// SeedFor derives the deterministic resolution seed for an action from its
// id. Replaying a persisted action id reproduces the same seed and therefore
// the same resolution.
func SeedFor(actionID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(actionID))
	return int64(h.Sum64())
}

// RNG wraps math/rand with the turn seed. Resolvers draw from it instead of
// any global or time-based source, keeping resolution replayable.
type RNG struct {
	seed int64
	src  *rand.Rand
	pos  int64
}

// NewRNG creates a deterministic RNG from a seed.
func NewRNG(seed int64) *RNG {
	return &RNG{seed: seed, src: rand.New(rand.NewSource(seed))}
}

// Seed returns the seed this RNG was created from.
func (r *RNG) Seed() int64 { return r.seed }

// Roll returns a random integer in [1, sides].
func (r *RNG) Roll(sides int) int {
	r.pos++
	return r.src.Intn(sides) + 1
}

// Chance returns true with probability p in [0, 1].
func (r *RNG) Chance(p float64) bool {
	r.pos++
	return r.src.Float64() < p
}

// Position returns the number of draws made, for replay bookkeeping.
func (r *RNG) Position() int64 { return r.pos }

// eventIDSequence returns an allocator of event ids unique within one
// commit: a short prefix of the action id plus a counter. Deterministic, so
// replayed commits produce byte-identical audit logs.
func eventIDSequence(actionID string) func() string {
	prefix := actionID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("ev-%s-%03d", prefix, n)
	}
}
