package testutil

import (
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), //nolint:gosec // deterministic test data
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = rand.New(rand.NewSource(r.seed)) //nolint:gosec // deterministic test data
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Bool returns a pseudo-random boolean.
func (r *RNG) Bool() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(2) == 1
}

// Perm returns a pseudo-random permutation of [0,n).
func (r *RNG) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Perm(n)
}

// Sizes returns n request sizes in [1, maxSize].
// Locks only once per call.
func (r *RNG) Sizes(n, maxSize int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, n)
	for i := range out {
		out[i] = 1 + r.rand.Intn(maxSize)
	}
	return out
}

// Brackets returns a sequence of n bracket characters.
// A balanced sequence is a correct bracket sequence (n must be even);
// otherwise every character is drawn independently.
func (r *RNG) Brackets(n int, balanced bool) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	buf := make([]byte, 0, n)
	if !balanced {
		for range n {
			buf = append(buf, "()"[r.rand.Intn(2)])
		}
		return string(buf)
	}

	open := 0
	for i := range n {
		remaining := n - i
		switch {
		case open == remaining:
			buf = append(buf, ')')
			open--
		case open == 0 || r.rand.Intn(2) == 0:
			buf = append(buf, '(')
			open++
		default:
			buf = append(buf, ')')
			open--
		}
	}
	return string(buf)
}
