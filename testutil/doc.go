// Package testutil provides testing utilities for arenakit.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, goroutine-safe RNG plus generators for allocation
// workloads.
//
//	rng := testutil.NewRNG(seed)
//	sizes := rng.Sizes(1000, 64)   // request sizes in [1, 64]
//	order := rng.Perm(len(sizes))  // a random free order
package testutil
