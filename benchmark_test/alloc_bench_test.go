package benchmark_test

import (
	"testing"

	"github.com/hupe1980/arenakit"
	"github.com/hupe1980/arenakit/testutil"
)

// ============================================================================
// ALLOCATION THROUGHPUT
// ============================================================================
//
// Each policy serves the same request stream as the Go heap baseline. The
// arena is reset whenever a run would exhaust it, so the numbers measure the
// steady-state fast path.

type payload struct {
	A, B, C, D int64
}

var sink []payload

func BenchmarkHeap(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		sink = make([]payload, 4)
	}
}

func BenchmarkAllocateFree(b *testing.B) {
	for _, policy := range arenakit.Policies() {
		b.Run(policy.String(), func(b *testing.B) {
			a, err := arenakit.New[payload](policy, arenakit.WithCapacity(1<<16))
			if err != nil {
				b.Fatal(err)
			}
			defer a.Close()

			n := 4
			if policy == arenakit.PolicyPool || policy == arenakit.PolicyPoolConcurrent {
				n = 1
			}

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				s, err := a.Allocate(n)
				if err != nil {
					b.Fatal(err)
				}
				sink = s
				if err := a.Deallocate(s); err != nil {
					b.Fatal(err)
				}
				if i&0xfff == 0xfff {
					a.Reset()
				}
			}
		})
	}
}

func BenchmarkFreeListRandom(b *testing.B) {
	a, err := arenakit.NewFreeList[payload](arenakit.WithCapacity(1 << 16))
	if err != nil {
		b.Fatal(err)
	}
	defer a.Close()

	rng := testutil.NewRNG(4711)
	sizes := rng.Sizes(1024, 32)
	held := make([][]payload, 0, 64)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if len(held) == cap(held) {
			for _, s := range held {
				_ = a.Deallocate(s)
			}
			held = held[:0]
		}
		s, err := a.Allocate(sizes[i%len(sizes)])
		if err != nil {
			b.Fatal(err)
		}
		held = append(held, s)
	}
}

func BenchmarkConcurrent(b *testing.B) {
	for _, policy := range []arenakit.Policy{
		arenakit.PolicyLinearConcurrent,
		arenakit.PolicyPoolConcurrent,
	} {
		b.Run(policy.String(), func(b *testing.B) {
			a, err := arenakit.New[payload](policy, arenakit.WithCapacity(1<<20))
			if err != nil {
				b.Fatal(err)
			}
			defer a.Close()

			b.ReportAllocs()
			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					p, err := arenakit.AllocateOne(a)
					if err != nil {
						b.Error(err)
						return
					}
					p.A++
					_ = arenakit.DeallocateOne(a, p)
				}
			})
		})
	}
}

func BenchmarkHeapConcurrent(b *testing.B) {
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			p := new(payload)
			p.A++
		}
	})
}
