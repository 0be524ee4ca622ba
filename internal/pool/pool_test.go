package pool

import (
	"sync"
	"testing"

	"github.com/bits-and-blooms/bitset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/arenakit/internal/arena"
)

type engine interface {
	Allocate(size int) (uintptr, error)
	Deallocate(off uintptr, size int) error
	Reset()
	Usage() int
	MaxUsage() int
	Slots() int
	Stride() int
}

func newArena(t *testing.T, size int) *arena.Arena {
	t.Helper()
	a, err := arena.New(size, 8)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Release() })
	return a
}

func engines(t *testing.T, size, unit, align int) map[string]engine {
	t.Helper()
	st, err := New(newArena(t, size), unit, align)
	require.NoError(t, err)
	mt, err := NewConcurrent(newArena(t, size), unit, align)
	require.NoError(t, err)
	return map[string]engine{"single": st, "concurrent": mt}
}

func TestNew_InvalidUnit(t *testing.T) {
	a := newArena(t, 64)

	_, err := New(a, 0, 8)
	assert.ErrorIs(t, err, arena.ErrInvalidSize)

	_, err = NewConcurrent(a, 128, 8)
	assert.ErrorIs(t, err, arena.ErrInvalidSize, "no slot fits")
}

func TestPool_Stride(t *testing.T) {
	st, err := New(newArena(t, 64), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, st.Stride(), "slot must hold the free-list link")
	assert.Equal(t, 16, st.Slots())

	mt, err := NewConcurrent(newArena(t, 64), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, mt.Stride(), "links live in a side table")
	assert.Equal(t, 64, mt.Slots())
}

func TestPool_FillAndExhaust(t *testing.T) {
	for name, p := range engines(t, 128, 8, 8) {
		t.Run(name, func(t *testing.T) {
			seen := bitset.New(uint(p.Slots()))
			for i := 0; i < p.Slots(); i++ {
				off, err := p.Allocate(8)
				require.NoError(t, err)
				idx := uint(off) / uint(p.Stride())
				require.False(t, seen.Test(idx), "slot %d handed out twice", idx)
				seen.Set(idx)
			}
			assert.Equal(t, uint(16), seen.Count())

			_, err := p.Allocate(8)
			assert.ErrorIs(t, err, arena.ErrExhausted)
			assert.Equal(t, 128, p.Usage())
			assert.Equal(t, 128, p.MaxUsage())
		})
	}
}

func TestPool_LIFOReuse(t *testing.T) {
	for name, p := range engines(t, 256, 8, 8) {
		t.Run(name, func(t *testing.T) {
			a, err := p.Allocate(8)
			require.NoError(t, err)
			b, err := p.Allocate(8)
			require.NoError(t, err)
			c, err := p.Allocate(8)
			require.NoError(t, err)

			require.NoError(t, p.Deallocate(a, 8))
			require.NoError(t, p.Deallocate(c, 8))
			assert.Equal(t, 8, p.Usage())

			got, err := p.Allocate(8)
			require.NoError(t, err)
			assert.Equal(t, c, got, "most recently freed slot comes back first")

			got, err = p.Allocate(8)
			require.NoError(t, err)
			assert.Equal(t, a, got)

			got, err = p.Allocate(8)
			require.NoError(t, err)
			assert.NotContains(t, []uintptr{a, b, c}, got)
			assert.Equal(t, 32, p.Usage())
		})
	}
}

func TestPool_InvalidFree(t *testing.T) {
	for name, p := range engines(t, 256, 8, 8) {
		t.Run(name, func(t *testing.T) {
			_, err := p.Allocate(8)
			require.NoError(t, err)

			assert.ErrorIs(t, p.Deallocate(3, 8), arena.ErrInvalidFree, "misaligned")
			assert.ErrorIs(t, p.Deallocate(64, 8), arena.ErrInvalidFree, "never handed out")
			assert.ErrorIs(t, p.Deallocate(1024, 8), arena.ErrInvalidFree, "outside the arena")
		})
	}
}

func TestPool_TooLarge(t *testing.T) {
	for name, p := range engines(t, 256, 8, 8) {
		t.Run(name, func(t *testing.T) {
			_, err := p.Allocate(9)
			assert.ErrorIs(t, err, arena.ErrInvalidSize)
		})
	}
}

func TestPool_Reset(t *testing.T) {
	for name, p := range engines(t, 64, 16, 8) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < p.Slots(); i++ {
				_, err := p.Allocate(16)
				require.NoError(t, err)
			}
			p.Reset()
			assert.Equal(t, 0, p.Usage())
			assert.Equal(t, 0, p.MaxUsage())

			off, err := p.Allocate(16)
			require.NoError(t, err)
			assert.Equal(t, uintptr(0), off)
		})
	}
}

func TestConcurrent_Disjoint(t *testing.T) {
	const slots = 4096
	p, err := NewConcurrent(newArena(t, slots*8), 8, 8)
	require.NoError(t, err)

	var (
		mu   sync.Mutex
		seen = bitset.New(slots)
	)
	var g errgroup.Group
	for w := 0; w < 8; w++ {
		g.Go(func() error {
			for {
				off, err := p.Allocate(8)
				if err != nil {
					return nil
				}
				mu.Lock()
				idx := uint(off / 8)
				if seen.Test(idx) {
					mu.Unlock()
					return assert.AnError
				}
				seen.Set(idx)
				mu.Unlock()
			}
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, uint(slots), seen.Count())
}

func TestConcurrent_Churn(t *testing.T) {
	p, err := NewConcurrent(newArena(t, 64*8), 8, 8)
	require.NoError(t, err)

	var g errgroup.Group
	for w := 0; w < 8; w++ {
		g.Go(func() error {
			held := make([]uintptr, 0, 8)
			for i := 0; i < 2000; i++ {
				off, err := p.Allocate(8)
				if err != nil {
					return err
				}
				// Stamp the slot and verify no other goroutine owns it.
				word := p.arena.Uint64(off)
				*word = uint64(w)<<32 | uint64(i)
				held = append(held, off)
				if len(held) == cap(held) {
					for _, h := range held {
						if got := *p.arena.Uint64(h); got>>32 != uint64(w) {
							return assert.AnError
						}
						if err := p.Deallocate(h, 8); err != nil {
							return err
						}
					}
					held = held[:0]
				}
			}
			for _, h := range held {
				if err := p.Deallocate(h, 8); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, 0, p.Usage())
	assert.LessOrEqual(t, p.MaxUsage(), 64*8)
}
