package freelist

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/arenakit/internal/arena"
	"github.com/hupe1980/arenakit/testutil"
)

// payload sizes occupying exactly 1, 2, 3, 4 and 7 blocks
const (
	oneBlock   = 8
	twoBlocks  = 24
	threeBlock = 40
	fourBlocks = 56
	sevenBlock = 104
)

func newFreeList(t *testing.T, blocks int) *Allocator {
	t.Helper()
	a, err := arena.New(blocks*BlockSize, 8)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Release() })
	f, err := New(a)
	require.NoError(t, err)
	return f
}

func TestBlocksFor(t *testing.T) {
	tests := []struct {
		size, blocks int
	}{
		{1, 1},
		{oneBlock, 1},
		{oneBlock + 1, 2},
		{threeBlock, 3},
		{sevenBlock, 7},
	}
	for _, tt := range tests {
		got, err := BlocksFor(tt.size)
		require.NoError(t, err)
		assert.Equal(t, tt.blocks, got, "size %d", tt.size)
	}

	_, err := BlocksFor(math.MaxInt - 5)
	assert.Error(t, err)
}

func TestAllocate_Oversized(t *testing.T) {
	f := newFreeList(t, 4)

	for _, size := range []int{math.MaxInt - 5, math.MaxInt / 8, 4 * BlockSize} {
		_, err := f.Allocate(size)
		assert.ErrorIs(t, err, arena.ErrExhausted, "size %d", size)
	}
	assert.Equal(t, 0, f.Usage())
	assert.Equal(t, []int{4}, f.FreeRegions())
}

func TestNew_TooSmall(t *testing.T) {
	a, err := arena.New(8, 8)
	require.NoError(t, err)
	defer func() { _ = a.Release() }()

	_, err = New(a)
	assert.ErrorIs(t, err, arena.ErrInvalidSize)
}

func TestAllocate_FirstFitSplit(t *testing.T) {
	f := newFreeList(t, 10)

	x, err := f.Allocate(threeBlock)
	require.NoError(t, err)
	assert.Equal(t, uintptr(HeaderSize), x)
	assert.Equal(t, []int{7}, f.FreeRegions(), "remainder stays on the list")

	y, err := f.Allocate(sevenBlock)
	require.NoError(t, err)
	assert.Equal(t, uintptr(3*BlockSize+HeaderSize), y)
	assert.Empty(t, f.FreeRegions(), "exact fit consumes the node")
	assert.Equal(t, 10*BlockSize, f.Usage())

	_, err = f.Allocate(1)
	assert.ErrorIs(t, err, arena.ErrExhausted)
}

func TestDeallocate_CoalesceAboveHead(t *testing.T) {
	f := newFreeList(t, 10)

	a, err := f.Allocate(threeBlock)
	require.NoError(t, err)
	b, err := f.Allocate(sevenBlock)
	require.NoError(t, err)

	require.NoError(t, f.Deallocate(a, threeBlock))
	assert.Equal(t, []int{3}, f.FreeRegions())

	_, err = f.Allocate(sevenBlock + BlockSize)
	require.ErrorIs(t, err, arena.ErrExhausted)

	require.NoError(t, f.Deallocate(b, sevenBlock))
	assert.Equal(t, []int{10}, f.FreeRegions(), "B merges into the head A below it")

	c, err := f.Allocate(10*BlockSize - HeaderSize)
	require.NoError(t, err, "the combined region satisfies a request neither part could")
	assert.Equal(t, a, c)
}

func TestDeallocate_CoalesceBelowHead(t *testing.T) {
	f := newFreeList(t, 10)

	a, _ := f.Allocate(threeBlock)
	b, _ := f.Allocate(sevenBlock)

	require.NoError(t, f.Deallocate(b, sevenBlock))
	require.NoError(t, f.Deallocate(a, threeBlock))
	assert.Equal(t, []int{10}, f.FreeRegions(), "head B directly above A is absorbed")
	assert.Equal(t, 0, f.Usage())
}

func TestDeallocate_Cascade(t *testing.T) {
	f := newFreeList(t, 10)

	a, _ := f.Allocate(threeBlock)
	b, _ := f.Allocate(fourBlocks)
	assert.Equal(t, []int{3}, f.FreeRegions())

	require.NoError(t, f.Deallocate(a, threeBlock))
	assert.Equal(t, []int{3, 3}, f.FreeRegions())

	// B joins A below it and then the tail region above it.
	require.NoError(t, f.Deallocate(b, fourBlocks))
	assert.Equal(t, []int{10}, f.FreeRegions())
}

func TestDeallocate_NoCoalesceAcrossList(t *testing.T) {
	f := newFreeList(t, 20)

	a, _ := f.Allocate(threeBlock)
	_, _ = f.Allocate(threeBlock)
	c, _ := f.Allocate(threeBlock)

	require.NoError(t, f.Deallocate(a, threeBlock))
	require.NoError(t, f.Deallocate(c, threeBlock))
	assert.Equal(t, []int{3, 3, 11}, f.FreeRegions(), "C is not merged with the tail behind the head")

	// First fit takes the head and splits it.
	d, err := f.Allocate(twoBlocks)
	require.NoError(t, err)
	assert.Equal(t, c, d)
	assert.Equal(t, []int{1, 3, 11}, f.FreeRegions())
}

func TestDeallocate_Invalid(t *testing.T) {
	f := newFreeList(t, 10)

	a, err := f.Allocate(threeBlock)
	require.NoError(t, err)
	_, err = f.Allocate(oneBlock)
	require.NoError(t, err)

	assert.ErrorIs(t, f.Deallocate(0, threeBlock), arena.ErrInvalidFree)
	assert.ErrorIs(t, f.Deallocate(a+1, threeBlock), arena.ErrInvalidFree)
	assert.ErrorIs(t, f.Deallocate(a, oneBlock), arena.ErrInvalidFree, "size mismatch")
	assert.ErrorIs(t, f.Deallocate(uintptr(9*BlockSize+HeaderSize), twoBlocks), arena.ErrInvalidFree, "past the end")

	require.NoError(t, f.Deallocate(a, threeBlock))
	assert.ErrorIs(t, f.Deallocate(a, threeBlock), arena.ErrInvalidFree, "double free of the head")
}

func TestReset(t *testing.T) {
	f := newFreeList(t, 10)

	for range 5 {
		_, err := f.Allocate(oneBlock)
		require.NoError(t, err)
	}
	assert.Equal(t, 5*BlockSize, f.MaxUsage())

	f.Reset()
	assert.Equal(t, []int{10}, f.FreeRegions())
	assert.Equal(t, 0, f.Usage())
	assert.Equal(t, 0, f.MaxUsage())
}

func TestRandomWorkload(t *testing.T) {
	const blocks = 256
	f := newFreeList(t, blocks)
	rng := testutil.NewRNG(4711)

	type live struct {
		off  uintptr
		size int
		tag  uint64
	}
	var held []live

	for i := range 2000 {
		if len(held) > 0 && rng.Bool() {
			j := rng.Intn(len(held))
			h := held[j]
			require.Equal(t, h.tag, *f.arena.Uint64(h.off), "payload clobbered")
			require.NoError(t, f.Deallocate(h.off, h.size))
			held = append(held[:j], held[j+1:]...)
		} else {
			size := 8 * (1 + rng.Intn(12))
			off, err := f.Allocate(size)
			if err != nil {
				require.ErrorIs(t, err, arena.ErrExhausted)
				continue
			}
			tag := uint64(i)<<8 | 0xAB
			*f.arena.Uint64(off) = tag
			held = append(held, live{off: off, size: size, tag: tag})
		}

		free := 0
		for _, n := range f.FreeRegions() {
			free += n
		}
		require.Equal(t, blocks, free+f.Usage()/BlockSize, "every block is free or allocated")
	}

	for _, h := range held {
		require.NoError(t, f.Deallocate(h.off, h.size))
	}
	assert.Equal(t, 0, f.Usage())
}
