package pool

import (
	"fmt"
	"sync/atomic"

	"github.com/hupe1980/arenakit/internal/arena"
	"github.com/hupe1980/arenakit/internal/mem"
)

// Concurrent is a lock-free pool built on a tagged Treiber stack.
type Concurrent struct {
	arena  *arena.Arena
	unit   int
	stride int
	slots  int

	links []atomic.Uint32 // next link per slot, index + 1
	head  atomic.Uint64   // generation<<32 | slot index + 1
	fresh atomic.Int64
	live  atomic.Int64
	peak  atomic.Int64 // best effort
}

// NewConcurrent creates a lock-free pool of unit-sized slots aligned to align.
func NewConcurrent(a *arena.Arena, unit, align int) (*Concurrent, error) {
	if unit <= 0 {
		return nil, fmt.Errorf("%w: unit %d", arena.ErrInvalidSize, unit)
	}
	stride := ConcurrentSlotStride(unit, align)
	slots, err := slotCount(a.Size(), stride)
	if err != nil {
		return nil, err
	}
	return &Concurrent{
		arena:  a,
		unit:   unit,
		stride: stride,
		slots:  slots,
		links:  make([]atomic.Uint32, slots),
	}, nil
}

// ConcurrentSlotStride returns the slot stride of a Concurrent pool.
func ConcurrentSlotStride(unit, align int) int {
	return mem.AlignUp(unit, max(align, 1))
}

func pack(gen uint64, link uint32) uint64 {
	return gen<<32 | uint64(link)
}

// Allocate pops a freed slot or claims a never-used one.
func (c *Concurrent) Allocate(size int) (uintptr, error) {
	if size > c.unit {
		return 0, fmt.Errorf("%w: %d exceeds slot unit %d", arena.ErrInvalidSize, size, c.unit)
	}

	for {
		if idx, ok := c.pop(); ok {
			return c.claimed(idx), nil
		}
		if idx, ok := c.bump(); ok {
			return c.claimed(idx), nil
		}
		// A slot may have been pushed while the bump index ran out.
		if uint32(c.head.Load()) == nilSlot {
			return 0, arena.ErrExhausted
		}
	}
}

func (c *Concurrent) pop() (int, bool) {
	for {
		h := c.head.Load()
		top := uint32(h)
		if top == nilSlot {
			return 0, false
		}
		next := c.links[top-1].Load()
		if c.head.CompareAndSwap(h, pack(h>>32+1, next)) {
			return int(top - 1), true
		}
	}
}

func (c *Concurrent) bump() (int, bool) {
	for {
		cur := c.fresh.Load()
		if cur >= int64(c.slots) {
			return 0, false
		}
		if c.fresh.CompareAndSwap(cur, cur+1) {
			return int(cur), true
		}
	}
}

func (c *Concurrent) claimed(idx int) uintptr {
	live := c.live.Add(1)
	for {
		cur := c.peak.Load()
		if live <= cur || c.peak.CompareAndSwap(cur, live) {
			break
		}
	}
	return uintptr(idx * c.stride)
}

// Deallocate pushes the slot at off onto the free list.
func (c *Concurrent) Deallocate(off uintptr, _ int) error {
	if off%uintptr(c.stride) != 0 {
		return arena.ErrInvalidFree
	}
	idx := int(off / uintptr(c.stride)) //nolint:gosec // bounded by arena size
	if idx >= c.slots || int64(idx) >= c.fresh.Load() {
		return arena.ErrInvalidFree
	}

	link := linkTo(idx)
	for {
		h := c.head.Load()
		c.links[idx].Store(uint32(h))
		if c.head.CompareAndSwap(h, pack(h>>32+1, link)) {
			break
		}
	}
	c.live.Add(-1)
	return nil
}

// Reset returns every slot to the pool. No Allocate or Deallocate may be in flight.
func (c *Concurrent) Reset() {
	gen := c.head.Load() >> 32
	c.head.Store(pack(gen+1, nilSlot))
	c.fresh.Store(0)
	c.live.Store(0)
	c.peak.Store(0)
}

// Usage returns the bytes held by live slots.
func (c *Concurrent) Usage() int {
	return int(max(c.live.Load(), 0)) * c.stride
}

// MaxUsage returns a best-effort peak of bytes held by live slots.
func (c *Concurrent) MaxUsage() int {
	return int(c.peak.Load()) * c.stride
}

// Slots returns the number of slots in the arena.
func (c *Concurrent) Slots() int { return c.slots }

// Stride returns the distance in bytes between consecutive slots.
func (c *Concurrent) Stride() int { return c.stride }
