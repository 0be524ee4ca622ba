package stack

import (
	"fmt"
	"sync/atomic"

	"github.com/hupe1980/arenakit/internal/arena"
	"github.com/hupe1980/arenakit/internal/conv"
)

// Concurrent is a lock-free stack allocator that only supports LIFO frees.
type Concurrent struct {
	arena *arena.Arena
	size  int64
	align int
	head  atomic.Int64
	peak  atomic.Int64 // best effort
}

// NewConcurrent creates a lock-free stack allocator over a.
func NewConcurrent(a *arena.Arena, align int) *Concurrent {
	return &Concurrent{
		arena: a,
		size:  int64(a.Size()),
		align: max(align, 1),
	}
}

func (c *Concurrent) blockSize(size int) (int64, error) {
	n, err := conv.AlignUp(size, c.align)
	return int64(n), err
}

// Allocate moves the head up by the rounded size.
func (c *Concurrent) Allocate(size int) (uintptr, error) {
	body, err := c.blockSize(size)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", arena.ErrExhausted, err)
	}
	if body > c.size {
		return 0, arena.ErrExhausted
	}
	for {
		cur := c.head.Load()
		if cur > c.size-body {
			return 0, arena.ErrExhausted
		}
		if c.head.CompareAndSwap(cur, cur+body) {
			c.notePeak(cur + body)
			return uintptr(cur), nil
		}
	}
}

// Deallocate rolls the head back to off when the block is the current top.
// Any other block yields ErrNotTop and the head is left unchanged.
func (c *Concurrent) Deallocate(off uintptr, size int) error {
	body, err := c.blockSize(size)
	if err != nil || body > c.size {
		return arena.ErrInvalidFree
	}
	p := int64(off) //nolint:gosec // off lies in the arena
	for {
		cur := c.head.Load()
		switch {
		case p+body > cur:
			return arena.ErrInvalidFree
		case p+body < cur:
			return ErrNotTop
		}
		if c.head.CompareAndSwap(cur, p) {
			return nil
		}
	}
}

func (c *Concurrent) notePeak(v int64) {
	for {
		cur := c.peak.Load()
		if v <= cur || c.peak.CompareAndSwap(cur, v) {
			return
		}
	}
}

// Reset rewinds the head. No Allocate or Deallocate may be in flight.
func (c *Concurrent) Reset() {
	c.head.Store(0)
	c.peak.Store(0)
}

// Usage returns the current head offset.
func (c *Concurrent) Usage() int {
	return int(c.head.Load())
}

// MaxUsage returns a best-effort high-water mark since the last Reset.
func (c *Concurrent) MaxUsage() int {
	return int(c.peak.Load())
}
