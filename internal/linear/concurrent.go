package linear

import (
	"sync/atomic"

	"github.com/hupe1980/arenakit/internal/arena"
)

// Concurrent is a lock-free bump allocator.
type Concurrent struct {
	arena *arena.Arena
	size  int64
	head  atomic.Int64 // MUST be atomic - advanced concurrently without locks
}

// NewConcurrent creates a lock-free bump allocator over a.
func NewConcurrent(a *arena.Arena) *Concurrent {
	return &Concurrent{arena: a, size: int64(a.Size())}
}

// Allocate reserves size bytes with a single atomic add.
//
// The capacity check is not atomic with the add. A caller whose range ends
// past the arena after the add gets arena.ErrExhausted; that range is
// abandoned until Reset.
func (c *Concurrent) Allocate(size int) (uintptr, error) {
	n := int64(size)
	if c.head.Load() > c.size-n {
		return 0, arena.ErrExhausted
	}
	end := c.head.Add(n)
	if end > c.size {
		return 0, arena.ErrExhausted
	}
	return uintptr(end - n), nil
}

// Deallocate is a no-op; bump allocators never reclaim individual blocks.
func (c *Concurrent) Deallocate(uintptr, int) error {
	return nil
}

// Reset rewinds the head. No Allocate may be in flight.
func (c *Concurrent) Reset() {
	c.head.Store(0)
}

// Usage returns the bytes handed out, clamped to the arena size.
func (c *Concurrent) Usage() int {
	return int(min(c.head.Load(), c.size))
}

// MaxUsage returns the high-water mark since the last Reset.
func (c *Concurrent) MaxUsage() int {
	return c.Usage()
}
