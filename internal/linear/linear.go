package linear

import (
	"github.com/hupe1980/arenakit/internal/arena"
)

// Allocator is a single-threaded bump allocator.
type Allocator struct {
	arena *arena.Arena
	head  int
}

// New creates a bump allocator over a.
func New(a *arena.Arena) *Allocator {
	return &Allocator{arena: a}
}

// Allocate reserves size bytes at the head.
// It returns arena.ErrExhausted when the remaining space is too small.
func (l *Allocator) Allocate(size int) (uintptr, error) {
	if l.head > l.arena.Size()-size {
		return 0, arena.ErrExhausted
	}
	off := l.head
	l.head += size
	return uintptr(off), nil
}

// Deallocate is a no-op; bump allocators never reclaim individual blocks.
func (l *Allocator) Deallocate(uintptr, int) error {
	return nil
}

// Reset rewinds the head to the start of the arena.
func (l *Allocator) Reset() {
	l.head = 0
}

// Usage returns the bytes between the arena start and the head.
func (l *Allocator) Usage() int {
	return l.head
}

// MaxUsage returns the high-water mark since the last Reset. The head is
// monotonic between resets, so it is its own watermark.
func (l *Allocator) MaxUsage() int {
	return l.head
}
