package stack

import (
	"fmt"

	"github.com/hupe1980/arenakit/internal/arena"
	"github.com/hupe1980/arenakit/internal/conv"
	"github.com/hupe1980/arenakit/internal/mem"
)

const (
	headerWord  = 8
	deferredBit = uint64(1)
)

// Allocator is a single-threaded stack allocator supporting out-of-order frees.
type Allocator struct {
	arena *arena.Arena
	align int // block alignment, at least headerWord
	hdr   int // header stride
	head  int
	peak  int
}

// New creates a stack allocator over a. Blocks are aligned to align,
// raised to the header word size when smaller.
func New(a *arena.Arena, align int) *Allocator {
	align = max(align, headerWord)
	return &Allocator{
		arena: a,
		align: align,
		hdr:   mem.AlignUp(headerWord, align),
	}
}

// span returns the rounded block size and the block size plus its header.
func (s *Allocator) span(size int) (body, total int, err error) {
	body, err = conv.AlignUp(size, s.align)
	if err != nil {
		return 0, 0, err
	}
	total, err = conv.AddInt(body, s.hdr)
	return body, total, err
}

func (s *Allocator) header(off int) (size int, deferred bool) {
	w := *s.arena.Uint64(uintptr(off))
	return int(w >> 1), w&deferredBit != 0
}

func (s *Allocator) setHeader(off, size int, deferred bool) {
	w := uint64(size) << 1
	if deferred {
		w |= deferredBit
	}
	*s.arena.Uint64(uintptr(off)) = w
}

// Allocate places a block of size bytes at the head followed by its header.
func (s *Allocator) Allocate(size int) (uintptr, error) {
	body, total, err := s.span(size)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", arena.ErrExhausted, err)
	}
	if total > s.arena.Size()-s.head {
		return 0, arena.ErrExhausted
	}

	off := s.head
	s.setHeader(off+body, body, false)
	s.head = off + body + s.hdr
	s.peak = max(s.peak, s.head)

	return uintptr(off), nil
}

// Deallocate frees the block at off. A buried block is only flagged; the top
// block is reclaimed together with every flagged block directly beneath it.
func (s *Allocator) Deallocate(off uintptr, size int) error {
	body, total, err := s.span(size)
	if err != nil || total > s.head-int(off) { //nolint:gosec // off lies in the arena
		return arena.ErrInvalidFree
	}
	hdrOff := int(off) + body //nolint:gosec // off lies in the arena
	end := hdrOff + s.hdr

	if got, deferred := s.header(hdrOff); got != body || deferred {
		return arena.ErrInvalidFree
	}

	if end < s.head {
		s.setHeader(hdrOff, body, true)
		return nil
	}

	s.head = int(off)
	for s.head > 0 {
		prev, deferred := s.header(s.head - s.hdr)
		if !deferred {
			break
		}
		s.head -= prev + s.hdr
	}
	return nil
}

// Reset discards every block.
func (s *Allocator) Reset() {
	s.head = 0
	s.peak = 0
}

// Usage returns the bytes below the head, deferred blocks included.
func (s *Allocator) Usage() int {
	return s.head
}

// MaxUsage returns the highest head offset since the last Reset.
func (s *Allocator) MaxUsage() int {
	return s.peak
}

// Overhead returns the per-block header stride.
func (s *Allocator) Overhead() int {
	return s.hdr
}
