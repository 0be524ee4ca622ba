package freelist

import (
	"fmt"

	"github.com/hupe1980/arenakit/internal/arena"
	"github.com/hupe1980/arenakit/internal/conv"
)

const (
	// BlockSize is the allocation granularity in bytes.
	BlockSize = 16
	// HeaderSize is the per-allocation header in bytes.
	HeaderSize = 8
	// Alignment is the alignment of every payload.
	Alignment = 8
)

// Allocator is a single-threaded first-fit free list.
type Allocator struct {
	arena  *arena.Arena
	blocks int

	head uint64 // block index + 1
	used int    // allocated blocks
	peak int
}

// New creates a free list covering a. The arena must hold at least one block.
func New(a *arena.Arena) (*Allocator, error) {
	blocks := a.Size() / BlockSize
	if blocks == 0 {
		return nil, fmt.Errorf("%w: arena of %d bytes holds no block", arena.ErrInvalidSize, a.Size())
	}
	f := &Allocator{arena: a, blocks: blocks}
	f.Reset()
	return f, nil
}

// BlocksFor returns how many blocks a payload of size bytes occupies.
func BlocksFor(size int) (int, error) {
	n, err := conv.AddInt(size, HeaderSize+BlockSize-1)
	if err != nil {
		return 0, err
	}
	return n / BlockSize, nil
}

func (f *Allocator) size(b int) *uint64 {
	return f.arena.Uint64(uintptr(b * BlockSize))
}

func (f *Allocator) next(b int) *uint64 {
	return f.arena.Uint64(uintptr(b*BlockSize + HeaderSize))
}

// Allocate returns the payload offset of the first free region large enough
// for size bytes.
func (f *Allocator) Allocate(size int) (uintptr, error) {
	need, err := BlocksFor(size)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", arena.ErrExhausted, err)
	}
	if need > f.blocks {
		return 0, arena.ErrExhausted
	}

	link := &f.head
	for *link != 0 {
		b := int(*link - 1) //nolint:gosec // block indices fit the arena
		have := int(*f.size(b)) //nolint:gosec // block counts fit the arena
		if have < need {
			link = f.next(b)
			continue
		}

		if have == need {
			*link = *f.next(b)
		} else {
			rest := b + need
			*f.size(rest) = uint64(have - need) //nolint:gosec // positive
			*f.next(rest) = *f.next(b)
			*link = uint64(rest + 1) //nolint:gosec // positive
		}

		*f.size(b) = uint64(need) //nolint:gosec // positive
		f.used += need
		f.peak = max(f.peak, f.used)
		return uintptr(b*BlockSize + HeaderSize), nil
	}

	return 0, arena.ErrExhausted
}

// Deallocate returns the region whose payload starts at off to the free list.
func (f *Allocator) Deallocate(off uintptr, size int) error {
	if off < HeaderSize || (off-HeaderSize)%BlockSize != 0 {
		return arena.ErrInvalidFree
	}
	b := int((off - HeaderSize) / BlockSize) //nolint:gosec // bounded by arena size
	need, err := BlocksFor(size)
	if err != nil || need > f.blocks-b {
		return arena.ErrInvalidFree
	}
	if int(*f.size(b)) != need { //nolint:gosec // block counts fit the arena
		return arena.ErrInvalidFree
	}
	if f.head == uint64(b+1) { //nolint:gosec // positive
		return arena.ErrInvalidFree
	}
	f.used -= need

	n := need
	for f.head != 0 {
		h := int(f.head - 1) //nolint:gosec // block indices fit the arena
		hs := int(*f.size(h)) //nolint:gosec // block counts fit the arena
		switch {
		case h == b+n:
			// Head sits directly above the freed region.
		case b == h+hs:
			// Freed region sits directly above the head.
			b = h
		default:
			f.push(b, n)
			return nil
		}
		n += hs
		f.head = *f.next(h)
	}

	f.push(b, n)
	return nil
}

func (f *Allocator) push(b, n int) {
	*f.size(b) = uint64(n) //nolint:gosec // positive
	*f.next(b) = f.head
	f.head = uint64(b + 1) //nolint:gosec // positive
}

// Reset collapses the arena back into one free region.
func (f *Allocator) Reset() {
	f.head = 0
	f.used = 0
	f.peak = 0
	f.push(0, f.blocks)
}

// Usage returns the bytes held by allocated regions, headers included.
func (f *Allocator) Usage() int {
	return f.used * BlockSize
}

// MaxUsage returns the peak of Usage since the last Reset.
func (f *Allocator) MaxUsage() int {
	return f.peak * BlockSize
}

// Blocks returns the number of blocks in the arena.
func (f *Allocator) Blocks() int {
	return f.blocks
}

// FreeRegions returns the block counts of the free list in list order.
func (f *Allocator) FreeRegions() []int {
	var out []int
	for link := f.head; link != 0; link = *f.next(int(link - 1)) { //nolint:gosec // block indices fit the arena
		out = append(out, int(*f.size(int(link-1)))) //nolint:gosec // block counts fit the arena
	}
	return out
}
