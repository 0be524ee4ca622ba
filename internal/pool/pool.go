package pool

import (
	"fmt"

	"github.com/hupe1980/arenakit/internal/arena"
	"github.com/hupe1980/arenakit/internal/conv"
	"github.com/hupe1980/arenakit/internal/mem"
)

// linkSize is the width of the intrusive next-slot link.
const linkSize = 4

// nilSlot terminates the free list. Links store slot index + 1.
const nilSlot = 0

// Allocator is a single-threaded pool with an intrusive free list.
type Allocator struct {
	arena  *arena.Arena
	unit   int
	stride int
	slots  int

	head  uint32 // slot index + 1 of the most recently freed slot
	fresh int    // slots never handed out start here
	live  int
	peak  int
}

// New creates a pool of unit-sized slots aligned to align.
func New(a *arena.Arena, unit, align int) (*Allocator, error) {
	if unit <= 0 {
		return nil, fmt.Errorf("%w: unit %d", arena.ErrInvalidSize, unit)
	}
	stride := SlotStride(unit, align)
	slots, err := slotCount(a.Size(), stride)
	if err != nil {
		return nil, err
	}
	return &Allocator{
		arena:  a,
		unit:   unit,
		stride: stride,
		slots:  slots,
	}, nil
}

// CheckSlots reports whether n slots can be addressed by a 32-bit link
// holding slot index + 1.
func CheckSlots(n int) error {
	if _, err := conv.IntToUint32(n + 1); err != nil {
		return fmt.Errorf("%w: %d slots exceed the link range: %w", arena.ErrInvalidSize, n, err)
	}
	return nil
}

func slotCount(size, stride int) (int, error) {
	slots := size / stride
	if slots == 0 {
		return 0, fmt.Errorf("%w: arena of %d bytes holds no %d-byte slot", arena.ErrInvalidSize, size, stride)
	}
	if err := CheckSlots(slots); err != nil {
		return 0, err
	}
	return slots, nil
}

// linkTo returns the link value of slot idx. Slot counts are bounded by
// CheckSlots, so idx + 1 fits.
func linkTo(idx int) uint32 {
	return uint32(idx + 1) //nolint:gosec // idx < slots <= math.MaxUint32-1
}

// SlotStride returns the slot stride of an Allocator for the given unit and alignment.
func SlotStride(unit, align int) int {
	return mem.AlignUp(max(unit, linkSize), max(align, linkSize))
}

// Allocate returns the offset of a free slot. size must not exceed the unit.
func (p *Allocator) Allocate(size int) (uintptr, error) {
	if size > p.unit {
		return 0, fmt.Errorf("%w: %d exceeds slot unit %d", arena.ErrInvalidSize, size, p.unit)
	}

	var idx int
	switch {
	case p.head != nilSlot:
		idx = int(p.head - 1)
		p.head = *p.arena.Uint32(p.offset(idx))
	case p.fresh < p.slots:
		idx = p.fresh
		p.fresh++
	default:
		return 0, arena.ErrExhausted
	}

	p.live++
	p.peak = max(p.peak, p.live)
	return p.offset(idx), nil
}

// Deallocate pushes the slot at off onto the free list.
func (p *Allocator) Deallocate(off uintptr, _ int) error {
	idx, ok := p.index(off)
	if !ok || idx >= p.fresh || p.live == 0 {
		return arena.ErrInvalidFree
	}

	*p.arena.Uint32(off) = p.head
	p.head = linkTo(idx)
	p.live--
	return nil
}

// Reset returns every slot to the pool.
func (p *Allocator) Reset() {
	p.head = nilSlot
	p.fresh = 0
	p.live = 0
	p.peak = 0
}

// Usage returns the bytes held by live slots.
func (p *Allocator) Usage() int {
	return p.live * p.stride
}

// MaxUsage returns the peak bytes held by live slots since the last Reset.
func (p *Allocator) MaxUsage() int {
	return p.peak * p.stride
}

// Slots returns the number of slots in the arena.
func (p *Allocator) Slots() int { return p.slots }

// Stride returns the distance in bytes between consecutive slots.
func (p *Allocator) Stride() int { return p.stride }

func (p *Allocator) offset(idx int) uintptr {
	return uintptr(idx * p.stride)
}

func (p *Allocator) index(off uintptr) (int, bool) {
	if off%uintptr(p.stride) != 0 {
		return 0, false
	}
	idx := int(off / uintptr(p.stride)) //nolint:gosec // bounded by arena size
	return idx, idx < p.slots
}
