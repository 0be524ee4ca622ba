package arena

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/hupe1980/arenakit/internal/mem"
	"github.com/hupe1980/arenakit/internal/mmap"
)

// Backing selects where arena memory comes from.
type Backing int

const (
	// Heap reserves an aligned slice on the Go heap.
	Heap Backing = iota
	// Mmap reserves an anonymous mapping outside the Go heap.
	Mmap
)

func (b Backing) String() string {
	switch b {
	case Heap:
		return "heap"
	case Mmap:
		return "mmap"
	default:
		return fmt.Sprintf("backing(%d)", int(b))
	}
}

// MemoryAcquirer is an interface for acquiring memory from a shared budget.
type MemoryAcquirer interface {
	ReserveMemory(amount int64) error
	ReleaseMemory(amount int64)
}

// Arena is a single contiguous reservation of fixed size.
type Arena struct {
	data     []byte
	base     uintptr
	size     int
	align    int
	backing  Backing
	mapping  *mmap.Mapping // Holds the off-heap mapping (if applicable)
	acquirer MemoryAcquirer
	released atomic.Bool
}

// Option is a configuration option for Arena.
type Option func(*Arena)

// WithBacking sets where the arena memory is reserved.
func WithBacking(b Backing) Option {
	return func(a *Arena) {
		a.backing = b
	}
}

// WithMemoryAcquirer charges the arena size against a shared memory budget.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(a *Arena) {
		a.acquirer = acquirer
	}
}

// New reserves size bytes aligned to align.
func New(size, align int, opts ...Option) (*Arena, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	if align <= 0 {
		align = mem.DefaultAlignment
	}
	if !mem.IsPowerOfTwo(align) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAlignment, align)
	}

	a := &Arena{
		size:  size,
		align: align,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.acquirer != nil {
		if err := a.acquirer.ReserveMemory(int64(size)); err != nil {
			return nil, err
		}
	}

	if err := a.reserve(); err != nil {
		if a.acquirer != nil {
			a.acquirer.ReleaseMemory(int64(size))
		}
		return nil, err
	}

	a.base = uintptr(unsafe.Pointer(&a.data[0])) //nolint:gosec // unsafe is required for arena implementation

	return a, nil
}

func (a *Arena) reserve() error {
	switch a.backing {
	case Heap:
		a.data = mem.AllocAligned(a.size, a.align)
		if a.data == nil {
			return fmt.Errorf("%w: %d", ErrInvalidAlignment, a.align)
		}
		return nil
	case Mmap:
		if a.align > mmap.PageSize() {
			return fmt.Errorf("%w: %d exceeds page size", ErrInvalidAlignment, a.align)
		}
		mapping, err := mmap.MapAnon(a.size)
		if err != nil {
			return fmt.Errorf("failed to map anonymous memory for arena: %w", err)
		}
		a.mapping = mapping
		a.data = mapping.Bytes()[:a.size:a.size]
		return nil
	default:
		return fmt.Errorf("arena: unknown backing %v", a.backing)
	}
}

// Size returns the usable size in bytes.
func (a *Arena) Size() int {
	return a.size
}

// Alignment returns the alignment of the first byte.
func (a *Arena) Alignment() int {
	return a.align
}

// Backing returns where the memory was reserved.
func (a *Arena) Backing() Backing {
	return a.backing
}

// Bytes returns the whole arena. Nil after Release.
func (a *Arena) Bytes() []byte {
	if a.released.Load() {
		return nil
	}
	return a.data
}

// Base returns a pointer to the first byte.
func (a *Arena) Base() unsafe.Pointer {
	return unsafe.Pointer(unsafe.SliceData(a.data))
}

// At returns a pointer to the byte at off. It performs no bounds checking.
func (a *Arena) At(off uintptr) unsafe.Pointer {
	return unsafe.Add(a.Base(), off) //nolint:gosec // unsafe is required for arena implementation
}

// Uint64 returns a view of the 8-byte word at off. off must be 8-byte aligned.
func (a *Arena) Uint64(off uintptr) *uint64 {
	return (*uint64)(a.At(off))
}

// Uint32 returns a view of the 4-byte word at off. off must be 4-byte aligned.
func (a *Arena) Uint32(off uintptr) *uint32 {
	return (*uint32)(a.At(off))
}

// Offset translates p into an arena offset. ok is false when p lies outside the arena.
func (a *Arena) Offset(p unsafe.Pointer) (off uintptr, ok bool) {
	addr := uintptr(p)
	if addr < a.base || addr >= a.base+uintptr(a.size) {
		return 0, false
	}
	return addr - a.base, true
}

// Contains reports whether p points into the arena.
func (a *Arena) Contains(p unsafe.Pointer) bool {
	_, ok := a.Offset(p)
	return ok
}

// Released reports whether Release has been called.
func (a *Arena) Released() bool {
	return a.released.Load()
}

// Release returns the memory. It is idempotent; only the first call releases.
func (a *Arena) Release() error {
	if a.released.Swap(true) {
		return nil
	}

	var err error
	if a.mapping != nil {
		err = a.mapping.Close()
	}
	a.data = nil

	if a.acquirer != nil {
		a.acquirer.ReleaseMemory(int64(a.size))
	}
	return err
}

func (a *Arena) String() string {
	return fmt.Sprintf("Arena{size: %d, align: %d, backing: %s, released: %t}",
		a.size, a.align, a.backing, a.released.Load())
}
