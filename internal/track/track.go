// Package track records live allocations for debug builds of the allocators.
package track

import (
	"sync"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/arenakit/internal/arena"
)

// Tracker is a goroutine-safe set of live block offsets. It also keeps the
// addresses of live heap fallback allocations, which survive Reset.
type Tracker struct {
	mu       sync.Mutex
	live     *roaring64.Bitmap
	fallback *roaring64.Bitmap

	inflight atomic.Int64
}

// New returns an empty tracker.
func New() *Tracker {
	return &Tracker{live: roaring64.New(), fallback: roaring64.New()}
}

// Add records off as live. It reports false if off was already live.
func (t *Tracker) Add(off uintptr) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.live.CheckedAdd(uint64(off))
}

// Remove forgets off. Removing an offset that is not live is an invalid free.
func (t *Tracker) Remove(off uintptr) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.live.CheckedRemove(uint64(off)) {
		return arena.ErrInvalidFree
	}
	return nil
}

// Contains reports whether off is live.
func (t *Tracker) Contains(off uintptr) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.live.Contains(uint64(off))
}

// Live returns the number of live blocks.
func (t *Tracker) Live() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return int(t.live.GetCardinality()) //nolint:gosec // bounded by arena size
}

// AddFallback records the address of a heap fallback allocation.
func (t *Tracker) AddFallback(p uintptr) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fallback.Add(uint64(p))
}

// RemoveFallback forgets a heap fallback address. It reports false if p was
// not recorded.
func (t *Tracker) RemoveFallback(p uintptr) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fallback.CheckedRemove(uint64(p))
}

// Reset forgets every block.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.live.Clear()
}

// Enter marks the start of an allocator operation.
func (t *Tracker) Enter() { t.inflight.Add(1) }

// Exit marks the end of an allocator operation.
func (t *Tracker) Exit() { t.inflight.Add(-1) }

// Busy reports whether any operation is between Enter and Exit.
func (t *Tracker) Busy() bool { return t.inflight.Load() != 0 }
