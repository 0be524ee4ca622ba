package arenakit

import "context"

// Close implements Allocator. Only the first call releases the arena and
// returns its budget to the memory controller.
//
// Heap fallback slices of Linear allocators are owned by the garbage
// collector; their budget is returned only when they are deallocated.
func (a *allocator[T]) Close() error {
	if a == nil || a.closed.Swap(true) {
		return nil
	}
	size := a.arena.Size()
	err := a.arena.Release()
	a.logger.LogArenaReleased(context.Background(), size, err)
	return err
}
