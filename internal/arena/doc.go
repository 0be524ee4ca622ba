// Package arena provides the fixed-size memory reservation every allocator
// policy is built on.
//
// An Arena is one contiguous, aligned byte range of fixed capacity. It is
// owned by exactly one allocator for that allocator's lifetime and released
// exactly once.
//
// # Backing
//
//   - Heap: an aligned Go heap slice (portable, default)
//   - Mmap: an anonymous off-heap mapping, invisible to the garbage collector
//
// # Safety
//
// Arena bytes are never scanned by the garbage collector. Storing Go pointers
// in an arena hides them from the collector; only pointer-free data may live
// here.
package arena
