// Package arenakit provides fixed-capacity, arena-backed allocators for
// pointer-free element types.
//
// Each allocator reserves one contiguous, aligned arena up front and serves
// Allocate and Deallocate requests from it under one of four policies:
//
//	Linear    bump allocation, no individual frees, heap fallback on exhaustion
//	Stack     LIFO frees; out-of-order frees are deferred until the top is freed
//	Pool      one element per allocation, recycled through a free list
//	FreeList  variable-size first-fit allocation with splitting and coalescing
//
// Linear, Stack and Pool also come in lock-free concurrent variants.
//
// # Quick Start
//
//	a, err := arenakit.NewStack[int64](arenakit.WithCapacity(1 << 20))
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
//
//	buf, err := a.Allocate(128)
//	if err != nil {
//	    return err // errors.Is(err, arenakit.ErrArenaExhausted)
//	}
//	defer a.Deallocate(buf)
//
// # Element Types
//
// Arena memory is not scanned by the garbage collector, so element types must
// not contain pointers, strings, slices, maps, channels, functions or
// interfaces. Constructors reject such types with *ElementTypeError.
//
// # Lifetimes
//
// Slices returned by Allocate alias arena memory. They are invalidated by
// Deallocate, Reset and Close and must not be used afterwards.
//
// # Process-wide Instances
//
// Instance returns one shared allocator per policy and element type,
// constructed on first use:
//
//	a, err := arenakit.Instance[int32](arenakit.PolicyLinearConcurrent)
package arenakit
