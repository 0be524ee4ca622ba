// Package resource provides a shared memory budget for arenas.
//
// A Controller caps the bytes reserved by every allocator configured with
// it. Arena reservations and the dynamic fallback of Linear allocators are
// charged against the budget and returned when released.
//
//	ctrl := resource.NewController(resource.Config{MemoryLimitBytes: 64 << 20})
//	a, err := arenakit.NewLinear[int64](arenakit.WithMemoryController(ctrl))
package resource
