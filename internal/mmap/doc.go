// Package mmap provides anonymous memory mappings for off-heap arenas.
//
// # Overview
//
// An anonymous mapping is a read-write region obtained directly from the
// operating system. The Go garbage collector never scans or moves it, which
// makes it a stable home for allocator arenas.
//
// # Usage
//
//	m, err := mmap.MapAnon(1 << 20)
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes() // page-aligned, zero-filled
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with MAP_ANON|MAP_PRIVATE
//   - Windows: VirtualAlloc with MEM_RESERVE|MEM_COMMIT
//
// # Thread Safety
//
// The Close() method is idempotent and protected by atomic operations.
// Callers must ensure no goroutines access Bytes() after Close() returns.
package mmap
