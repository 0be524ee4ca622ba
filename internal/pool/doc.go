// Package pool implements fixed-unit slot allocators over an arena.
//
// The arena is carved into equally sized slots. Slots are handed out from a
// bump index until every slot has been touched once; freed slots go onto a
// free list and are reused most-recently-freed first.
//
// Allocator keeps the free-list link inside the freed slot itself.
// Concurrent keeps links in a side table and tags the list head with a
// generation counter so a lock-free pop cannot be fooled by ABA reuse.
package pool
