// Package stack implements LIFO allocation over a fixed arena.
//
// # Single-threaded: out-of-order frees
//
// Allocator writes a one-word header directly after every block:
//
//	┌────────────┬────────┬────────────┬────────┬─────
//	│  block A   │ hdr A  │  block B   │ hdr B  │ ...  ← head
//	└────────────┴────────┴────────────┴────────┴─────
//
// The header holds the block size and a deferred flag. Freeing a block that
// is buried under live blocks only sets its flag. Freeing the top block
// collapses the head past it and keeps collapsing while the header exposed
// below the head is flagged, so a chain of earlier deferred frees is
// reclaimed in one call.
//
// # Concurrent: strict LIFO
//
// Concurrent keeps no headers, only an atomic head. Only the most recently
// allocated live block may be freed; freeing any other block returns ErrNotTop
// and leaves the head untouched.
package stack
