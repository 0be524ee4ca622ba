// Package freelist implements a variable-size, first-fit free list allocator.
//
// The arena is divided into 16-byte blocks. Every region spans whole blocks
// and is either free or allocated:
//
//	free:      [ size | next ] ...
//	allocated: [ size ] payload ...
//
// size counts blocks and next is the block index of the following free
// region plus one (zero ends the list). Payloads start 8 bytes into their
// region, so they are 8-byte aligned.
//
// Allocate splits an oversized match and keeps the remainder in the same list
// position. Deallocate merges the freed region with the list head when the two
// touch in memory and otherwise pushes it uncoalesced.
package freelist
