// Package linear implements bump allocation over a fixed arena.
//
// The head only moves forward. Individual blocks are never reclaimed;
// Reset rewinds the head to the start of the arena and invalidates every
// block handed out before it.
//
// Allocator is single-threaded. Concurrent advances the head with an atomic
// add; its capacity check is a plain load that is not atomic with the add, so
// near the end of the arena more requests than strictly necessary may be
// refused. Refused requests never receive overlapping ranges.
package linear
