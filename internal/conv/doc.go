// Package conv provides checked integer arithmetic and conversion utilities.
//
// These functions perform bounds checking to prevent integer overflow when
// turning element counts into byte sizes and when narrowing sizes into the
// fixed-width fields stored inside arena headers.
//
// For conversions that are provably safe by domain constraints (e.g., loop
// indices, bounded counters), use direct type casts instead to avoid overhead.
package conv
