// Package mem provides memory allocation utilities.
//
// # Aligned Allocation
//
// Provides heap-backed byte regions whose first byte sits on a caller-chosen
// power-of-two boundary. Arenas use it when off-heap mappings are not wanted.
package mem
