// Package mem provides memory allocation utilities.
package mem

import (
	"unsafe"
)

// DefaultAlignment is the alignment used when a caller passes a non-positive one.
const DefaultAlignment = 8

// IsPowerOfTwo reports whether v is a positive power of two.
func IsPowerOfTwo(v int) bool {
	return v > 0 && v&(v-1) == 0
}

// AlignUp rounds size up to the next multiple of align.
// align must be a power of two.
func AlignUp(size, align int) int {
	return (size + align - 1) &^ (align - 1)
}

// AllocAligned allocates a byte slice of the given size whose first byte is
// aligned to align. A non-positive align selects DefaultAlignment.
// It returns nil for a non-positive size or an alignment that is not a power of two.
//
// Note: This function allocates slightly more memory than requested to ensure alignment.
// The underlying array is kept alive by the returned slice.
func AllocAligned(size, align int) []byte {
	if size <= 0 {
		return nil
	}
	if align <= 0 {
		align = DefaultAlignment
	}
	if !IsPowerOfTwo(align) {
		return nil
	}

	// Allocate size + align so the start can be shifted up to align-1 bytes.
	buf := make([]byte, size+align)

	addr := uintptr(unsafe.Pointer(&buf[0])) //nolint:gosec // unsafe is required for memory alignment
	mask := uintptr(align - 1)
	offset := (uintptr(align) - (addr & mask)) & mask

	return buf[offset : offset+uintptr(size) : offset+uintptr(size)]
}
