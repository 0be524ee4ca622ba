package arena

import "errors"

var (
	// ErrExhausted is returned when the arena has no room left for a request.
	ErrExhausted = errors.New("arena: exhausted")
	// ErrInvalidFree is returned when a released block is detectably not a live allocation.
	ErrInvalidFree = errors.New("arena: invalid free")
	// ErrInvalidSize is returned when the requested arena size is not positive.
	ErrInvalidSize = errors.New("arena: invalid size")
	// ErrInvalidAlignment is returned when the alignment is not a supported power of two.
	ErrInvalidAlignment = errors.New("arena: invalid alignment")
	// ErrReleased is returned when using an arena after Release.
	ErrReleased = errors.New("arena: released")
)
