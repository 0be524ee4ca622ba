package arenakit

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/hupe1980/arenakit/internal/arena"
	"github.com/hupe1980/arenakit/internal/stack"
	"github.com/hupe1980/arenakit/resource"
)

var (
	// ErrArenaExhausted is returned when the arena cannot satisfy a request.
	// Linear policies never return it; they fall back to the Go heap.
	ErrArenaExhausted = arena.ErrExhausted

	// ErrInvalidFree is returned when a deallocation is detectably not a live allocation.
	ErrInvalidFree = arena.ErrInvalidFree

	// ErrNotTop is returned by PolicyStackConcurrent when the freed block is not on top.
	ErrNotTop = stack.ErrNotTop

	// ErrMemoryLimitExceeded is returned when a memory controller rejects a reservation.
	ErrMemoryLimitExceeded = resource.ErrMemoryLimitExceeded

	// ErrInvalidCount is returned for a negative element count.
	ErrInvalidCount = errors.New("arenakit: invalid element count")

	// ErrUnsupportedCount is returned by pool policies for counts other than one.
	ErrUnsupportedCount = errors.New("arenakit: pool allocators serve exactly one element")

	// ErrForeignPointer is returned when a slice passed to Deallocate does not
	// belong to the allocator's arena.
	ErrForeignPointer = errors.New("arenakit: slice not allocated from this arena")

	// ErrInvalidCapacity is returned for a non-positive capacity.
	ErrInvalidCapacity = errors.New("arenakit: capacity must be positive")

	// ErrUnknownPolicy is returned for an unknown policy.
	ErrUnknownPolicy = errors.New("arenakit: unknown policy")

	// ErrClosed is returned when using an allocator after Close.
	ErrClosed = errors.New("arenakit: allocator closed")
)

// ElementTypeError indicates an element type that cannot live in an arena.
type ElementTypeError struct {
	Type   reflect.Type
	Reason string
}

func (e *ElementTypeError) Error() string {
	return fmt.Sprintf("arenakit: unsupported element type %v: %s", e.Type, e.Reason)
}

// AllocationError describes a failed Allocate.
//
// The original underlying error can be accessed via errors.Unwrap.
type AllocationError struct {
	Policy Policy
	Count  int
	cause  error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("arenakit: %s allocate %d: %v", e.Policy, e.Count, e.cause)
}

func (e *AllocationError) Unwrap() error { return e.cause }
