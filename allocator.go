package arenakit

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync/atomic"
	"unsafe"

	"github.com/hupe1980/arenakit/internal/arena"
	"github.com/hupe1980/arenakit/internal/conv"
	"github.com/hupe1980/arenakit/internal/freelist"
	"github.com/hupe1980/arenakit/internal/linear"
	"github.com/hupe1980/arenakit/internal/mem"
	"github.com/hupe1980/arenakit/internal/pool"
	"github.com/hupe1980/arenakit/internal/stack"
	"github.com/hupe1980/arenakit/internal/track"
)

// Allocator hands out slices of T carved from a fixed-capacity arena.
//
// Allocators of concurrent policies are safe for use by multiple goroutines,
// except that Reset and Close must not overlap other calls. Other policies
// require external synchronization (see Synchronized).
type Allocator[T any] interface {
	// Allocate returns n contiguous elements. Allocate(0) returns nil.
	// The elements are not zeroed.
	Allocate(n int) ([]T, error)

	// Deallocate returns a slice obtained from Allocate, with its original length.
	Deallocate(s []T) error

	// Reset reclaims the whole arena, invalidating every outstanding slice.
	Reset()

	// MaxUsage returns the arena high-water mark in bytes since the last Reset.
	MaxUsage() int

	// Usage returns the arena bytes currently in use.
	Usage() int

	// Capacity returns the configured capacity in elements.
	Capacity() int

	// Policy returns the allocation policy.
	Policy() Policy

	// Stats returns a snapshot of usage and counters.
	Stats() Stats

	// Close releases the arena. Further calls return ErrClosed.
	Close() error
}

type engine interface {
	Allocate(size int) (uintptr, error)
	Deallocate(off uintptr, size int) error
	Reset()
	Usage() int
	MaxUsage() int
}

type allocator[T any] struct {
	policy   Policy
	elemSize int
	capacity int
	opts     options
	logger   *Logger
	arena    *arena.Arena
	engine   engine
	tracker  *track.Tracker // nil unless debug

	closed        atomic.Bool
	allocations   atomic.Int64
	deallocations atomic.Int64
	failures      atomic.Int64
	fallbacks     atomic.Int64
	fallbackBytes atomic.Int64
}

// New creates an allocator of the given policy for elements of type T.
func New[T any](policy Policy, optFns ...Option) (Allocator[T], error) {
	return newAllocator[T](policy, optFns)
}

// NewLinear creates a single-threaded bump allocator with heap fallback.
func NewLinear[T any](optFns ...Option) (Allocator[T], error) {
	return New[T](PolicyLinear, optFns...)
}

// NewLinearConcurrent creates a lock-free bump allocator with heap fallback.
func NewLinearConcurrent[T any](optFns ...Option) (Allocator[T], error) {
	return New[T](PolicyLinearConcurrent, optFns...)
}

// NewStack creates a single-threaded stack allocator.
// Out-of-order frees are deferred until every block above them is freed.
func NewStack[T any](optFns ...Option) (Allocator[T], error) {
	return New[T](PolicyStack, optFns...)
}

// NewStackConcurrent creates a lock-free stack allocator.
// Only the top block may be freed; other frees return ErrNotTop.
func NewStackConcurrent[T any](optFns ...Option) (Allocator[T], error) {
	return New[T](PolicyStackConcurrent, optFns...)
}

// NewPool creates a single-threaded pool of single elements.
func NewPool[T any](optFns ...Option) (Allocator[T], error) {
	return New[T](PolicyPool, optFns...)
}

// NewPoolConcurrent creates a lock-free pool of single elements.
func NewPoolConcurrent[T any](optFns ...Option) (Allocator[T], error) {
	return New[T](PolicyPoolConcurrent, optFns...)
}

// NewFreeList creates a single-threaded variable-size free list allocator.
func NewFreeList[T any](optFns ...Option) (Allocator[T], error) {
	return New[T](PolicyFreeList, optFns...)
}

func newAllocator[T any](policy Policy, optFns []Option) (*allocator[T], error) {
	if !policy.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPolicy, int(policy))
	}

	typ := reflect.TypeFor[T]()
	if err := checkElementType(typ); err != nil {
		return nil, err
	}

	o := applyOptions(optFns)
	if o.capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, o.capacity)
	}

	elemSize := int(typ.Size()) //nolint:gosec // type sizes fit int
	elemAlign := typ.Align()
	if policy == PolicyFreeList && elemAlign > freelist.Alignment {
		return nil, &ElementTypeError{Type: typ, Reason: fmt.Sprintf("alignment %d exceeds %d", elemAlign, freelist.Alignment)}
	}

	size, err := arenaSize(policy, o.capacity, elemSize, elemAlign)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCapacity, err)
	}

	arenaOpts := []arena.Option{arena.WithBacking(o.backing)}
	if o.controller != nil {
		arenaOpts = append(arenaOpts, arena.WithMemoryAcquirer(o.controller))
	}
	ar, err := arena.New(size, max(elemAlign, mem.DefaultAlignment), arenaOpts...)
	if err != nil {
		return nil, err
	}

	eng, err := newEngine(policy, ar, elemSize, elemAlign)
	if err != nil {
		_ = ar.Release()
		return nil, err
	}

	a := &allocator[T]{
		policy:   policy,
		elemSize: elemSize,
		capacity: o.capacity,
		opts:     o,
		logger:   o.logger.WithPolicy(policy).WithName(o.name),
		arena:    ar,
		engine:   eng,
	}
	if o.debug {
		a.tracker = track.New()
	}

	a.logger.LogArenaReserved(context.Background(), ar.Size(), ar.Backing())
	return a, nil
}

func arenaSize(policy Policy, capacity, elemSize, elemAlign int) (int, error) {
	switch policy {
	case PolicyPool, PolicyPoolConcurrent:
		if err := pool.CheckSlots(capacity); err != nil {
			return 0, err
		}
		if policy == PolicyPool {
			return conv.MulInt(capacity, pool.SlotStride(elemSize, elemAlign))
		}
		return conv.MulInt(capacity, pool.ConcurrentSlotStride(elemSize, elemAlign))
	case PolicyFreeList:
		n, err := conv.MulInt(capacity, elemSize)
		if err != nil {
			return 0, err
		}
		return mem.AlignUp(n, freelist.BlockSize), nil
	default:
		return conv.MulInt(capacity, elemSize)
	}
}

func newEngine(policy Policy, ar *arena.Arena, elemSize, elemAlign int) (engine, error) {
	switch policy {
	case PolicyLinear:
		return linear.New(ar), nil
	case PolicyLinearConcurrent:
		return linear.NewConcurrent(ar), nil
	case PolicyStack:
		return stack.New(ar, elemAlign), nil
	case PolicyStackConcurrent:
		return stack.NewConcurrent(ar, elemAlign), nil
	case PolicyPool:
		return pool.New(ar, elemSize, elemAlign)
	case PolicyPoolConcurrent:
		return pool.NewConcurrent(ar, elemSize, elemAlign)
	case PolicyFreeList:
		return freelist.New(ar)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownPolicy, int(policy))
	}
}

func (a *allocator[T]) isLinear() bool {
	return a.policy == PolicyLinear || a.policy == PolicyLinearConcurrent
}

func (a *allocator[T]) isPool() bool {
	return a.policy == PolicyPool || a.policy == PolicyPoolConcurrent
}

// Allocate implements Allocator.
func (a *allocator[T]) Allocate(n int) ([]T, error) {
	if a.closed.Load() {
		return nil, ErrClosed
	}
	switch {
	case n == 0:
		return nil, nil
	case n < 0:
		return nil, &AllocationError{Policy: a.policy, Count: n, cause: ErrInvalidCount}
	case n != 1 && a.isPool():
		return nil, &AllocationError{Policy: a.policy, Count: n, cause: ErrUnsupportedCount}
	}

	bytes, err := conv.MulInt(n, a.elemSize)
	if err != nil {
		return nil, a.fail(n, bytes, fmt.Errorf("%w: %w", ErrArenaExhausted, err))
	}

	if a.tracker != nil {
		a.tracker.Enter()
		defer a.tracker.Exit()
	}

	if bytes > a.arena.Size() {
		if a.isLinear() {
			return a.fallback(n, bytes)
		}
		return nil, a.fail(n, bytes, fmt.Errorf("%w: %d bytes exceed the %d-byte arena", ErrArenaExhausted, bytes, a.arena.Size()))
	}

	off, err := a.engine.Allocate(bytes)
	if err != nil {
		if a.isLinear() && errors.Is(err, ErrArenaExhausted) {
			return a.fallback(n, bytes)
		}
		return nil, a.fail(n, bytes, err)
	}

	if a.tracker != nil {
		a.tracker.Add(off)
	}
	a.allocations.Add(1)
	a.opts.metricsCollector.RecordAllocate(a.policy, bytes, nil)

	return unsafe.Slice((*T)(a.arena.At(off)), n), nil
}

func (a *allocator[T]) fail(n, bytes int, err error) error {
	a.failures.Add(1)
	a.opts.metricsCollector.RecordAllocate(a.policy, bytes, err)
	if errors.Is(err, ErrArenaExhausted) {
		a.logger.LogExhausted(context.Background(), bytes, a.engine.Usage())
	}
	return &AllocationError{Policy: a.policy, Count: n, cause: err}
}

// maxFallbackBytes bounds a single heap fallback allocation.
const maxFallbackBytes = int64(1) << 40

// fallback serves an exhausted Linear request from the Go heap.
func (a *allocator[T]) fallback(n, bytes int) ([]T, error) {
	if int64(bytes) > maxFallbackBytes {
		return nil, a.fail(n, bytes, fmt.Errorf("%w: %d bytes exceed the heap fallback limit", ErrArenaExhausted, bytes))
	}
	if err := a.opts.controller.ReserveMemory(int64(bytes)); err != nil {
		a.logger.LogFallback(context.Background(), bytes, err)
		return nil, a.fail(n, bytes, err)
	}

	s := make([]T, n)
	if a.tracker != nil {
		a.tracker.AddFallback(uintptr(unsafe.Pointer(unsafe.SliceData(s))))
	}

	a.fallbacks.Add(1)
	a.fallbackBytes.Add(int64(bytes))
	a.opts.metricsCollector.RecordFallback(a.policy, bytes)
	a.logger.LogFallback(context.Background(), bytes, nil)

	return s, nil
}

// Deallocate implements Allocator.
func (a *allocator[T]) Deallocate(s []T) error {
	if a.closed.Load() {
		return ErrClosed
	}
	if len(s) == 0 {
		return nil
	}

	bytes := len(s) * a.elemSize
	p := unsafe.Pointer(unsafe.SliceData(s))

	off, ok := a.arena.Offset(p)
	if !ok {
		if a.isLinear() && a.freeFallback(p, int64(bytes)) {
			a.deallocations.Add(1)
			a.opts.metricsCollector.RecordDeallocate(a.policy, bytes, nil)
			return nil
		}
		a.opts.metricsCollector.RecordDeallocate(a.policy, bytes, ErrForeignPointer)
		return ErrForeignPointer
	}

	if a.tracker != nil {
		a.tracker.Enter()
		defer a.tracker.Exit()

		if err := a.tracker.Remove(off); err != nil {
			a.logger.LogInvalidFree(context.Background(), off, err)
			a.opts.metricsCollector.RecordDeallocate(a.policy, bytes, err)
			return err
		}
	}

	if err := a.engine.Deallocate(off, bytes); err != nil {
		if a.tracker != nil {
			a.tracker.Add(off)
		}
		a.logger.LogInvalidFree(context.Background(), off, err)
		a.opts.metricsCollector.RecordDeallocate(a.policy, bytes, err)
		return err
	}

	a.deallocations.Add(1)
	a.opts.metricsCollector.RecordDeallocate(a.policy, bytes, nil)
	return nil
}

// freeFallback releases a heap fallback slice starting at p. Debug
// allocators only accept slices they handed out; others accept any heap
// slice while enough fallback bytes are outstanding.
func (a *allocator[T]) freeFallback(p unsafe.Pointer, bytes int64) bool {
	if a.tracker == nil {
		return a.releaseFallback(bytes)
	}
	if !a.tracker.RemoveFallback(uintptr(p)) {
		return false
	}
	if !a.releaseFallback(bytes) {
		a.tracker.AddFallback(uintptr(p))
		return false
	}
	return true
}

// releaseFallback returns heap fallback bytes to the budget. It reports false
// when fewer bytes are outstanding, i.e. the slice was never a fallback.
func (a *allocator[T]) releaseFallback(bytes int64) bool {
	for {
		cur := a.fallbackBytes.Load()
		if cur < bytes {
			return false
		}
		if a.fallbackBytes.CompareAndSwap(cur, cur-bytes) {
			a.opts.controller.ReleaseMemory(bytes)
			return true
		}
	}
}

// Reset implements Allocator. Heap fallback slices stay valid and keep their
// budget until they are deallocated.
func (a *allocator[T]) Reset() {
	if a.closed.Load() {
		return
	}
	if a.tracker != nil {
		if a.policy.Concurrent() && a.tracker.Busy() {
			panic(fmt.Sprintf("arenakit: %s Reset while operations are in flight", a.policy))
		}
		a.tracker.Reset()
	}

	maxUsage := a.engine.MaxUsage()
	a.engine.Reset()

	a.opts.metricsCollector.RecordReset(a.policy, maxUsage)
	a.logger.LogReset(context.Background(), maxUsage)
}

// MaxUsage implements Allocator.
func (a *allocator[T]) MaxUsage() int {
	return a.engine.MaxUsage()
}

// Usage implements Allocator.
func (a *allocator[T]) Usage() int {
	return a.engine.Usage()
}

// Capacity implements Allocator.
func (a *allocator[T]) Capacity() int {
	return a.capacity
}

// Policy implements Allocator.
func (a *allocator[T]) Policy() Policy {
	return a.policy
}

// Stats implements Allocator.
func (a *allocator[T]) Stats() Stats {
	return Stats{
		Policy:         a.policy,
		Name:           a.opts.name,
		Backing:        a.arena.Backing(),
		Capacity:       a.capacity,
		CapacityBytes:  a.arena.Size(),
		UsageBytes:     a.engine.Usage(),
		MaxUsageBytes:  a.engine.MaxUsage(),
		ExactWatermark: !a.policy.Concurrent(),
		Allocations:    a.allocations.Load(),
		Deallocations:  a.deallocations.Load(),
		Failures:       a.failures.Load(),
		Fallbacks:      a.fallbacks.Load(),
		FallbackBytes:  a.fallbackBytes.Load(),
	}
}

// AllocateOne allocates a single element and returns a pointer to it.
func AllocateOne[T any](a Allocator[T]) (*T, error) {
	s, err := a.Allocate(1)
	if err != nil {
		return nil, err
	}
	return &s[0], nil
}

// DeallocateOne returns an element obtained from AllocateOne.
func DeallocateOne[T any](a Allocator[T], p *T) error {
	if p == nil {
		return nil
	}
	return a.Deallocate(unsafe.Slice(p, 1))
}
