// Package container provides data structures whose storage comes from an
// arenakit.Allocator.
package container

import (
	"fmt"

	"github.com/hupe1980/arenakit"
)

// Vector is a growable sequence of T backed by an allocator.
//
// Growing allocates the new storage before the old storage is returned, so a
// Stack allocator sees the old buffer freed out of order. With
// PolicyStackConcurrent that free fails with arenakit.ErrNotTop; the Vector
// still moves to the new buffer and reports the error, and the old buffer
// stays reserved until the allocator is Reset.
//
// Pool allocators serve one element per allocation, so a Vector over a pool
// cannot grow beyond one element.
//
// A Vector is not safe for concurrent use.
type Vector[T any] struct {
	alloc arenakit.Allocator[T]
	buf   []T
	n     int
}

// NewVector returns a Vector holding n zero values.
func NewVector[T any](a arenakit.Allocator[T], n int) (*Vector[T], error) {
	v := &Vector[T]{alloc: a}
	if n == 0 {
		return v, nil
	}
	buf, err := a.Allocate(n)
	if err != nil {
		return nil, err
	}
	clear(buf)
	v.buf = buf
	v.n = n
	return v, nil
}

// Len returns the number of elements.
func (v *Vector[T]) Len() int { return v.n }

// Cap returns the number of elements the current storage can hold.
func (v *Vector[T]) Cap() int { return len(v.buf) }

// At returns element i. It panics if i is out of range.
func (v *Vector[T]) At(i int) T {
	if i < 0 || i >= v.n {
		panic(fmt.Sprintf("container: index %d out of range [0:%d]", i, v.n))
	}
	return v.buf[i]
}

// Set replaces element i. It panics if i is out of range.
func (v *Vector[T]) Set(i int, x T) {
	if i < 0 || i >= v.n {
		panic(fmt.Sprintf("container: index %d out of range [0:%d]", i, v.n))
	}
	v.buf[i] = x
}

// Slice returns the elements. It aliases the storage and is invalidated by
// any call that grows, shrinks or releases the Vector.
func (v *Vector[T]) Slice() []T {
	return v.buf[:v.n:v.n]
}

// Push appends x, doubling the storage when it is full.
func (v *Vector[T]) Push(x T) error {
	var err error
	if v.n == len(v.buf) {
		// err may only report the free of the old storage.
		err = v.realloc(max(2*len(v.buf), 1))
		if v.n == len(v.buf) {
			return err
		}
	}
	v.buf[v.n] = x
	v.n++
	return err
}

// Pop removes and returns the last element.
func (v *Vector[T]) Pop() (T, bool) {
	var zero T
	if v.n == 0 {
		return zero, false
	}
	v.n--
	x := v.buf[v.n]
	return x, true
}

// Clear removes every element but keeps the storage.
func (v *Vector[T]) Clear() {
	v.n = 0
}

// Reserve grows the storage to hold at least n elements.
func (v *Vector[T]) Reserve(n int) error {
	if n <= len(v.buf) {
		return nil
	}
	return v.realloc(n)
}

// ShrinkToFit moves the elements into storage of exactly Len elements.
// An empty Vector returns its storage to the allocator.
func (v *Vector[T]) ShrinkToFit() error {
	if v.n == len(v.buf) {
		return nil
	}
	return v.realloc(v.n)
}

// Release returns the storage to the allocator and empties the Vector.
func (v *Vector[T]) Release() error {
	old := v.buf
	v.buf = nil
	v.n = 0
	if len(old) == 0 {
		return nil
	}
	return v.alloc.Deallocate(old)
}

// realloc moves the elements into new storage of c elements. A failed
// allocation leaves the Vector unchanged; a failed free of the old storage
// is returned after the move.
func (v *Vector[T]) realloc(c int) error {
	var buf []T
	if c > 0 {
		var err error
		if buf, err = v.alloc.Allocate(c); err != nil {
			return err
		}
		copy(buf, v.buf[:v.n])
	}

	old := v.buf
	v.buf = buf
	if len(old) == 0 {
		return nil
	}
	return v.alloc.Deallocate(old)
}
