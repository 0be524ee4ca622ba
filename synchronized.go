package arenakit

import "sync"

// Synchronized wraps a with a mutex so that any policy, FreeList included,
// can be shared between goroutines.
func Synchronized[T any](a Allocator[T]) Allocator[T] {
	if s, ok := a.(*synchronized[T]); ok {
		return s
	}
	return &synchronized[T]{inner: a}
}

type synchronized[T any] struct {
	mu    sync.Mutex
	inner Allocator[T]
}

func (s *synchronized[T]) Allocate(n int) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Allocate(n)
}

func (s *synchronized[T]) Deallocate(p []T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Deallocate(p)
}

func (s *synchronized[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inner.Reset()
}

func (s *synchronized[T]) MaxUsage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.MaxUsage()
}

func (s *synchronized[T]) Usage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Usage()
}

func (s *synchronized[T]) Capacity() int { return s.inner.Capacity() }

func (s *synchronized[T]) Policy() Policy { return s.inner.Policy() }

func (s *synchronized[T]) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.inner.Stats()
	st.ExactWatermark = true
	return st
}

func (s *synchronized[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Close()
}
