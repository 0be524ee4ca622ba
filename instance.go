package arenakit

import (
	"reflect"
	"sync"
)

type instanceKey struct {
	policy Policy
	elem   reflect.Type
}

type instanceEntry struct {
	once  sync.Once
	alloc any
	err   error
}

var instances sync.Map // instanceKey -> *instanceEntry

// Instance returns the process-wide allocator for policy and T, creating it
// on first use. Only the options of the first call are applied; later
// callers share its result, including a construction error.
//
// Instances of non-concurrent policies are shared like any other value and
// need external synchronization when used from several goroutines.
func Instance[T any](policy Policy, optFns ...Option) (Allocator[T], error) {
	key := instanceKey{policy: policy, elem: reflect.TypeFor[T]()}

	v, _ := instances.LoadOrStore(key, &instanceEntry{})
	e := v.(*instanceEntry) //nolint:forcetypeassert // only *instanceEntry is stored

	e.once.Do(func() {
		e.alloc, e.err = New[T](policy, optFns...)
	})
	if e.err != nil {
		return nil, e.err
	}
	return e.alloc.(Allocator[T]), nil //nolint:forcetypeassert // keyed by T
}

// MustInstance is like Instance but panics on error.
func MustInstance[T any](policy Policy, optFns ...Option) Allocator[T] {
	a, err := Instance[T](policy, optFns...)
	if err != nil {
		panic(err)
	}
	return a
}
