package main

import (
	"errors"
	"fmt"

	"github.com/hupe1980/arenakit"
	"github.com/hupe1980/arenakit/container"
)

// workload drives an allocator through containers of int32.
type workload struct {
	Name string
	Desc string
	run  func(r *replay) error
}

var workloads = []workload{
	{
		Name: "right-brackets",
		Desc: "three vectors released in reverse order of creation",
		run:  rightBrackets,
	},
	{
		Name: "wrong-brackets",
		Desc: "three vectors emptied in order of creation",
		run:  wrongBrackets,
	},
	{
		Name: "reuse",
		Desc: "one vector created and released 128 times",
		run:  reuse,
	},
}

func findWorkload(name string) (workload, error) {
	for _, w := range workloads {
		if w.Name == name {
			return w, nil
		}
	}
	return workload{}, fmt.Errorf("unknown workload %q", name)
}

// replay carries the allocator and counts frees a strict LIFO stack refused.
type replay struct {
	alloc  arenakit.Allocator[int32]
	buried int
}

func (r *replay) vector(n int) (*container.Vector[int32], error) {
	return container.NewVector(r.alloc, n)
}

// check absorbs ErrNotTop: the buried block stays reserved until reset.
func (r *replay) check(err error) error {
	if errors.Is(err, arenakit.ErrNotTop) {
		r.buried++
		return nil
	}
	return err
}

func (r *replay) vectors(sizes ...int) ([]*container.Vector[int32], error) {
	out := make([]*container.Vector[int32], 0, len(sizes))
	for _, n := range sizes {
		v, err := r.vector(n)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func rightBrackets(r *replay) error {
	vs, err := r.vectors(16, 32, 64)
	if err != nil {
		return err
	}
	for i := len(vs) - 1; i >= 0; i-- {
		if err := r.check(vs[i].Release()); err != nil {
			return err
		}
	}
	return nil
}

func wrongBrackets(r *replay) error {
	vs, err := r.vectors(16, 32, 64)
	if err != nil {
		return err
	}
	for _, v := range vs {
		v.Clear()
		if err := r.check(v.ShrinkToFit()); err != nil {
			return err
		}
	}
	for i := len(vs) - 1; i >= 0; i-- {
		if err := r.check(vs[i].Release()); err != nil {
			return err
		}
	}
	return nil
}

func reuse(r *replay) error {
	for range 128 {
		v, err := r.vector(64)
		if err != nil {
			return err
		}
		if err := r.check(v.Release()); err != nil {
			return err
		}
	}
	return nil
}
