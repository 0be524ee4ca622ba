package arenakit

import (
	"fmt"
	"strings"
)

// Policy selects the allocation strategy of an Allocator.
type Policy int

const (
	// PolicyLinear is a single-threaded bump allocator with heap fallback.
	PolicyLinear Policy = iota
	// PolicyLinearConcurrent is a lock-free bump allocator with heap fallback.
	PolicyLinearConcurrent
	// PolicyStack is a single-threaded stack allocator with deferred out-of-order frees.
	PolicyStack
	// PolicyStackConcurrent is a lock-free stack allocator with strict LIFO frees.
	PolicyStackConcurrent
	// PolicyPool is a single-threaded single-element pool.
	PolicyPool
	// PolicyPoolConcurrent is a lock-free single-element pool.
	PolicyPoolConcurrent
	// PolicyFreeList is a single-threaded variable-size free list.
	PolicyFreeList
)

var policyNames = [...]string{
	PolicyLinear:           "linear",
	PolicyLinearConcurrent: "linear-mt",
	PolicyStack:            "stack",
	PolicyStackConcurrent:  "stack-mt",
	PolicyPool:             "pool",
	PolicyPoolConcurrent:   "pool-mt",
	PolicyFreeList:         "freelist",
}

// Policies returns every policy in declaration order.
func Policies() []Policy {
	out := make([]Policy, len(policyNames))
	for i := range out {
		out[i] = Policy(i)
	}
	return out
}

func (p Policy) String() string {
	if p < 0 || int(p) >= len(policyNames) {
		return fmt.Sprintf("Policy(%d)", int(p))
	}
	return policyNames[p]
}

// Valid reports whether p is a known policy.
func (p Policy) Valid() bool {
	return p >= 0 && int(p) < len(policyNames)
}

// Concurrent reports whether allocators of this policy are safe for
// concurrent use without external locking.
func (p Policy) Concurrent() bool {
	switch p {
	case PolicyLinearConcurrent, PolicyStackConcurrent, PolicyPoolConcurrent:
		return true
	default:
		return false
	}
}

// ParsePolicy parses a policy name as printed by Policy.String.
func ParsePolicy(s string) (Policy, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range policyNames {
		if n == name {
			return Policy(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}
