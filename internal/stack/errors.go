package stack

import "errors"

// ErrNotTop is returned by Concurrent when a block other than the top one is freed.
var ErrNotTop = errors.New("stack: block is not the top of the stack")
