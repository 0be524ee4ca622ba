package arenakit

import (
	"log/slog"

	"github.com/hupe1980/arenakit/internal/arena"
	"github.com/hupe1980/arenakit/resource"
)

// DefaultCapacity is the arena capacity in elements when WithCapacity is not given.
const DefaultCapacity = 1 << 16

// Backing selects where arena memory comes from.
type Backing = arena.Backing

const (
	// BackingHeap reserves the arena as an aligned Go heap slice.
	BackingHeap = arena.Heap
	// BackingMmap reserves the arena as an anonymous off-heap mapping.
	BackingMmap = arena.Mmap
)

type options struct {
	capacity         int
	backing          Backing
	name             string
	debug            bool
	controller       *resource.Controller
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures allocator construction.
type Option func(*options)

// WithCapacity sets the arena capacity in elements of T.
//
// The arena holds capacity*sizeof(T) bytes (pool policies round each slot up
// to its stride). Stack and FreeList block headers are carved from the same
// bytes, so fewer elements fit when requests are small.
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithBacking selects heap or mmap arena memory. Heap is the default.
func WithBacking(b Backing) Option {
	return func(o *options) {
		o.backing = b
	}
}

// WithName labels the allocator in logs and stats.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithDebug enables live-block tracking.
//
// Debug allocators reject double frees with ErrInvalidFree and panic when
// a concurrent allocator is Reset while operations are in flight.
func WithDebug(enabled bool) Option {
	return func(o *options) {
		o.debug = enabled
	}
}

// WithMemoryController charges the arena, and any heap fallback, against a
// shared memory budget.
//
// Example:
//
//	ctrl := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 30})
//	a, _ := arenakit.NewLinear[float64](arenakit.WithMemoryController(ctrl))
func WithMemoryController(c *resource.Controller) Option {
	return func(o *options) {
		o.controller = c
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &arenakit.BasicMetricsCollector{}
//	a, _ := arenakit.NewPool[Node](arenakit.WithMetricsCollector(metrics))
//	// ... use a ...
//	stats := metrics.GetStats()
//	fmt.Printf("Allocations: %d, failed: %d\n", stats.AllocateCount, stats.AllocateErrors)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := arenakit.NewJSONLogger(slog.LevelInfo)
//	a, _ := arenakit.NewStack[byte](arenakit.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		capacity:         DefaultCapacity,
		backing:          BackingHeap,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
