package arenakit

import (
	"sync/atomic"
)

// MetricsCollector defines an interface for collecting allocator metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    allocations *prometheus.CounterVec
//	}
//
//	func (p *PrometheusCollector) RecordAllocate(policy arenakit.Policy, bytes int, err error) {
//	    p.allocations.WithLabelValues(policy.String()).Inc()
//	}
type MetricsCollector interface {
	// RecordAllocate is called after each Allocate served by the arena.
	// err is nil if successful.
	RecordAllocate(policy Policy, bytes int, err error)

	// RecordDeallocate is called after each Deallocate.
	RecordDeallocate(policy Policy, bytes int, err error)

	// RecordFallback is called when a Linear allocator serves a request from the heap.
	RecordFallback(policy Policy, bytes int)

	// RecordReset is called after each Reset with the watermark it discarded.
	RecordReset(policy Policy, maxUsage int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAllocate(Policy, int, error)   {}
func (NoopMetricsCollector) RecordDeallocate(Policy, int, error) {}
func (NoopMetricsCollector) RecordFallback(Policy, int)          {}
func (NoopMetricsCollector) RecordReset(Policy, int)             {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AllocateCount     atomic.Int64
	AllocateErrors    atomic.Int64
	AllocatedBytes    atomic.Int64
	DeallocateCount   atomic.Int64
	DeallocateErrors  atomic.Int64
	DeallocatedBytes  atomic.Int64
	FallbackCount     atomic.Int64
	FallbackBytes     atomic.Int64
	ResetCount        atomic.Int64
	PeakMaxUsageBytes atomic.Int64
}

// RecordAllocate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAllocate(_ Policy, bytes int, err error) {
	b.AllocateCount.Add(1)
	if err != nil {
		b.AllocateErrors.Add(1)
		return
	}
	b.AllocatedBytes.Add(int64(bytes))
}

// RecordDeallocate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDeallocate(_ Policy, bytes int, err error) {
	b.DeallocateCount.Add(1)
	if err != nil {
		b.DeallocateErrors.Add(1)
		return
	}
	b.DeallocatedBytes.Add(int64(bytes))
}

// RecordFallback implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFallback(_ Policy, bytes int) {
	b.FallbackCount.Add(1)
	b.FallbackBytes.Add(int64(bytes))
}

// RecordReset implements MetricsCollector.
func (b *BasicMetricsCollector) RecordReset(_ Policy, maxUsage int) {
	b.ResetCount.Add(1)
	v := int64(maxUsage)
	for {
		cur := b.PeakMaxUsageBytes.Load()
		if v <= cur || b.PeakMaxUsageBytes.CompareAndSwap(cur, v) {
			return
		}
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AllocateCount:     b.AllocateCount.Load(),
		AllocateErrors:    b.AllocateErrors.Load(),
		AllocatedBytes:    b.AllocatedBytes.Load(),
		DeallocateCount:   b.DeallocateCount.Load(),
		DeallocateErrors:  b.DeallocateErrors.Load(),
		DeallocatedBytes:  b.DeallocatedBytes.Load(),
		FallbackCount:     b.FallbackCount.Load(),
		FallbackBytes:     b.FallbackBytes.Load(),
		ResetCount:        b.ResetCount.Load(),
		PeakMaxUsageBytes: b.PeakMaxUsageBytes.Load(),
	}
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AllocateCount     int64
	AllocateErrors    int64
	AllocatedBytes    int64
	DeallocateCount   int64
	DeallocateErrors  int64
	DeallocatedBytes  int64
	FallbackCount     int64
	FallbackBytes     int64
	ResetCount        int64
	PeakMaxUsageBytes int64
}

// Stats is a point-in-time snapshot of one allocator.
type Stats struct {
	Policy        Policy
	Name          string
	Backing       Backing
	Capacity      int // elements
	CapacityBytes int // arena bytes
	UsageBytes    int
	MaxUsageBytes int

	// ExactWatermark is false for concurrent policies, whose watermark is
	// maintained on a best-effort basis.
	ExactWatermark bool

	Allocations   int64
	Deallocations int64
	Failures      int64
	Fallbacks     int64
	FallbackBytes int64 // currently held by live fallback allocations
}
