package metrics

import (
	"runtime"

	"github.com/agbru/magcalc/internal/alloc"
)

// MemorySnapshot holds a point-in-time memory reading of the Go runtime and
// of the word allocator.
type MemorySnapshot struct {
	HeapAlloc    uint64 // bytes in use by application
	Sys          uint64 // total bytes obtained from OS
	NumGC        uint32 // number of completed GC cycles
	PauseTotalNs uint64 // cumulative GC pause time
	Allocator    alloc.Stats
}

// LiveBytes returns the allocator's live words in bytes.
func (s MemorySnapshot) LiveBytes() uint64 { return s.Allocator.LiveWords * 4 }

// MemoryCollector reads runtime and allocator memory statistics.
type MemoryCollector struct {
	pool *alloc.Pool
}

// NewMemoryCollector creates a collector; pool may be nil.
func NewMemoryCollector(pool *alloc.Pool) *MemoryCollector {
	return &MemoryCollector{pool: pool}
}

// Snapshot reads current memory statistics.
func (mc *MemoryCollector) Snapshot() MemorySnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	snap := MemorySnapshot{
		HeapAlloc:    m.HeapAlloc,
		Sys:          m.Sys,
		NumGC:        m.NumGC,
		PauseTotalNs: m.PauseTotalNs,
	}
	if mc.pool != nil {
		snap.Allocator = mc.pool.Stats()
	}
	return snap
}
