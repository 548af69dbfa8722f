package alloc

import (
	"math"
	"runtime"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// RuntimeCollector is the collection pass used by Pool on exhaustion: it
// forces a Go garbage collection and, optionally, returns freed memory to
// the operating system.
type RuntimeCollector struct {
	logger       zerolog.Logger
	freeOSMemory bool
}

// NewRuntimeCollector creates a collector. With freeOSMemory set, each pass
// calls debug.FreeOSMemory instead of runtime.GC.
func NewRuntimeCollector(logger zerolog.Logger, freeOSMemory bool) *RuntimeCollector {
	return &RuntimeCollector{logger: logger, freeOSMemory: freeOSMemory}
}

// Collect runs one collection pass and logs the heap delta.
func (c *RuntimeCollector) Collect() {
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	if c.freeOSMemory {
		debug.FreeOSMemory()
	} else {
		runtime.GC()
	}
	runtime.ReadMemStats(&after)
	c.logger.Debug().
		Uint64("heap_before_bytes", before.HeapAlloc).
		Uint64("heap_after_bytes", after.HeapAlloc).
		Uint32("gc_cycles", after.NumGC-before.NumGC).
		Msg("runtime collection")
}

// GCMode selects how GCController treats the Go collector during a batch.
type GCMode string

const (
	// GCModeAuto suspends the collector only for large working sets.
	GCModeAuto GCMode = "auto"
	// GCModeAggressive always suspends the collector.
	GCModeAggressive GCMode = "aggressive"
	// GCModeDisabled leaves the collector alone.
	GCModeDisabled GCMode = "disabled"
)

// GCAutoThresholdWords is the expected working set from which auto mode
// suspends the collector.
const GCAutoThresholdWords = 1 << 20

// GCStats is the runtime activity observed between Begin and End.
type GCStats struct {
	HeapAlloc    uint64
	TotalAlloc   uint64
	NumGC        uint32
	PauseTotalNs uint64
}

// GCController turns the Go collector off around a run of pooled
// arithmetic and puts the previous settings back afterward. The pool frees
// its buffers explicitly, so nothing it tracks depends on the collector.
type GCController struct {
	mode   GCMode
	active bool
	logger zerolog.Logger

	prevPercent int
	prevLimit   int64
	start       runtime.MemStats
	stats       GCStats
}

// NewGCController returns a controller for mode. workingSetWords is only
// consulted in auto mode; unknown modes behave like disabled.
func NewGCController(mode string, workingSetWords uint64) *GCController {
	m := GCMode(mode)
	return &GCController{
		mode:   m,
		active: m == GCModeAggressive || (m == GCModeAuto && workingSetWords >= GCAutoThresholdWords),
		logger: zerolog.Nop(),
	}
}

// SetLogger sets the logger used for suspend and restore events.
func (gc *GCController) SetLogger(l zerolog.Logger) { gc.logger = l }

// Active reports whether Begin will suspend the collector.
func (gc *GCController) Active() bool { return gc.active }

// Begin suspends the collector. While it is off, a soft memory limit of
// three times the current footprint forces collections before the process
// runs away.
func (gc *GCController) Begin() {
	if !gc.active {
		return
	}
	runtime.ReadMemStats(&gc.start)
	gc.prevPercent = debug.SetGCPercent(-1)
	gc.prevLimit = debug.SetMemoryLimit(-1)
	if soft := gc.start.Sys * 3; soft > 0 && soft < math.MaxInt64 {
		debug.SetMemoryLimit(int64(soft))
	}
	gc.logger.Debug().Str("mode", string(gc.mode)).
		Uint64("heap_alloc_bytes", gc.start.HeapAlloc).
		Msg("gc suspended")
}

// End restores the collector settings saved by Begin, collects once and
// records the activity of the run.
func (gc *GCController) End() {
	if !gc.active {
		return
	}
	var end runtime.MemStats
	runtime.ReadMemStats(&end)
	debug.SetGCPercent(gc.prevPercent)
	debug.SetMemoryLimit(gc.prevLimit)
	runtime.GC()

	gc.stats = GCStats{
		HeapAlloc:    end.HeapAlloc,
		TotalAlloc:   end.TotalAlloc - gc.start.TotalAlloc,
		NumGC:        end.NumGC - gc.start.NumGC,
		PauseTotalNs: end.PauseTotalNs - gc.start.PauseTotalNs,
	}
	gc.logger.Debug().Str("mode", string(gc.mode)).
		Uint64("heap_alloc_bytes", gc.stats.HeapAlloc).
		Uint64("total_alloc_bytes", gc.stats.TotalAlloc).
		Uint32("gc_cycles", gc.stats.NumGC).
		Msg("gc restored")
}

// Stats returns what End recorded; it is zero until End has run.
func (gc *GCController) Stats() GCStats { return gc.stats }
