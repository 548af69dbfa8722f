package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/agbru/magcalc/internal/alloc"
	"github.com/agbru/magcalc/internal/format"
	"github.com/agbru/magcalc/internal/sysmon"
	"github.com/agbru/magcalc/internal/words"
)

// sparkSamples is the number of samples kept per sparkline.
const sparkSamples = 40

// StatusModel displays the allocator, the Go runtime and the host.
type StatusModel struct {
	alloc     alloc.Stats
	hasAlloc  bool
	mem       MemStatsMsg
	sys       sysmon.Stats
	cpu       *RingBuffer
	memPct    *RingBuffer
	latencies *RingBuffer
	width     int
	height    int
}

// NewStatusModel creates an empty status panel.
func NewStatusModel() StatusModel {
	return StatusModel{
		cpu:       NewRingBuffer(sparkSamples),
		memPct:    NewRingBuffer(sparkSamples),
		latencies: NewRingBuffer(sparkSamples),
	}
}

// SetSize updates the panel dimensions, borders included.
func (s *StatusModel) SetSize(w, h int) {
	s.width, s.height = w, h
}

// UpdateAllocator records an allocator snapshot.
func (s *StatusModel) UpdateAllocator(st alloc.Stats) {
	s.alloc = st
	s.hasAlloc = true
}

// UpdateMemStats records a runtime snapshot.
func (s *StatusModel) UpdateMemStats(msg MemStatsMsg) { s.mem = msg }

// UpdateSystem records a host snapshot.
func (s *StatusModel) UpdateSystem(st sysmon.Stats) {
	s.sys = st
	s.cpu.Push(st.CPUPercent)
	s.memPct.Push(st.MemPercent)
}

// ObserveLatency records the duration of an evaluation.
func (s *StatusModel) ObserveLatency(d time.Duration) {
	s.latencies.Push(float64(d))
}

func wordBytes(n uint64) string { return format.FormatBytes(n * words.Size / 8) }

// View renders the panel.
func (s StatusModel) View() string {
	var rows []string
	if s.hasAlloc {
		limit := "unlimited"
		if s.alloc.LimitWords > 0 {
			limit = wordBytes(s.alloc.LimitWords)
		}
		rows = append(rows,
			metricRow("Live", wordBytes(s.alloc.LiveWords)),
			metricRow("Cached", wordBytes(s.alloc.CachedWords)),
			metricRow("Peak", wordBytes(s.alloc.PeakWords)),
			metricRow("Limit", limit),
			metricRow("Allocs", fmt.Sprintf("%d (%d reused)", s.alloc.Allocations, s.alloc.Reuses)),
		)
		if s.alloc.Failures > 0 {
			rows = append(rows, metricRow("Failures", errorStyle.Render(fmt.Sprintf("%d", s.alloc.Failures))))
		}
	}
	rows = append(rows,
		metricRow("Heap", format.FormatBytes(s.mem.HeapAlloc)+" / "+format.FormatBytes(s.mem.HeapSys)),
		metricRow("GC", fmt.Sprintf("%d (%.1fms)", s.mem.NumGC, float64(s.mem.PauseTotalNs)/1e6)),
		metricRow("Goroutines", fmt.Sprintf("%d", s.mem.NumGoroutine)),
		"",
		metricRow("CPU", fmt.Sprintf("%5.1f%% ", s.sys.CPUPercent)+cpuSparkStyle.Render(RenderSparkline(s.cpu.Slice()))),
		metricRow("Mem", fmt.Sprintf("%5.1f%% ", s.sys.MemPercent)+memSparkStyle.Render(RenderSparkline(s.memPct.Slice()))),
	)
	if s.latencies.Len() > 0 {
		last := format.FormatExecutionDuration(time.Duration(s.latencies.Last()))
		rows = append(rows, metricRow("Latency", last+" "+accentStyle.Render(RenderScaledSparkline(s.latencies.Slice()))))
	}

	inner := max(s.height-2, 1)
	if len(rows) > inner {
		rows = rows[:inner]
	}
	return panelStyle.
		Width(max(s.width-2, 0)).
		Height(inner).
		Render(strings.Join(rows, "\n"))
}

func metricRow(label, value string) string {
	cell := metricLabelStyle.Render(fmt.Sprintf(" %-11s", label+":"))
	return cell + metricValueStyle.Render(value)
}
