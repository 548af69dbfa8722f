// Package sysmon samples host CPU and memory usage for the health endpoint
// and the TUI status bar.
package sysmon

import (
	"context"
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// Stats holds a single snapshot of system-wide resource usage.
type Stats struct {
	CPUPercent float64 `json:"cpu_percent"` // 0.0 .. 100.0
	MemPercent float64 `json:"mem_percent"` // 0.0 .. 100.0
	MemTotal   uint64  `json:"mem_total_bytes"`
	NumCPU     int     `json:"num_cpu"`
	Goroutines int     `json:"goroutines"`
}

// Sample collects a snapshot with a background context.
func Sample() Stats {
	return SampleContext(context.Background())
}

// SampleContext collects a snapshot. CPU usage is the delta since the
// previous call; fields that cannot be read are left at zero.
func SampleContext(ctx context.Context) Stats {
	s := Stats{NumCPU: runtime.NumCPU(), Goroutines: runtime.NumGoroutine()}
	if pcts, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pcts) > 0 {
		s.CPUPercent = pcts[0]
	}
	if vmem, err := mem.VirtualMemoryWithContext(ctx); err == nil && vmem != nil {
		s.MemPercent = vmem.UsedPercent
		s.MemTotal = vmem.Total
	}
	return s
}
