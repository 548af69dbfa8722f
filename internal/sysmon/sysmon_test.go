package sysmon

import (
	"context"
	"testing"
)

func TestSample_ReturnsValidRanges(t *testing.T) {
	s := Sample()
	if s.CPUPercent < 0 || s.CPUPercent > 100 {
		t.Errorf("CPUPercent out of range: %f", s.CPUPercent)
	}
	if s.MemPercent < 0 || s.MemPercent > 100 {
		t.Errorf("MemPercent out of range: %f", s.MemPercent)
	}
	if s.NumCPU < 1 || s.Goroutines < 1 {
		t.Errorf("runtime counters not set: %+v", s)
	}
}

func TestSample_MemPercentNonZero(t *testing.T) {
	s := Sample()
	if s.MemPercent == 0 || s.MemTotal == 0 {
		t.Error("expected non-zero memory figures on a running system")
	}
}

func TestSampleContext_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := SampleContext(ctx)
	if s.NumCPU < 1 {
		t.Errorf("NumCPU should not depend on the context, got %d", s.NumCPU)
	}
}
