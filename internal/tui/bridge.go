package tui

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/magcalc/internal/alloc"
	"github.com/agbru/magcalc/internal/config"
	apperrors "github.com/agbru/magcalc/internal/errors"
	"github.com/agbru/magcalc/internal/orchestration"
	"github.com/agbru/magcalc/internal/sysmon"
)

// Messages exchanged between the commands and the model.
type (
	// EvalResultMsg carries the outcome of one submitted line.
	EvalResultMsg struct {
		Input  string
		Result orchestration.JobResult
	}
	// TickMsg drives periodic sampling.
	TickMsg time.Time
	// MemStatsMsg is a Go runtime snapshot.
	MemStatsMsg struct {
		HeapAlloc    uint64
		HeapSys      uint64
		NumGC        uint32
		PauseTotalNs uint64
		NumGoroutine int
	}
	// SysStatsMsg is a host snapshot.
	SysStatsMsg sysmon.Stats
	// AllocStatsMsg is an allocator snapshot.
	AllocStatsMsg alloc.Stats
)

// tickInterval is the sampling period of the status panel.
const tickInterval = 500 * time.Millisecond

// parseLine turns an input line of the form "op operand..." into a job.
func parseLine(line string, seq int) (orchestration.Job, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return orchestration.Job{}, apperrors.ValidationError{Field: "input", Message: "empty line"}
	}
	op := strings.ToLower(fields[0])
	arity, ok := config.OperationArity(op)
	if !ok {
		return orchestration.Job{}, apperrors.ValidationError{
			Field:   "op",
			Message: fmt.Sprintf("unknown operation %q (want one of %s)", op, strings.Join(config.Operations, ", ")),
		}
	}
	if len(fields)-1 != arity {
		return orchestration.Job{}, apperrors.ValidationError{
			Field:   "operands",
			Message: fmt.Sprintf("%s takes %d operand(s), got %d", op, arity, len(fields)-1),
		}
	}
	return orchestration.Job{ID: fmt.Sprintf("tui-%d", seq), Op: op, Operands: fields[1:]}, nil
}

// evalCmd runs job on engine off the UI goroutine.
func evalCmd(ctx context.Context, engine orchestration.JobRunner, input string, job orchestration.Job, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return EvalResultMsg{Input: input, Result: engine.Run(ctx, job)}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func sampleMemStatsCmd() tea.Cmd {
	return func() tea.Msg {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		return MemStatsMsg{
			HeapAlloc:    ms.HeapAlloc,
			HeapSys:      ms.HeapSys,
			NumGC:        ms.NumGC,
			PauseTotalNs: ms.PauseTotalNs,
			NumGoroutine: runtime.NumGoroutine(),
		}
	}
}

func sampleSysStatsCmd(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		return SysStatsMsg(sysmon.SampleContext(ctx))
	}
}

func sampleAllocStatsCmd(stats func() alloc.Stats) tea.Cmd {
	if stats == nil {
		return nil
	}
	return func() tea.Msg {
		return AllocStatsMsg(stats())
	}
}
