package cli

import (
	"bytes"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/agbru/magcalc/internal/config"
	"github.com/agbru/magcalc/internal/ui"
)

func mustParseBig(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 0)
	if !ok {
		t.Fatalf("invalid number %q", s)
	}
	return v
}

// TestPrintExecutionConfig tests the PrintExecutionConfig function.
func TestPrintExecutionConfig(t *testing.T) {
	ui.InitTheme(true)

	tests := []struct {
		name     string
		cfg      config.AppConfig
		contains []string
	}{
		{
			name:     "Eval",
			cfg:      config.AppConfig{Mode: config.ModeEval, Op: "mul", Timeout: time.Minute, KaratsubaThreshold: 80},
			contains: []string{"Evaluating mul", "1m0s", "Karatsuba from 80 words", "allocator limit unlimited", "verification off"},
		},
		{
			name: "Batch",
			cfg: config.AppConfig{Mode: config.ModeBatch, BatchFile: "jobs.yaml", Workers: 4,
				Timeout: time.Minute, MemoryLimit: "1GiB", Verify: true},
			contains: []string{"Running batch jobs.yaml with 4 workers", "allocator limit 1GiB", "verification on"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			PrintExecutionConfig(tt.cfg, &buf)
			output := buf.String()
			for _, s := range append(tt.contains, "--- Execution Configuration ---", "logical processors") {
				if !strings.Contains(output, s) {
					t.Errorf("Expected output to contain %q, got:\n%s", s, output)
				}
			}
		})
	}
}
