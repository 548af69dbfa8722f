package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/agbru/magcalc/internal/alloc"
	"github.com/agbru/magcalc/internal/magnitude"
	"github.com/agbru/magcalc/internal/native"
	"github.com/agbru/magcalc/internal/orchestration"
	"github.com/agbru/magcalc/internal/ui"
)

func newTestREPL(input string, verify bool) (*REPL, *bytes.Buffer, *alloc.Pool) {
	ui.InitTheme(true)
	pool := alloc.NewPool(alloc.Options{})
	calc := magnitude.NewCalculator(pool)
	engine := orchestration.NewEngine(calc, native.NewInvoker(nil), verify)
	r := NewREPL(engine, REPLConfig{Timeout: time.Minute})
	var out bytes.Buffer
	r.SetInput(strings.NewReader(input))
	r.SetOutput(&out)
	return r, &out, pool
}

func TestREPLSession(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		verify   bool
		contains []string
	}{
		{
			name:     "Addition",
			input:    "add 2 3\nexit\n",
			contains: []string{"Value:      5", "Goodbye!"},
		},
		{
			name:     "Hex toggle",
			input:    "hex\nmul 0xffffffff 0xffffffff\n",
			contains: []string{"Hexadecimal display: enabled", "0xfffffffe00000001"},
		},
		{
			name:     "Comparison",
			input:    "cmp 1 2\n",
			contains: []string{"Comparison: -1"},
		},
		{
			name:     "Division by zero",
			input:    "div 1 0\n",
			contains: []string{"Error:"},
		},
		{
			name:     "Wrong arity",
			input:    "mul 7\n",
			contains: []string{"Usage: mul takes 2 operand(s)"},
		},
		{
			name:     "Unknown command",
			input:    "pow 2 3\n",
			contains: []string{"Unknown command: pow"},
		},
		{
			name:     "Threshold",
			input:    "threshold 1\nthreshold\nmul 123456789 987654321\n",
			verify:   true,
			contains: []string{"Karatsuba threshold set to: 4 words", "Karatsuba threshold: 4 words", "121,932,631,112,635,269"},
		},
		{
			name:     "Invalid threshold",
			input:    "threshold abc\n",
			contains: []string{"Invalid threshold: abc"},
		},
		{
			name:     "Stats",
			input:    "add 1 1\nstats\n",
			contains: []string{"Allocator Stats:", "Allocations:"},
		},
		{
			name:     "Status",
			input:    "status\n",
			verify:   true,
			contains: []string{"Current configuration:", "Verification:   on", "Timeout:        1m0s"},
		},
		{
			name:     "Last line without newline",
			input:    "shl 1 4",
			contains: []string{"Value:      16", "Goodbye!"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, out, _ := newTestREPL(tt.input, tt.verify)
			r.Start()
			output := out.String()
			for _, s := range tt.contains {
				if !strings.Contains(output, s) {
					t.Errorf("Expected output to contain %q, got:\n%s", s, output)
				}
			}
		})
	}
}

func TestREPLReleasesBuffers(t *testing.T) {
	r, _, pool := newTestREPL("mul 0x123456789abcdef0123 0xfedcba9876543210\nshr 0x1000000000000 3\nmag 0xff00\n", false)
	r.Start()
	if live := pool.Stats().LiveWords; live != 0 {
		t.Errorf("expected every buffer to be released, %d words live", live)
	}
}
