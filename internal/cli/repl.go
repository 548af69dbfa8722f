// Package cli provides the terminal front end of magcalc: result
// presentation, progress display, shell completion and the interactive
// REPL.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/agbru/magcalc/internal/alloc"
	"github.com/agbru/magcalc/internal/config"
	"github.com/agbru/magcalc/internal/magnitude"
	"github.com/agbru/magcalc/internal/orchestration"
	"github.com/agbru/magcalc/internal/ui"
)

// REPLConfig holds configuration for the REPL session.
type REPLConfig struct {
	// Timeout is the maximum duration of each evaluation.
	Timeout time.Duration
	// HexOutput displays results in hexadecimal.
	HexOutput bool
	// Verbose prints full values instead of summaries.
	Verbose bool
}

// statsSource is implemented by allocators that keep counters.
type statsSource interface {
	Stats() alloc.Stats
}

// REPL is an interactive evaluation session over an Engine.
type REPL struct {
	config REPLConfig
	engine *orchestration.Engine
	in     io.Reader
	out    io.Writer
}

// NewREPL creates a new REPL instance reading from stdin.
func NewREPL(engine *orchestration.Engine, config REPLConfig) *REPL {
	return &REPL{
		config: config,
		engine: engine,
		in:     os.Stdin,
		out:    os.Stdout,
	}
}

// SetInput sets a custom input reader.
func (r *REPL) SetInput(in io.Reader) {
	r.in = in
}

// SetOutput sets a custom output writer.
func (r *REPL) SetOutput(out io.Writer) {
	r.out = out
}

// Start reads and executes commands until exit or EOF.
func (r *REPL) Start() {
	r.printBanner()
	r.printHelp()
	fmt.Fprintln(r.out)

	reader := bufio.NewReader(r.in)
	for {
		fmt.Fprint(r.out, ui.ColorGreen()+"mag> "+ui.ColorReset())

		input, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			fmt.Fprintf(r.out, "%sRead error: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
			continue
		}
		if line := strings.TrimSpace(input); line != "" {
			if !r.processCommand(line) {
				return
			}
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(r.out, "\nGoodbye!")
			return
		}
	}
}

func (r *REPL) printBanner() {
	fmt.Fprintf(r.out, "\n%s╔══════════════════════════════════════════════════════════╗%s\n", ui.ColorCyan(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s║%s     %s🔢 magcalc - Interactive Mode%s                         %s║%s\n",
		ui.ColorCyan(), ui.ColorReset(), ui.ColorBold(), ui.ColorReset(), ui.ColorCyan(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s╚══════════════════════════════════════════════════════════╝%s\n\n", ui.ColorCyan(), ui.ColorReset())
}

func (r *REPL) printHelp() {
	fmt.Fprintf(r.out, "%sAvailable commands:%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %s<op> <a> [b]%s     - Evaluate an operation (%s)\n", ui.ColorYellow(), ui.ColorReset(), strings.Join(config.Operations, ", "))
	fmt.Fprintf(r.out, "  %sthreshold [n]%s    - Show or set the Karatsuba threshold in words\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %shex%s              - Toggle hexadecimal display\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sstats%s            - Display allocator statistics\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sstatus%s           - Display current configuration\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %shelp%s             - Display this help\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sexit%s / %squit%s      - Exit interactive mode\n", ui.ColorYellow(), ui.ColorReset(), ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "Operands are decimal or 0x-prefixed hexadecimal; shift counts are signed.\n")
}

// processCommand executes one input line and reports whether the session
// continues.
func (r *REPL) processCommand(input string) bool {
	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch {
	case slices.Contains(config.Operations, cmd):
		r.evaluate(cmd, args)
	case cmd == "threshold" || cmd == "t":
		r.cmdThreshold(args)
	case cmd == "hex":
		r.cmdHex()
	case cmd == "stats":
		r.cmdStats()
	case cmd == "status" || cmd == "st":
		r.cmdStatus()
	case cmd == "help" || cmd == "h" || cmd == "?":
		r.printHelp()
	case cmd == "exit" || cmd == "quit" || cmd == "q":
		fmt.Fprintf(r.out, "%sGoodbye!%s\n", ui.ColorGreen(), ui.ColorReset())
		return false
	default:
		fmt.Fprintf(r.out, "%sUnknown command: %s%s\n", ui.ColorRed(), cmd, ui.ColorReset())
		fmt.Fprintf(r.out, "Type %shelp%s to see available commands.\n", ui.ColorYellow(), ui.ColorReset())
	}
	return true
}

// evaluate runs op on a one-off job and prints the outcome.
func (r *REPL) evaluate(op string, args []string) {
	if want, _ := config.OperationArity(op); len(args) != want {
		fmt.Fprintf(r.out, "%sUsage: %s takes %d operand(s)%s\n", ui.ColorRed(), op, want, ui.ColorReset())
		return
	}

	ctx := context.Background()
	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	jr := r.engine.Run(ctx, orchestration.Job{ID: "repl", Op: op, Operands: args})
	if jr.Err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ui.ColorRed(), jr.Err, ui.ColorReset())
		return
	}
	if jr.Mismatch != nil {
		fmt.Fprintf(r.out, "%s✗ %v%s\n", ui.ColorRed(), jr.Mismatch, ui.ColorReset())
	}
	DisplayResult(jr.Result, r.config.HexOutput, r.config.Verbose, r.out)
	fmt.Fprintln(r.out)
}

// cmdThreshold shows or replaces the Karatsuba threshold of the engine.
func (r *REPL) cmdThreshold(args []string) {
	calc := r.engine.Calculator()
	if len(args) == 0 {
		fmt.Fprintf(r.out, "Karatsuba threshold: %s%d%s words\n", ui.ColorCyan(), calc.KaratsubaThreshold(), ui.ColorReset())
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		fmt.Fprintf(r.out, "%sInvalid threshold: %s%s\n", ui.ColorRed(), args[0], ui.ColorReset())
		return
	}
	calc = calc.WithOptions(magnitude.WithKaratsubaThreshold(n))
	r.engine = orchestration.NewEngine(calc, r.engine.Invoker(), r.engine.Verifies())
	fmt.Fprintf(r.out, "Karatsuba threshold set to: %s%d%s words\n", ui.ColorGreen(), calc.KaratsubaThreshold(), ui.ColorReset())
}

func (r *REPL) cmdHex() {
	r.config.HexOutput = !r.config.HexOutput
	status := "disabled"
	if r.config.HexOutput {
		status = "enabled"
	}
	fmt.Fprintf(r.out, "Hexadecimal display: %s%s%s\n", ui.ColorGreen(), status, ui.ColorReset())
}

func (r *REPL) cmdStats() {
	src, ok := r.engine.Calculator().Allocator().(statsSource)
	if !ok {
		fmt.Fprintf(r.out, "%sThe allocator does not keep statistics.%s\n", ui.ColorYellow(), ui.ColorReset())
		return
	}
	DisplayAllocatorStats(src.Stats(), r.out)
	fmt.Fprintln(r.out)
}

func (r *REPL) cmdStatus() {
	fmt.Fprintf(r.out, "\n%sCurrent configuration:%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(r.out, "  Karatsuba:      %s%d%s words\n", ui.ColorCyan(), r.engine.Calculator().KaratsubaThreshold(), ui.ColorReset())
	fmt.Fprintf(r.out, "  Timeout:        %s%s%s\n", ui.ColorCyan(), r.config.Timeout, ui.ColorReset())
	fmt.Fprintf(r.out, "  Verification:   %s%s%s\n", ui.ColorCyan(), onOff(r.engine.Verifies()), ui.ColorReset())
	fmt.Fprintf(r.out, "  Hexadecimal:    %s%s%s\n", ui.ColorCyan(), onOff(r.config.HexOutput), ui.ColorReset())
	fmt.Fprintln(r.out)
}
