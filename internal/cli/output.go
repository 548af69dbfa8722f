// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* functions write formatted output to an [io.Writer].
//     Examples: [DisplayResult], [DisplayQuietResult], [DisplayProgress].
//
//   - Format* functions return a formatted string without performing I/O.
//     Examples: [FormatQuietResult].
//
//   - Write* functions write data to files on the filesystem.
//     Examples: [WriteResultToFile].

package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agbru/magcalc/internal/format"
	"github.com/agbru/magcalc/internal/orchestration"
	"github.com/agbru/magcalc/internal/ui"
)

// OutputConfig holds configuration for result output.
type OutputConfig struct {
	// OutputFile is the path to save the result (empty for no file output).
	OutputFile string
	// Quiet prints the bare value only.
	Quiet bool
	// Verbose prints the full value even when it is long.
	Verbose bool
	// Hex prints magnitudes in hexadecimal.
	Hex bool
}

// WriteResultToFile writes an evaluation result with a short header to
// config.OutputFile, creating parent directories. It is a no-op when no
// output file is configured.
func WriteResultToFile(res orchestration.Result, operands []string, config OutputConfig) error {
	if config.OutputFile == "" {
		return nil
	}

	if dir := filepath.Dir(config.OutputFile); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(config.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	fmt.Fprintf(file, "# magcalc result\n")
	fmt.Fprintf(file, "# Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(file, "# Operation: %s %s\n", res.Op, strings.Join(operands, " "))
	fmt.Fprintf(file, "# Duration: %s\n", res.Duration)
	if !res.IsComparison() {
		fmt.Fprintf(file, "# Bits: %d\n", res.Value.BitLen())
		fmt.Fprintf(file, "# Words: %d\n", res.Value.Len())
	}
	fmt.Fprintf(file, "\n%s\n", res.Format(config.Hex))
	return file.Close()
}

// FormatQuietResult formats a result for quiet mode: the bare value.
func FormatQuietResult(res orchestration.Result, hex bool) string {
	return res.Format(hex)
}

// DisplayQuietResult prints a result in quiet mode.
func DisplayQuietResult(out io.Writer, res orchestration.Result, hex bool) {
	fmt.Fprintln(out, FormatQuietResult(res, hex))
}

// DisplayResult prints a result with its size and timing. Long decimal
// values are summarized unless verbose is set.
func DisplayResult(res orchestration.Result, hex, verbose bool, out io.Writer) {
	fmt.Fprintf(out, "\n%s--- Result ---%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(out, "Operation:  %s%s%s\n", ui.ColorMagenta(), res.Op, ui.ColorReset())
	fmt.Fprintf(out, "Time:       %s%s%s\n", ui.ColorGreen(), format.FormatExecutionDuration(res.Duration), ui.ColorReset())

	if res.IsComparison() {
		fmt.Fprintf(out, "Comparison: %s%d%s\n", ui.ColorCyan(), res.Sign, ui.ColorReset())
		return
	}

	fmt.Fprintf(out, "Size:       %s%d%s bits, %s%d%s words\n",
		ui.ColorCyan(), res.Value.BitLen(), ui.ColorReset(),
		ui.ColorCyan(), res.Value.Len(), ui.ColorReset())

	value := res.Format(hex)
	switch {
	case hex || verbose || len(value) <= TruncationLimit:
		if !hex {
			value = format.FormatNumberString(value)
		}
		fmt.Fprintf(out, "Value:      %s%s%s\n", ui.ColorGreen(), value, ui.ColorReset())
	default:
		fmt.Fprintf(out, "Value:      %s%s%s (truncated)\n", ui.ColorGreen(), format.FormatDigits(value, 2*DisplayEdges), ui.ColorReset())
		fmt.Fprintf(out, "%sTip: use -v to print the full value or -hex for hexadecimal.%s\n", ui.ColorDim(), ui.ColorReset())
	}
}

// DisplayResultWithConfig prints res according to config and saves it when
// an output file is configured.
func DisplayResultWithConfig(out io.Writer, res orchestration.Result, operands []string, config OutputConfig) error {
	if config.Quiet {
		DisplayQuietResult(out, res, config.Hex)
	} else {
		DisplayResult(res, config.Hex, config.Verbose, out)
	}

	if config.OutputFile != "" {
		if err := WriteResultToFile(res, operands, config); err != nil {
			return err
		}
		if !config.Quiet {
			fmt.Fprintf(out, "\n%s✓ Result saved to: %s%s%s\n",
				ui.ColorGreen(), ui.ColorCyan(), config.OutputFile, ui.ColorReset())
		}
	}
	return nil
}
