package calibration

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/agbru/magcalc/internal/format"
	"github.com/agbru/magcalc/internal/ui"
)

func thresholdLabel(threshold int) string {
	if threshold >= SchoolbookOnly {
		return "Schoolbook"
	}
	return fmt.Sprintf("%d words", threshold)
}

// printCalibrationResults formats and prints the calibration results table.
func printCalibrationResults(out io.Writer, results []calibrationResult, bestThreshold int) {
	fmt.Fprintf(out, "\n--- Calibration Summary ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "  %sThreshold%s    │ %sBest Time%s\n", ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset())
	fmt.Fprintf(tw, "  %s┼%s\n", strings.Repeat("─", 14), strings.Repeat("─", 25))
	for _, res := range results {
		durationStr := fmt.Sprintf("%sN/A%s", ui.ColorRed(), ui.ColorReset())
		if res.Err == nil {
			durationStr = format.FormatExecutionDuration(res.Duration)
		}
		highlight := ""
		if res.Threshold == bestThreshold && res.Err == nil {
			highlight = fmt.Sprintf(" %s(Optimal)%s", ui.ColorGreen(), ui.ColorReset())
		}
		fmt.Fprintf(tw, "  %s%-12s%s │ %s%s%s%s\n", ui.ColorCyan(), thresholdLabel(res.Threshold), ui.ColorReset(), ui.ColorYellow(), durationStr, ui.ColorReset(), highlight)
	}
	tw.Flush()
}

// printCalibrationOutput prints the threshold retained by a calibration.
func printCalibrationOutput(p *CalibrationProfile, out io.Writer) {
	fmt.Fprintf(out, "%sCalibration%s: Karatsuba=%s%s%s (%d-word operands, %s)\n",
		ui.ColorGreen(), ui.ColorReset(),
		ui.ColorYellow(), thresholdLabel(p.KaratsubaThreshold), ui.ColorReset(),
		p.OperandWords, p.CalibrationTime)
}
