package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/agbru/magcalc/internal/config"
	"github.com/agbru/magcalc/internal/ui"
)

// PrintExecutionConfig displays the resolved execution configuration.
//
// Parameters:
//   - cfg: The application configuration.
//   - out: The writer for standard output.
func PrintExecutionConfig(cfg config.AppConfig, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	switch cfg.Mode {
	case config.ModeBatch:
		fmt.Fprintf(out, "Running batch %s%s%s with %s%d%s workers and a timeout of %s%s%s.\n",
			ui.ColorMagenta(), cfg.BatchFile, ui.ColorReset(),
			ui.ColorCyan(), cfg.Workers, ui.ColorReset(),
			ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	default:
		fmt.Fprintf(out, "Evaluating %s%s%s with a timeout of %s%s%s.\n",
			ui.ColorMagenta(), cfg.Op, ui.ColorReset(), ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	}
	features := "none"
	if f := config.CPUFeatures(); len(f) > 0 {
		features = strings.Join(f, ", ")
	}
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, Go %s%s%s, %s/%s (%s).\n",
		ui.ColorCyan(), runtime.NumCPU(), ui.ColorReset(), ui.ColorCyan(), runtime.Version(), ui.ColorReset(),
		runtime.GOOS, runtime.GOARCH, features)
	memoryLimit := cfg.MemoryLimit
	if memoryLimit == "" {
		memoryLimit = "unlimited"
	}
	fmt.Fprintf(out, "Kernel: Karatsuba from %s%d%s words, allocator limit %s%s%s, verification %s.\n",
		ui.ColorCyan(), cfg.KaratsubaThreshold, ui.ColorReset(),
		ui.ColorCyan(), memoryLimit, ui.ColorReset(), onOff(cfg.Verify))
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
