package app

import (
	"fmt"
	"io"
	"runtime"
)

// Build metadata, set at link time:
//
//	go build -ldflags "-X github.com/agbru/magcalc/internal/app.Version=v1.2.0"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// HasVersionFlag reports whether args request the version, which is
// answered before any other flag is parsed.
func HasVersionFlag(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "-version", "--version", "-V":
			return true
		}
	}
	return false
}

// PrintVersion writes the build metadata to out.
func PrintVersion(out io.Writer) {
	fmt.Fprintf(out, "magcalc %s\n", Version)
	fmt.Fprintf(out, "  commit:     %s\n", Commit)
	fmt.Fprintf(out, "  built:      %s\n", BuildDate)
	fmt.Fprintf(out, "  go version: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
