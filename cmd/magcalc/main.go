// Command magcalc evaluates arbitrary-precision magnitude arithmetic from
// the command line, a batch file, an HTTP server or an interactive session.
package main

import (
	"context"
	"os"

	"github.com/agbru/magcalc/internal/app"
	apperrors "github.com/agbru/magcalc/internal/errors"
)

func main() {
	if app.HasVersionFlag(os.Args[1:]) {
		app.PrintVersion(os.Stdout)
		return
	}

	application, err := app.New(os.Args, os.Stderr)
	if err != nil {
		if app.IsHelpError(err) {
			os.Exit(0)
		}
		os.Exit(apperrors.ExitErrorConfig)
	}

	os.Exit(application.Run(context.Background(), os.Stdout))
}
