// Command fibwindow evaluates terms of a second-order linear recurrence with
// a fixed two-term window, from the command line, an interactive session or
// an HTTP API.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/agbru/fibwindow/internal/app"
	apperrors "github.com/agbru/fibwindow/internal/errors"
)

func main() {
	if app.HasVersionFlag(os.Args[1:]) {
		app.PrintVersion(os.Stdout)
		os.Exit(apperrors.ExitSuccess)
	}

	application, err := app.New(os.Args, os.Stderr)
	if err != nil {
		if app.IsHelpError(err) {
			os.Exit(apperrors.ExitSuccess)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(apperrors.ExitCodeFor(err))
	}

	os.Exit(application.Run(context.Background(), os.Stdout))
}
