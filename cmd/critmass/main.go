// Command critmass computes the critical mass at which K(m) < t(m) switches
// from false to true, and prints it with K and the Schwarzschild radius.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/agbru/critmass/internal/app"
	apperrors "github.com/agbru/critmass/internal/errors"
)

func main() {
	if app.HasVersionFlag(os.Args[1:]) {
		if err := app.PrintVersion(os.Stdout, app.HasJSONFlag(os.Args[1:])); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(apperrors.ExitErrorGeneric)
		}
		os.Exit(apperrors.ExitSuccess)
	}

	application, err := app.New(os.Args, os.Stderr)
	if err != nil {
		if app.IsHelpError(err) {
			os.Exit(apperrors.ExitSuccess)
		}
		os.Exit(apperrors.ExitErrorConfig)
	}

	os.Exit(application.Run(context.Background(), os.Stdout))
}
