// Package main is the entry point for the aictl CLI.
package main

import (
	"fmt"
	"os"

	"github.com/jdmartin/aictl/cmd/aictl/commands"
	"github.com/jdmartin/aictl/internal/errors"
)

func main() {
	os.Exit(run())
}

// run executes the CLI and maps the failure category to an exit code.
func run() int {
	err := commands.Execute()
	if err == nil {
		return errors.ExitSuccess
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Suggestion != "" {
			fmt.Fprintln(os.Stderr, exitErr.Suggestion)
		}
		return exitErr.Code
	}
	return errors.ExitSystem
}
