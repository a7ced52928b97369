// Package main is the entry point for the specval CLI.
package main

import (
	"fmt"
	"os"

	"github.com/thoreinstein/specval/cmd/specval/commands"
	"github.com/thoreinstein/specval/internal/errors"
)

func main() {
	err := commands.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		var exitErr *errors.ExitError
		if errors.As(err, &exitErr) && exitErr.Suggestion != "" {
			fmt.Fprintln(os.Stderr, exitErr.Suggestion)
		}
	}
	os.Exit(errors.ExitCode(err))
}
