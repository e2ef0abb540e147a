package main

import (
	"fmt"
	"os"

	"github.com/curless/curless/internal/cli"
	"github.com/curless/curless/internal/output"
)

// Main is the entry point for the application
// It's exported to make it testable
func Main() int {
	if err := cli.Execute(); err != nil {
		noColor := output.ColorDisabled(os.Stderr, false)
		fmt.Fprintf(os.Stderr, "%s %v\n", output.ErrorIcon(noColor), err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(Main())
}
