// Command rsql parses, compiles and evaluates RSQL/FIQL filter queries.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/rsql/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err == nil {
		return
	}

	// Commands that already reported the failure return an ExitError;
	// anything else (flag parsing, unknown command) is printed here.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCommandError)
	}
	os.Exit(exitErr.Code)
}
