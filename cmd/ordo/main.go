// Command ordo compiles and checks declarative listener manifests.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/ordo/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err == nil {
		return
	}

	// commands report their own failures; anything else is a usage error
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCommandError)
	}
	os.Exit(exitErr.Code)
}
