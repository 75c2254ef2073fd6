// Command roulette picks a random item from one of your lists.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/roach88/roulette/internal/cli"
)

func main() {
	err := cli.NewRootCommand().ExecuteContext(context.Background())
	if err == nil {
		return
	}

	// ExitErrors have already been reported by the command's formatter;
	// anything else comes from cobra itself (bad flags, wrong arg count).
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCommandError)
	}
	os.Exit(exitErr.Code)
}
