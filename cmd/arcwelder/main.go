// Package main provides the arcwelder CLI entrypoint.
//
// Usage:
//
//	arcwelder <command> [options] SOURCE [TARGET]
//
// Exit codes:
//   - 0: success
//   - 1: configuration error
//   - 2: read or write failure
//   - 3: cancelled
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Version and commit are set via ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
)

const (
	exitConfig    = 1
	exitIO        = 2
	exitCancelled = 3
)

func newApp() *cli.App {
	return &cli.App{
		Name:           "arcwelder",
		Usage:          "Convert G0/G1 moves to G2/G3 arcs and back",
		Version:        fmt.Sprintf("%s (commit: %s)", version, commit),
		ExitErrHandler: exitErrHandler,
		Commands: []*cli.Command{
			weldCommand(),
			straightenCommand(),
			firmwareCommand(),
			serveCommand(),
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		// ExitErrHandler already handled the exit for cli.ExitCoder errors.
		os.Exit(exitConfig)
	}
}

// exitErrHandler handles errors from the CLI, preserving exit codes from cli.Exit().
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}

	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()

		// cli.Exit("", N).Error() returns "exit status N", so skip those
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(code)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(exitConfig)
}
