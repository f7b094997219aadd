package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/robertguss/viewfield/internal/cli"
)

var (
	newRootCommand = cli.NewRootCommand
	stderr         io.Writer = os.Stderr
	exitFn                    = os.Exit
)

func main() {
	exitFn(run())
}

// run returns the process exit code. Commands that already printed a JSON
// error envelope return an ExitError with no message.
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, err := newRootCommand(ctx)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if err := root.ExecuteContext(ctx); err != nil {
		var exitErr cli.ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintln(stderr, exitErr.Message)
			}
			return exitErr.Code
		}
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
