package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orientplace/internal/cli"
	operr "github.com/matzehuels/orientplace/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, describe(err))
		os.Exit(exitCode(err))
	}
}

func run(ctx context.Context) error {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	// Apply the log level once flags are parsed.
	originalPreRun := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level := cli.LogInfo
		if verbose {
			level = cli.LogDebug
		}
		c.SetLogLevel(level)

		if originalPreRun != nil {
			return originalPreRun(cmd, args)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}

// describe prefixes coded errors with their code.
func describe(err error) string {
	if code := operr.GetCode(err); code != "" {
		return fmt.Sprintf("error [%s]: %v", code, err)
	}
	return fmt.Sprintf("error: %v", err)
}

// exitCode is 2 for rejected input and 1 for everything else.
func exitCode(err error) int {
	switch operr.GetCode(err) {
	case operr.ErrCodeInvalidInput, operr.ErrCodeInvalidGrid, operr.ErrCodeInvalidNet,
		operr.ErrCodeInvalidFormat, operr.ErrCodeInvalidPath, operr.ErrCodeMissingOrientation,
		operr.ErrCodeCoordinateOutOfRange, operr.ErrCodeFileNotFound:
		return 2
	}
	return 1
}
