// Package cli runs the service commands: argument-count validation with
// fixed usage text, signal-bound contexts and process exit codes.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	applog "github.com/janisto/huma-hashchain/internal/platform/logging"
)

// UsageError reports a wrong number of positional arguments.
type UsageError struct {
	Lines []string
}

func (e *UsageError) Error() string {
	return strings.Join(e.Lines, "\n")
}

// ArgCounts accepts exactly one of the allowed argument counts and returns a
// UsageError carrying usage otherwise.
func ArgCounts(usage []string, allowed ...int) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if slices.Contains(allowed, len(args)) {
			return nil
		}
		return &UsageError{Lines: usage}
	}
}

// Execute runs cmd with a context cancelled on SIGINT or SIGTERM and returns
// the process exit code: 0 on success or signal, 1 on any error. Usage errors
// are printed to the command's stdout.
func Execute(cmd *cobra.Command) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return ExecuteContext(ctx, cmd, os.Args[1:]...)
}

// ExecuteContext is Execute with a caller-provided context and arguments.
func ExecuteContext(ctx context.Context, cmd *cobra.Command, args ...string) int {
	defer func() {
		// Syncing stdout fails with EINVAL on some platforms; nothing to report.
		_ = applog.Sync()
	}()
	if err := applog.Err(); err != nil {
		applog.LogError(ctx, "logger init error", err)
	}

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var usage *UsageError
	if errors.As(err, &usage) {
		for _, line := range usage.Lines {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return 1
	}
	applog.LogError(ctx, "command failed", err)
	return 1
}
