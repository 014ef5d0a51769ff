package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/janisto/huma-hashchain/internal/app"
	"github.com/janisto/huma-hashchain/internal/platform/cli"
	"github.com/janisto/huma-hashchain/internal/platform/config"
	applog "github.com/janisto/huma-hashchain/internal/platform/logging"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

var usage = []string{
	"Usage: Must provide zero or one argument [port]",
	"    Default: port => 8080",
}

func newCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "counter [port]",
		Short:   "Serve a process-local counter as {\"data\": n} on every GET path",
		Args:    cli.ArgCounts(usage, 0, 1),
		Version: Version,
		RunE:    run,
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if len(args) == 1 {
		if cfg.Port, err = config.ParsePort(args[0]); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	applog.SetService(app.CounterName, Version)
	return app.NewCounter(cfg, Version).Run(cmd.Context())
}

func main() {
	os.Exit(cli.Execute(newCommand()))
}
