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

func newCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "greeting [port]",
		Short: "Serve Hello, World! on every GET path",
		// Arguments after the port are ignored, flag-like ones included.
		Args:    cobra.ArbitraryArgs,
		Version: Version,
		RunE:    run,
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if len(args) > 0 {
		if cfg.Port, err = config.ParsePort(args[0]); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	applog.SetService(app.GreetingName, Version)
	return app.NewGreeting(cfg, Version).Run(cmd.Context())
}

func main() {
	os.Exit(cli.Execute(newCommand()))
}
