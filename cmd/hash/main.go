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
	"Usage: Must provide zero or two arguments [self_port, persistence_server]",
	"    Defaults: self_port => 8080, persistence_server => localhost:8081",
}

func newCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "hash [self_port persistence_server]",
		Short:   "Serve SHA-256 digests of values fetched from the counter service",
		Args:    cli.ArgCounts(usage, 0, 2),
		Version: Version,
		RunE:    run,
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if len(args) == 2 {
		if cfg.Port, err = config.ParsePort(args[0]); err != nil {
			return err
		}
		cfg.PersistenceAddr = args[1]
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	applog.SetService(app.HashName, Version)
	return app.NewHash(cfg, Version).Run(cmd.Context())
}

func main() {
	os.Exit(cli.Execute(newCommand()))
}
