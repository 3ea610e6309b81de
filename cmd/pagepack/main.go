package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/pagepack/cmd/pagepack/internal/commands"
	"github.com/wolfeidau/pagepack/internal/config"
)

var (
	version = "dev"
	cli     struct {
		Build   commands.BuildCmd   `cmd:"" help:"Build every page into the output directory"`
		Serve   commands.ServeCmd   `cmd:"" help:"Build, serve and rebuild on change"`
		Inspect commands.InspectCmd `cmd:"" help:"Print the assembled bundler configuration"`
		Debug   bool                `help:"Enable debug mode."`
		Version kong.VersionFlag
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := kong.Parse(&cli,
		kong.Name("pagepack"),
		kong.Description("Multi-page front-end builds from a conventional source tree."),
		kong.Vars{
			"version":      version,
			"project_file": config.DefaultProjectFile,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
