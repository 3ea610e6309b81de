package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/pagepack/internal/assets"
)

type BuildCmd struct {
	ProjectFlags `embed:""`

	Clean bool `help:"remove the output directory before building" env:"PAGEPACK_CLEAN"`
}

func (c *BuildCmd) Run(ctx context.Context, globals *Globals) error {
	log := setupLogging(globals)

	log.Info().Str("version", globals.Version).Msg("Starting build")

	ws, err := c.load(log)
	if err != nil {
		return err
	}

	if c.Clean {
		log.Info().Str("dir", ws.config.Output.Path).Msg("Cleaning output directory")
		if err := os.RemoveAll(ws.config.Output.Path); err != nil {
			return fmt.Errorf("failed to clean output directory: %w", err)
		}
	}

	pipeline, err := assets.New(ws.config)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	_, err = build(ctx, log, pipeline)
	return err
}

func build(ctx context.Context, log zerolog.Logger, pipeline *assets.Pipeline) (*assets.Report, error) {
	report, err := pipeline.Build(ctx)
	if err != nil {
		var buildErr *assets.BuildError
		if errors.As(err, &buildErr) {
			for _, msg := range buildErr.Messages {
				log.Error().Msg(msg)
			}
		}
		return nil, fmt.Errorf("build failed: %w", err)
	}

	for _, page := range report.Pages {
		log.Debug().
			Str("page", page.Name).
			Str("html", page.HTML).
			Strs("scripts", page.Scripts).
			Strs("styles", page.Styles).
			Msg("Rendered page")
	}

	return report, nil
}
