package commands

import (
	"context"
	"path/filepath"
	"reflect"
	"sync"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/pagepack/internal/assets"
	"github.com/wolfeidau/pagepack/internal/bundle"
	"github.com/wolfeidau/pagepack/internal/config"
	"github.com/wolfeidau/pagepack/internal/devserver"
)

type ServeCmd struct {
	ProjectFlags `embed:""`

	Host    string `help:"override the dev server host" env:"PAGEPACK_HOST"`
	Port    int    `help:"override the dev server port" env:"PAGEPACK_PORT"`
	NoWatch bool   `help:"do not rebuild when sources change"`
}

func (c *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	log := setupLogging(globals)

	// serving without a mode means development
	if c.Mode == "" {
		c.Mode = string(config.ModeDevelopment)
	}

	ws, err := c.load(log)
	if err != nil {
		return err
	}
	if !ws.options.DevServer {
		log.Warn().Str("mode", string(ws.options.Mode)).Msg("Serving a production build")
	}

	b := &rebuilder{ws: ws, log: log}
	defer b.close()

	if err := b.rebuild(ctx); err != nil {
		return err
	}

	cfg := devserver.Config{
		Host:      cond(c.Host != "", c.Host, ws.config.DevServer.Host),
		Port:      cond(c.Port != 0, c.Port, ws.config.DevServer.Port),
		OutputDir: ws.config.Output.Path,
		Ignore:    []string{ws.config.Output.Path},
	}
	if !c.NoWatch {
		cfg.WatchDirs = []string{filepath.Join(ws.root, ws.project.SourceRoot)}
		cfg.Rebuild = b.rebuild
	}

	return devserver.New(cfg, log).Run(ctx)
}

// rebuilder re-resolves the layout before every build and only replaces the
// pipeline when the pages changed, so edits reuse the esbuild context.
type rebuilder struct {
	ws       *workspace
	log      zerolog.Logger
	pipeline *assets.Pipeline
	mu       sync.Mutex
}

func (b *rebuilder) rebuild(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	previous := b.ws.config
	if b.pipeline != nil {
		if err := b.ws.resolve(b.log); err != nil {
			return err
		}
	}

	if b.pipeline == nil || pagesChanged(previous, b.ws.config) {
		if b.pipeline != nil {
			b.log.Info().Msg("Pages changed, recreating pipeline")
			b.pipeline.Close()
			b.pipeline = nil
		}
		pipeline, err := assets.New(b.ws.config)
		if err != nil {
			return err
		}
		b.pipeline = pipeline
	}

	_, err := build(ctx, b.log, b.pipeline)
	return err
}

func (b *rebuilder) close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pipeline != nil {
		b.pipeline.Close()
		b.pipeline = nil
	}
}

func pagesChanged(before, after *bundle.Config) bool {
	return !reflect.DeepEqual(before.Entry, after.Entry) ||
		!reflect.DeepEqual(before.HTMLDirectives(), after.HTMLDirectives())
}

func cond[T any](condition bool, trueVal, falseVal T) T {
	if condition {
		return trueVal
	}
	return falseVal
}
