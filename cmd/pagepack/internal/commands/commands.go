package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/wolfeidau/pagepack/internal/bundle"
	"github.com/wolfeidau/pagepack/internal/config"
	"github.com/wolfeidau/pagepack/internal/layout"
	"github.com/wolfeidau/pagepack/internal/logger"
)

type Globals struct {
	Debug   bool
	Version string
}

// setupLogging also replaces the global logger used by the asset pipeline.
func setupLogging(globals *Globals) zerolog.Logger {
	log := logger.Setup(globals.Debug)
	zlog.Logger = log
	return log
}

// ProjectFlags locate the project and select the build mode.
type ProjectFlags struct {
	Root   string `help:"project root directory" default:"." env:"PAGEPACK_ROOT"`
	Config string `help:"project file, relative to the root" default:"${project_file}" env:"PAGEPACK_CONFIG"`
	Mode   string `help:"build mode, exactly 'development' selects development" env:"NODE_ENV"`
}

// workspace is everything derived from the project before a build runs.
type workspace struct {
	root    string
	project config.Project
	options config.Options
	layout  *layout.Result
	config  *bundle.Config
}

func (f *ProjectFlags) load(log zerolog.Logger) (*workspace, error) {
	root, err := filepath.Abs(f.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}

	projectFile := f.Config
	if projectFile == "" {
		projectFile = config.DefaultProjectFile
	}
	if !filepath.IsAbs(projectFile) {
		projectFile = filepath.Join(root, projectFile)
	}

	// only the default project file may be missing
	optional := f.Config == "" || f.Config == config.DefaultProjectFile
	project, err := config.LoadProject(projectFile, optional)
	if err != nil {
		return nil, err
	}

	ws := &workspace{
		root:    root,
		project: project,
		options: config.NewOptions(config.ParseMode(f.Mode)),
	}

	log.Info().
		Str("mode", string(ws.options.Mode)).
		Bool("minify", ws.options.Minify).
		Bool("dev_server", ws.options.DevServer).
		Msg("Resolved build mode")

	if err := ws.resolve(log); err != nil {
		return nil, err
	}

	return ws, nil
}

// resolve scans the pages root and assembles the bundler configuration. It is
// called again on every rebuild so new or removed pages are picked up.
func (ws *workspace) resolve(log zerolog.Logger) error {
	res, err := layout.Resolve(os.DirFS(ws.root), ws.project.Convention())
	if err != nil {
		return fmt.Errorf("failed to resolve layout: %w", err)
	}

	for _, warning := range res.Warnings {
		log.Warn().Msg(warning)
	}

	log.Debug().
		Int("entries", res.Entries.Len()).
		Int("templates", len(res.Templates)).
		Msg("Resolved layout")

	ws.layout = res
	ws.config = bundle.Assemble(ws.root, res, ws.project, ws.options)

	return nil
}
