package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/pagepack/internal/bundle"
)

const (
	metafileName = "meta.json"
	manifestName = "manifest.json"
)

// Build bundles every entry, renders the page templates and writes the build
// manifest. Rebuilds reuse the esbuild context created by the first call.
func (p *Pipeline) Build(ctx context.Context) (*Report, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	directives := p.config.HTMLDirectives()
	if len(p.config.Entry) == 0 && len(directives) == 0 {
		log.Warn().Str("dir", p.config.Context).Msg("No pages found, writing an empty manifest")
	}

	if err := os.MkdirAll(p.config.Output.Path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	report := &Report{
		BuildID: uuid.NewString(),
		Mode:    string(p.config.Mode),
	}

	// pages without scripts still get their html
	if len(p.config.Entry) > 0 {
		if err := p.bundle(ctx, report); err != nil {
			return nil, err
		}
	} else {
		p.metadata = &BuildMetadata{Outputs: map[string]OutputInfo{}}
		report.Hash = compilationHash(nil, nil)
	}

	for _, directive := range directives {
		page, err := p.renderPage(directive, report.Hash)
		if err != nil {
			return nil, err
		}
		report.Pages = append(report.Pages, page)
		report.Files = append(report.Files, page.HTML)
	}

	if p.config.Compress {
		compressed, err := compressFiles(p.config.Output.Path, report.Files)
		if err != nil {
			return nil, err
		}
		report.Files = append(report.Files, compressed...)
	}

	sort.Strings(report.Files)

	if err := pruneStale(p.config.Output.Path, report.Files); err != nil {
		return nil, err
	}

	if err := writeJSON(filepath.Join(p.config.Output.Path, manifestName), report); err != nil {
		return nil, fmt.Errorf("failed to write manifest: %w", err)
	}

	log.Info().
		Str("build_id", report.BuildID).
		Str("hash", report.Hash).
		Int("pages", len(report.Pages)).
		Int("files", len(report.Files)).
		Msg("Build complete")

	return report, nil
}

func (p *Pipeline) bundle(ctx context.Context, report *Report) error {
	if p.buildCtx == nil {
		opts, err := p.buildOptions()
		if err != nil {
			return err
		}

		buildCtx, ctxErr := api.Context(opts)
		if ctxErr != nil {
			return newBuildError(ctxErr.Errors)
		}
		p.buildCtx = buildCtx
	}

	log.Info().Strs("entrypoints", sortedKeys(p.config.Entry)).Msg("Building assets")

	done := make(chan struct{})
	defer close(done)
	go func(buildCtx api.BuildContext) {
		select {
		case <-ctx.Done():
			buildCtx.Cancel()
		case <-done:
		}
	}(p.buildCtx)

	result := p.buildCtx.Rebuild()

	if err := ctx.Err(); err != nil {
		return err
	}

	for _, msg := range result.Warnings {
		log.Warn().Str("warning", msg.Text).Msg("Build warning")
	}

	if len(result.Errors) > 0 {
		for _, msg := range result.Errors {
			log.Error().Str("error", msg.Text).Msg("Build error")
		}
		return newBuildError(result.Errors)
	}

	for _, file := range result.OutputFiles {
		log.Debug().Str("file", file.Path).Msg("Built file")
		if rel, err := filepath.Rel(p.config.Output.Path, file.Path); err == nil {
			report.Files = append(report.Files, filepath.ToSlash(rel))
		}
	}

	for _, file := range p.emitted.list() {
		if _, err := os.Stat(filepath.Join(p.config.Output.Path, filepath.FromSlash(file))); err == nil {
			report.Files = append(report.Files, file)
		}
	}

	if err := os.WriteFile(filepath.Join(p.config.Output.Path, metafileName), []byte(result.Metafile), 0o600); err != nil {
		return fmt.Errorf("failed to write metafile: %w", err)
	}

	var metadata BuildMetadata
	if err := json.Unmarshal([]byte(result.Metafile), &metadata); err != nil {
		return fmt.Errorf("failed to parse metafile: %w", err)
	}

	p.metadata = &metadata
	report.Hash = compilationHash(result.OutputFiles, []byte(result.Metafile))
	return nil
}

// buildOptions translates the assembled configuration into esbuild options.
func (p *Pipeline) buildOptions() (api.BuildOptions, error) {
	cfg := p.config

	entryPoints := make([]api.EntryPoint, 0, len(cfg.Entry))
	for _, name := range sortedKeys(cfg.Entry) {
		paths := cfg.Entry[name]
		if len(paths) != 1 {
			return api.BuildOptions{}, fmt.Errorf("entry %s must have exactly one script, got %d", name, len(paths))
		}
		entryPoints = append(entryPoints, api.EntryPoint{
			InputPath:  paths[0],
			OutputPath: name,
		})
	}

	alias := make(map[string]string, len(cfg.Resolve.Alias))
	for name, dir := range cfg.Resolve.Alias {
		rel, err := filepath.Rel(cfg.Context, dir)
		if err != nil {
			return api.BuildOptions{}, fmt.Errorf("alias %s: %w", name, err)
		}
		alias[name] = "./" + filepath.ToSlash(rel)
	}

	loaders, skipped := esbuildLoaders(cfg.Rules)
	for _, rule := range skipped {
		log.Debug().Str("rule", rule).Msg("No esbuild transformer for rule, imports of it will fail")
	}

	opts := api.BuildOptions{
		AbsWorkingDir:       cfg.Context,
		EntryPointsAdvanced: entryPoints,
		Bundle:              true,
		Splitting:           true,
		Write:               true,
		Format:              api.FormatESModule,
		Outdir:              cfg.Output.Path,
		ChunkNames:          "chunks/[name]-[hash]",
		PublicPath:          cfg.Output.PublicPath,
		ResolveExtensions:   cfg.Resolve.Extensions,
		Alias:               alias,
		Loader:              loaders,
		Plugins:             []api.Plugin{urlLoaderPlugin(cfg, p.urlRules, p.emitted)},
		MinifyWhitespace:    cfg.Options.Minify,
		MinifyIdentifiers:   cfg.Options.Minify,
		MinifySyntax:        cfg.Options.Minify,
		TreeShaking:         api.TreeShakingTrue,
		Sourcemap:           cond(cfg.Devtool != "", api.SourceMapInline, api.SourceMapNone),
		Metafile:            true,
		LogLevel:            api.LogLevelSilent,
	}

	if define, ok := cfg.Plugin(bundle.PluginDefine); ok {
		opts.Define = define.Define
	}

	if minify, ok := cfg.Plugin(bundle.PluginMinify); ok {
		if minify.Minify.DropConsole {
			opts.Drop |= api.DropConsole
		}
		if minify.Minify.DropDebugger {
			opts.Drop |= api.DropDebugger
		}
	}

	return opts, nil
}

// esbuildLoaders maps rules esbuild can execute natively to loaders by
// extension. url-loader rules are served by the plugin and rules needing a
// transformer esbuild lacks are returned as skipped.
func esbuildLoaders(rules []bundle.Rule) (map[string]api.Loader, []string) {
	loaders := map[string]api.Loader{}
	var skipped []string

	for _, rule := range rules {
		var loader api.Loader
		switch {
		case rule.Loader == bundle.LoaderScript:
			loader = api.LoaderJS
		case rule.Loader == bundle.LoaderStyle && len(rule.Chain) == 0:
			loader = api.LoaderCSS
		case rule.Loader == bundle.LoaderHTML:
			loader = api.LoaderText
		case rule.Loader == bundle.LoaderURL:
			continue
		default:
			skipped = append(skipped, rule.Name)
			continue
		}

		for _, ext := range rule.Extensions {
			loaders[ext] = loader
		}
	}

	return loaders, skipped
}

// pruneStale removes files listed by the previous manifest in dir that the
// current build no longer produces, such as chunks whose hash changed.
func pruneStale(dir string, current []string) error {
	data, err := os.ReadFile(filepath.Join(dir, manifestName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read previous manifest: %w", err)
	}

	var previous Report
	if err := json.Unmarshal(data, &previous); err != nil {
		log.Warn().Err(err).Msg("Ignoring unreadable previous manifest")
		return nil
	}

	keep := make(map[string]bool, len(current))
	for _, file := range current {
		keep[file] = true
	}

	for _, file := range previous.Files {
		if keep[file] || !filepath.IsLocal(filepath.FromSlash(file)) {
			continue
		}
		err := os.Remove(filepath.Join(dir, filepath.FromSlash(file)))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove stale file %s: %w", file, err)
		}
		log.Debug().Str("file", file).Msg("Removed stale file")
	}

	return nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func cond[T any](condition bool, trueVal, falseVal T) T {
	if condition {
		return trueVal
	}
	return falseVal
}
