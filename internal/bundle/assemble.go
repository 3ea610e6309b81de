package bundle

import (
	"encoding/json"
	"path/filepath"

	"github.com/wolfeidau/pagepack/internal/config"
	"github.com/wolfeidau/pagepack/internal/layout"
)

// InjectBody places generated script tags at the end of the document body.
const InjectBody = "body"

// BuildDirective creates the html directive for one template. Pages owning a
// chunk get the shared chunks followed by their own, in load order.
func BuildDirective(sourceRoot string, tpl layout.Template, chunks layout.ChunkSet, opts config.Options) HTMLDirective {
	directive := HTMLDirective{
		Filename: tpl.Name + ".html",
		Template: layout.JoinSlash(sourceRoot, tpl.Path),
		Hash:     opts.HashOutputs,
	}

	if chunks.Has(tpl.Name) {
		directive.Inject = InjectBody
		directive.Chunks = []string{ChunkRuntime, ChunkVendor, tpl.Name}
	}

	return directive
}

// Assemble builds the bundler configuration for a resolved layout. root is the
// absolute project directory.
func Assemble(root string, res *layout.Result, project config.Project, opts config.Options) *Config {
	cfg := &Config{
		Mode:    opts.Mode,
		Context: root,
		Entry:   res.Entries.Map(),
		Output: Output{
			Path:       filepath.Join(root, project.OutputDir),
			Filename:   "[name].js",
			PublicPath: opts.PublicPath,
		},
		Resolve: Resolve{
			Extensions: []string{".js", ".vue"},
			Alias:      make(map[string]string, len(project.Aliases)),
		},
		Rules: DefaultRules(root, project, opts),
		DevServer: DevServer{
			Host:               project.DevServer.Host,
			Port:               project.DevServer.Port,
			HistoryAPIFallback: false,
			NoInfo:             true,
		},
		Options:  opts,
		Compress: project.Compress,
	}

	for alias, dir := range project.Aliases {
		cfg.Resolve.Alias[alias] = filepath.Join(root, dir)
	}

	if opts.SourceMaps {
		cfg.Devtool = "eval-source-map"
	}

	cfg.Plugins = append(cfg.Plugins,
		Plugin{
			Kind:   PluginDefine,
			Define: map[string]string{"process.env.NODE_ENV": quote(string(opts.Mode))},
		},
		Plugin{
			Kind:  PluginCommonsChunk,
			Chunk: &CommonsChunk{Name: ChunkVendor, Sources: []string{"node_modules", "assets"}},
		},
		Plugin{
			Kind:  PluginCommonsChunk,
			Chunk: &CommonsChunk{Name: ChunkRuntime},
		},
		Plugin{
			Kind:       PluginExtractCSS,
			ExtractCSS: &ExtractCSS{Filename: "[name].css", AllChunks: true},
		},
	)

	for _, tpl := range res.Templates {
		directive := BuildDirective(project.SourceRoot, tpl, res.Chunks, opts)
		cfg.Plugins = append(cfg.Plugins, Plugin{Kind: PluginHTML, HTML: &directive})
	}

	if opts.Minify {
		cfg.Plugins = append(cfg.Plugins, Plugin{
			Kind: PluginMinify,
			Minify: &Minify{
				DropConsole:  opts.DropConsole,
				DropDebugger: true,
				SourceMap:    false,
			},
		})
	}

	return cfg
}

// Loader names understood by the asset pipeline
const (
	LoaderScript = "babel-loader"
	LoaderStyle  = "css-loader"
	LoaderHTML   = "html-loader"
	LoaderURL    = "url-loader"
	LoaderVue    = "vue-loader"
)

// DefaultRules returns the transformation rules keyed by file type.
func DefaultRules(root string, project config.Project, opts config.Options) []Rule {
	styleChain := []string{LoaderStyle, "autoprefixer-loader", "less-loader"}

	return []Rule{
		{
			Name:       "vue",
			Extensions: []string{".vue"},
			Test:       `\.vue$`,
			Loader:     LoaderVue,
			Chain:      styleChain,
			Options:    RuleOptions{Extract: true, Minimize: opts.Minify},
		},
		{
			Name:       "js",
			Extensions: []string{".js"},
			Test:       `\.js$`,
			Loader:     LoaderScript,
			Exclude:    `node_modules`,
		},
		{
			Name:       "css",
			Extensions: []string{".css"},
			Test:       `\.css$`,
			Loader:     LoaderStyle,
			Options:    RuleOptions{Extract: true, Minimize: opts.Minify},
		},
		{
			Name:       "less",
			Extensions: []string{".less"},
			Test:       `\.less$`,
			Loader:     LoaderStyle,
			Chain:      styleChain[1:],
			Options:    RuleOptions{Extract: true, Minimize: opts.Minify},
		},
		{
			Name:       "html",
			Extensions: []string{".html"},
			Test:       `\.html$`,
			Loader:     LoaderHTML,
			Options: RuleOptions{
				Root:  filepath.Join(root, project.SourceRoot),
				Attrs: []string{"img:src", "link:href"},
			},
		},
		{
			Name:       "images",
			Extensions: []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".svgz"},
			Test:       `\.(png|jpe?g|gif|svg|svgz)(\?.+)?$`,
			Loader:     LoaderURL,
			Exclude:    `iconfont\.svg`,
			Options:    RuleOptions{Limit: project.URLLimit, Name: "assets/img/[name].[ext]"},
		},
		{
			Name:       "fonts",
			Extensions: []string{".eot", ".ttf", ".woff", ".woff2", ".svg", ".svgz"},
			Test:       `\.(eot|ttf|woff|woff2|svg|svgz)(\?.+)?$`,
			Loader:     LoaderURL,
			Include:    `assets`,
			Options:    RuleOptions{Limit: project.URLLimit, Name: "assets/fonts/[name].[ext]"},
		},
	}
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
