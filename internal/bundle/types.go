package bundle

import (
	"regexp"

	"github.com/wolfeidau/pagepack/internal/config"
)

// Shared chunks emitted ahead of every page chunk
const (
	ChunkRuntime = "runtime"
	ChunkVendor  = "vendor"
)

// Config is the assembled bundler configuration for one build.
type Config struct {
	Mode      config.Mode         `json:"mode" yaml:"mode"`
	Context   string              `json:"context" yaml:"context"`
	Entry     map[string][]string `json:"entry" yaml:"entry"`
	Output    Output              `json:"output" yaml:"output"`
	Resolve   Resolve             `json:"resolve" yaml:"resolve"`
	Rules     []Rule              `json:"rules" yaml:"rules"`
	Plugins   []Plugin            `json:"plugins" yaml:"plugins"`
	DevServer DevServer           `json:"devServer" yaml:"devServer"`
	Devtool   string              `json:"devtool,omitempty" yaml:"devtool,omitempty"`
	Options   config.Options      `json:"options" yaml:"options"`
	Compress  bool                `json:"compress,omitempty" yaml:"compress,omitempty"`
}

type Output struct {
	Path       string `json:"path" yaml:"path"`
	Filename   string `json:"filename" yaml:"filename"`
	PublicPath string `json:"publicPath,omitempty" yaml:"publicPath,omitempty"`
}

type Resolve struct {
	Extensions []string          `json:"extensions" yaml:"extensions"`
	Alias      map[string]string `json:"alias" yaml:"alias"`
}

type DevServer struct {
	Host               string `json:"host" yaml:"host"`
	Port               int    `json:"port" yaml:"port"`
	HistoryAPIFallback bool   `json:"historyApiFallback" yaml:"historyApiFallback"`
	NoInfo             bool   `json:"noInfo" yaml:"noInfo"`
}

// Rule maps files matching Test to a loader. Extensions lists the file
// extensions Test can match.
type Rule struct {
	Name       string      `json:"name" yaml:"name"`
	Extensions []string    `json:"extensions" yaml:"extensions"`
	Test       string      `json:"test" yaml:"test"`
	Loader     string      `json:"loader" yaml:"loader"`
	Chain      []string    `json:"chain,omitempty" yaml:"chain,omitempty"`
	Exclude    string      `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	Include    string      `json:"include,omitempty" yaml:"include,omitempty"`
	Options    RuleOptions `json:"options,omitzero" yaml:"options,omitempty"`
}

type RuleOptions struct {
	// Style rules extract into the page stylesheet instead of a style tag
	Extract  bool `json:"extract,omitempty" yaml:"extract,omitempty"`
	Minimize bool `json:"minimize,omitempty" yaml:"minimize,omitempty"`
	// Files below Limit bytes are inlined as data URLs
	Limit int      `json:"limit,omitempty" yaml:"limit,omitempty"`
	Name  string   `json:"name,omitempty" yaml:"name,omitempty"`
	Root  string   `json:"root,omitempty" yaml:"root,omitempty"`
	Attrs []string `json:"attrs,omitempty" yaml:"attrs,omitempty"`
}

// Matcher is a compiled Rule.
type Matcher struct {
	Rule    Rule
	test    *regexp.Regexp
	exclude *regexp.Regexp
	include *regexp.Regexp
}

// Compile prepares the rule expressions for matching.
func (r Rule) Compile() (*Matcher, error) {
	m := &Matcher{Rule: r}

	var err error
	if m.test, err = regexp.Compile(r.Test); err != nil {
		return nil, err
	}
	if r.Exclude != "" {
		if m.exclude, err = regexp.Compile(r.Exclude); err != nil {
			return nil, err
		}
	}
	if r.Include != "" {
		if m.include, err = regexp.Compile(r.Include); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Match reports whether the rule applies to a module path.
func (m *Matcher) Match(path string) bool {
	if !m.test.MatchString(path) {
		return false
	}
	if m.exclude != nil && m.exclude.MatchString(path) {
		return false
	}
	if m.include != nil && !m.include.MatchString(path) {
		return false
	}
	return true
}

type PluginKind string

const (
	PluginDefine       PluginKind = "define"
	PluginCommonsChunk PluginKind = "commons-chunk"
	PluginExtractCSS   PluginKind = "extract-css"
	PluginHTML         PluginKind = "html"
	PluginMinify       PluginKind = "minify"
)

// Plugin is one build step, exactly one of the payload fields is set for Kind.
type Plugin struct {
	Kind       PluginKind        `json:"kind" yaml:"kind"`
	Define     map[string]string `json:"define,omitempty" yaml:"define,omitempty"`
	Chunk      *CommonsChunk     `json:"chunk,omitempty" yaml:"chunk,omitempty"`
	ExtractCSS *ExtractCSS       `json:"extractCss,omitempty" yaml:"extractCss,omitempty"`
	HTML       *HTMLDirective    `json:"html,omitempty" yaml:"html,omitempty"`
	Minify     *Minify           `json:"minify,omitempty" yaml:"minify,omitempty"`
}

// CommonsChunk moves shared modules whose path contains one of Sources into
// the named chunk. A chunk without sources only holds the loader runtime.
type CommonsChunk struct {
	Name    string   `json:"name" yaml:"name"`
	Sources []string `json:"sources,omitempty" yaml:"sources,omitempty"`
}

type ExtractCSS struct {
	Filename  string `json:"filename" yaml:"filename"`
	AllChunks bool   `json:"allChunks" yaml:"allChunks"`
}

// HTMLDirective generates one page from a template.
type HTMLDirective struct {
	Filename string   `json:"filename" yaml:"filename"`
	Template string   `json:"template" yaml:"template"`
	Inject   string   `json:"inject,omitempty" yaml:"inject,omitempty"`
	Chunks   []string `json:"chunks,omitempty" yaml:"chunks,omitempty"`
	Hash     bool     `json:"hash,omitempty" yaml:"hash,omitempty"`
}

type Minify struct {
	DropConsole  bool `json:"dropConsole" yaml:"dropConsole"`
	DropDebugger bool `json:"dropDebugger" yaml:"dropDebugger"`
	SourceMap    bool `json:"sourceMap" yaml:"sourceMap"`
}

// HTMLDirectives returns the page directives in plugin order.
func (c *Config) HTMLDirectives() []HTMLDirective {
	var directives []HTMLDirective
	for _, plugin := range c.Plugins {
		if plugin.Kind == PluginHTML && plugin.HTML != nil {
			directives = append(directives, *plugin.HTML)
		}
	}
	return directives
}

// CommonsChunks returns the shared chunk definitions in plugin order.
func (c *Config) CommonsChunks() []CommonsChunk {
	var chunks []CommonsChunk
	for _, plugin := range c.Plugins {
		if plugin.Kind == PluginCommonsChunk && plugin.Chunk != nil {
			chunks = append(chunks, *plugin.Chunk)
		}
	}
	return chunks
}

// Plugin returns the first plugin of a kind.
func (c *Config) Plugin(kind PluginKind) (Plugin, bool) {
	for _, plugin := range c.Plugins {
		if plugin.Kind == kind {
			return plugin, true
		}
	}
	return Plugin{}, false
}
