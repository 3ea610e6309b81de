package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/wolfeidau/pagepack/internal/bundle"
)

const assetNamespace = "url-asset"

// assetRef is attached to an import handled by a url-loader rule.
type assetRef struct {
	inline bool
	url    string
	// output file relative to the output dir, set when copied
	file string
}

// emittedAssets collects the files copied into the output dir. Entries live as
// long as the pipeline so rebuilds that skip a resolve still report them.
type emittedAssets struct {
	mu    sync.Mutex
	files map[string]struct{}
}

func newEmittedAssets() *emittedAssets {
	return &emittedAssets{files: map[string]struct{}{}}
}

func (e *emittedAssets) add(file string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.files[file] = struct{}{}
}

func (e *emittedAssets) list() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return sortedKeys(e.files)
}

// resolving marks the nested resolve issued by the plugin itself.
type resolving struct{}

// urlLoaderPlugin inlines files below a rule's limit as data URLs and copies
// larger ones to the rule's output name, exporting their public URL. In CSS
// url() references the copied file becomes an external URL.
func urlLoaderPlugin(cfg *bundle.Config, rules []*bundle.Matcher, emitted *emittedAssets) api.Plugin {
	var mu sync.Mutex

	return api.Plugin{
		Name: "url-loader",
		Setup: func(build api.PluginBuild) {
			if len(rules) == 0 {
				return
			}

			build.OnResolve(api.OnResolveOptions{Filter: extensionFilter(rules)},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					if _, nested := args.PluginData.(resolving); nested {
						return api.OnResolveResult{}, nil
					}

					resolved := build.Resolve(args.Path, api.ResolveOptions{
						Importer:   args.Importer,
						Namespace:  args.Namespace,
						ResolveDir: args.ResolveDir,
						Kind:       args.Kind,
						PluginData: resolving{},
					})
					if len(resolved.Errors) > 0 {
						return api.OnResolveResult{Errors: resolved.Errors}, nil
					}
					if resolved.External || resolved.Namespace != "file" {
						return api.OnResolveResult{
							Path:      resolved.Path,
							External:  resolved.External,
							Namespace: resolved.Namespace,
						}, nil
					}

					rule := matchRule(rules, relPath(cfg.Context, resolved.Path))
					if rule == nil {
						return api.OnResolveResult{Path: resolved.Path}, nil
					}

					mu.Lock()
					ref, err := emitAsset(cfg, rule, resolved.Path)
					mu.Unlock()
					if err != nil {
						return api.OnResolveResult{}, err
					}
					if ref.file != "" {
						emitted.add(ref.file)
					}

					if !ref.inline && args.Kind == api.ResolveCSSURLToken {
						return api.OnResolveResult{Path: ref.url, External: true}, nil
					}

					return api.OnResolveResult{
						Path:       resolved.Path,
						Namespace:  assetNamespace,
						PluginData: ref,
					}, nil
				})

			build.OnLoad(api.OnLoadOptions{Filter: ".*", Namespace: assetNamespace},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					ref, _ := args.PluginData.(assetRef)
					if ref.inline {
						data, err := os.ReadFile(args.Path)
						if err != nil {
							return api.OnLoadResult{}, err
						}
						contents := string(data)
						return api.OnLoadResult{Contents: &contents, Loader: api.LoaderDataURL}, nil
					}

					contents := "export default " + strconv.Quote(ref.url) + ";\n"
					return api.OnLoadResult{Contents: &contents, Loader: api.LoaderJS}, nil
				})
		},
	}
}

// emitAsset decides between inlining and copying the file to the output dir.
func emitAsset(cfg *bundle.Config, rule *bundle.Matcher, path string) (assetRef, error) {
	info, err := os.Stat(path)
	if err != nil {
		return assetRef{}, err
	}

	if info.Size() < int64(rule.Rule.Options.Limit) {
		return assetRef{inline: true}, nil
	}

	name := assetName(rule.Rule.Options.Name, path)
	dest := filepath.Join(cfg.Output.Path, filepath.FromSlash(name))

	data, err := os.ReadFile(path)
	if err != nil {
		return assetRef{}, err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return assetRef{}, fmt.Errorf("failed to create asset dir: %w", err)
	}
	if err := os.WriteFile(dest, data, 0o600); err != nil {
		return assetRef{}, fmt.Errorf("failed to copy asset: %w", err)
	}

	return assetRef{url: cfg.Output.PublicPath + name, file: name}, nil
}

// assetName expands [name] and [ext] in a rule's output name template.
func assetName(template, path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.NewReplacer(
		"[name]", strings.TrimSuffix(base, ext),
		"[ext]", strings.TrimPrefix(ext, "."),
	).Replace(template)
}

func matchRule(rules []*bundle.Matcher, path string) *bundle.Matcher {
	for _, rule := range rules {
		if rule.Match(path) {
			return rule
		}
	}
	return nil
}

// extensionFilter builds the esbuild filter covering every rule extension.
func extensionFilter(rules []*bundle.Matcher) string {
	seen := map[string]bool{}
	var exts []string
	for _, rule := range rules {
		for _, ext := range rule.Rule.Extensions {
			ext = strings.TrimPrefix(ext, ".")
			if !seen[ext] {
				seen[ext] = true
				exts = append(exts, regexp.QuoteMeta(ext))
			}
		}
	}
	sort.Strings(exts)
	return `\.(` + strings.Join(exts, "|") + `)(\?.*)?$`
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
