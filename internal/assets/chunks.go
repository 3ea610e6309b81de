package assets

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/wolfeidau/pagepack/internal/bundle"
)

var errNotBuilt = errors.New("assets not built yet, call Build() first")

// PageAssets holds the output files of a page relative to the output dir, in
// the order they must load.
type PageAssets struct {
	Scripts []string
	Styles  []string
}

// chunkAssets resolves a chunk list such as [runtime vendor home] to output
// files. Shared chunks imported by the page are assigned to the first commons
// chunk whose sources match one of their inputs, or to the commons chunk
// without sources. Callers hold p.mu.
func (p *Pipeline) chunkAssets(chunks []string) (PageAssets, error) {
	if p.metadata == nil {
		return PageAssets{}, errNotBuilt
	}

	commons := p.config.CommonsChunks()
	isCommons := make(map[string]bool, len(commons))
	for _, chunk := range commons {
		isCommons[chunk.Name] = true
	}

	var (
		pages   []string
		entries = map[string]OutputInfo{}
		shared  = map[string][]string{}
	)

	for _, name := range chunks {
		if isCommons[name] {
			continue
		}

		key := p.outputKey(name + ".js")
		info, ok := p.metadata.Outputs[key]
		if !ok {
			return PageAssets{}, fmt.Errorf("chunk %s not found in build output", name)
		}
		pages = append(pages, name)
		entries[name] = info

		visited := map[string]bool{key: true}
		var deps []string
		p.addDependencies(info, &deps, visited)
		for _, dep := range deps {
			owner := classifyChunk(p.metadata.Outputs[dep], commons)
			shared[owner] = appendUnique(shared[owner], dep)
		}
	}

	var assets PageAssets
	for _, name := range chunks {
		if isCommons[name] {
			assets.Scripts = appendUnique(assets.Scripts, p.outputFiles(shared[name])...)
			continue
		}

		// shared chunks no commons chunk claims still load before the page
		assets.Scripts = appendUnique(assets.Scripts, p.outputFiles(shared[""])...)

		info := entries[name]
		assets.Scripts = appendUnique(assets.Scripts, p.outputFile(p.outputKey(name+".js")))
		if info.CSSBundle != "" {
			assets.Styles = appendUnique(assets.Styles, p.outputFile(info.CSSBundle))
		}
	}

	if len(pages) == 0 {
		return PageAssets{}, errors.New("chunk list names no page chunk")
	}

	return assets, nil
}

// addDependencies walks static imports depth first.
func (p *Pipeline) addDependencies(output OutputInfo, scripts *[]string, visited map[string]bool) {
	for _, imp := range output.Imports {
		if imp.Kind == "dynamic-import" || visited[imp.Path] {
			continue
		}
		visited[imp.Path] = true

		chunkInfo, exists := p.metadata.Outputs[imp.Path]
		if !exists {
			continue
		}
		*scripts = append(*scripts, imp.Path)
		p.addDependencies(chunkInfo, scripts, visited)
	}
}

func classifyChunk(info OutputInfo, commons []bundle.CommonsChunk) string {
	for _, chunk := range commons {
		for _, source := range chunk.Sources {
			for input := range info.Inputs {
				if strings.Contains(input, source) {
					return chunk.Name
				}
			}
		}
	}
	for _, chunk := range commons {
		if len(chunk.Sources) == 0 {
			return chunk.Name
		}
	}
	return ""
}

// outputKey converts a file name in the output dir to its metafile key.
func (p *Pipeline) outputKey(name string) string {
	return relPath(p.config.Context, filepath.Join(p.config.Output.Path, filepath.FromSlash(name)))
}

// outputFile converts a metafile key to a path relative to the output dir.
func (p *Pipeline) outputFile(key string) string {
	return relPath(p.config.Output.Path, filepath.Join(p.config.Context, filepath.FromSlash(key)))
}

func (p *Pipeline) outputFiles(keys []string) []string {
	files := make([]string, 0, len(keys))
	for _, key := range keys {
		files = append(files, p.outputFile(key))
	}
	return files
}

func appendUnique(list []string, values ...string) []string {
	for _, value := range values {
		found := false
		for _, existing := range list {
			if existing == value {
				found = true
				break
			}
		}
		if !found {
			list = append(list, value)
		}
	}
	return list
}
