package layout

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"sort"

	"github.com/gobwas/glob"
)

// Entries maps a page name to the single script bundled for it.
type Entries struct {
	scripts map[string]string
}

// Names returns the page names in lexical order.
func (e Entries) Names() []string {
	names := make([]string, 0, len(e.scripts))
	for name := range e.scripts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Paths returns the entry list for a page, nil when the page has no script.
func (e Entries) Paths(name string) []string {
	script, ok := e.scripts[name]
	if !ok {
		return nil
	}
	return []string{script}
}

func (e Entries) Len() int {
	return len(e.scripts)
}

// Map returns a copy in the name -> [script] shape bundlers expect.
func (e Entries) Map() map[string][]string {
	out := make(map[string][]string, len(e.scripts))
	for name, script := range e.scripts {
		out[name] = []string{script}
	}
	return out
}

// ChunkSet holds the pages that own a script chunk.
type ChunkSet struct {
	names map[string]struct{}
}

func (c ChunkSet) Has(name string) bool {
	_, ok := c.names[name]
	return ok
}

func (c ChunkSet) Len() int {
	return len(c.names)
}

// Names returns the chunk names in lexical order.
func (c ChunkSet) Names() []string {
	names := make([]string, 0, len(c.names))
	for name := range c.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewChunkSet builds a set from names, mostly useful in tests.
func NewChunkSet(names ...string) ChunkSet {
	set := ChunkSet{names: make(map[string]struct{}, len(names))}
	for _, name := range names {
		set.names[name] = struct{}{}
	}
	return set
}

// Template is a discovered page template.
type Template struct {
	// Normalized page name, also the output file stem
	Name string
	// Template path relative to the source root (e.g. views/home/app.html)
	Path string
}

// DiscoverEntries scans the pages root for scripts. Every page gets exactly one
// entry and a chunk of the same name.
func DiscoverEntries(fsys fs.FS, conv Convention) (Entries, ChunkSet, error) {
	paths, err := scan(fsys, conv.PagesRoot(), conv.ScriptExt)
	if err != nil {
		return Entries{}, ChunkSet{}, fmt.Errorf("failed to scan page scripts: %w", err)
	}

	entries := Entries{scripts: make(map[string]string, len(paths))}
	chunks := ChunkSet{names: make(map[string]struct{}, len(paths))}

	for _, path := range paths {
		script := "./" + path
		name := conv.ScriptName(script)

		if previous, exists := entries.scripts[name]; exists {
			return Entries{}, ChunkSet{}, &DuplicatePageError{
				Kind:   "script",
				Name:   name,
				First:  previous,
				Second: script,
			}
		}

		entries.scripts[name] = script
		chunks.names[name] = struct{}{}
	}

	return entries, chunks, nil
}

// DiscoverTemplates scans the pages root for templates.
func DiscoverTemplates(fsys fs.FS, conv Convention) ([]Template, error) {
	paths, err := scan(fsys, conv.PagesRoot(), conv.TemplateExt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan page templates: %w", err)
	}

	templates := make([]Template, 0, len(paths))
	seen := make(map[string]string, len(paths))

	for _, path := range paths {
		name := conv.TemplateName(path)

		if previous, exists := seen[name]; exists {
			return nil, &DuplicatePageError{
				Kind:   "template",
				Name:   name,
				First:  previous,
				Second: path,
			}
		}
		seen[name] = path

		templates = append(templates, Template{
			Name: name,
			Path: StripRoot(path, conv.SourceRoot),
		})
	}

	return templates, nil
}

// scan returns the sorted slash separated paths under root ending in ext, at
// any depth. A missing root yields no paths.
func scan(fsys fs.FS, root, ext string) ([]string, error) {
	pattern, err := glob.Compile(scanPattern(root, ext), '/')
	if err != nil {
		return nil, err
	}

	var paths []string
	err = fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		if pattern.Match(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(paths)
	return paths, nil
}

func scanPattern(root, ext string) string {
	base := glob.QuoteMeta(root)
	suffix := "*" + glob.QuoteMeta(ext)
	return "{" + base + "/" + suffix + "," + base + "/**/" + suffix + "}"
}
