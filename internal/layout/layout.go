package layout

import (
	"fmt"
	"io/fs"
)

// Result is the resolved page layout of a project.
type Result struct {
	Entries   Entries
	Chunks    ChunkSet
	Templates []Template
	// Pages with a template but no script or a script but no template
	Warnings []string
}

// Resolve scans scripts and then templates under the pages root of fsys.
// Mismatched pages are reported as warnings and never fail the build.
func Resolve(fsys fs.FS, conv Convention) (*Result, error) {
	entries, chunks, err := DiscoverEntries(fsys, conv)
	if err != nil {
		return nil, err
	}

	templates, err := DiscoverTemplates(fsys, conv)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Entries:   entries,
		Chunks:    chunks,
		Templates: templates,
	}

	withTemplate := make(map[string]bool, len(templates))
	for _, tpl := range templates {
		withTemplate[tpl.Name] = true
		if !chunks.Has(tpl.Name) {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("template %s has no page script, no chunks will be injected", tpl.Path))
		}
	}

	for _, name := range entries.Names() {
		if !withTemplate[name] {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("script %s has no page template, no html will be generated", entries.scripts[name]))
		}
	}

	return res, nil
}
