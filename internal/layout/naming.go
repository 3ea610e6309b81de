package layout

import "strings"

// Convention describes where pages live and how their files are named.
type Convention struct {
	// Directory holding all sources, relative to the project root (e.g. "src")
	SourceRoot string
	// Directory holding the pages, relative to SourceRoot (e.g. "views")
	PagesDir string
	// Suffix of page entry scripts
	ScriptExt string
	// Suffix of page templates
	TemplateExt string
	// Sub-folder name marking the application entry of a page
	Marker string
}

// DefaultConvention returns the src/views/<page>/app.{js,html} layout.
func DefaultConvention() Convention {
	return Convention{
		SourceRoot:  "src",
		PagesDir:    "views",
		ScriptExt:   ".js",
		TemplateExt: ".html",
		Marker:      "app",
	}
}

// PagesRoot is the pages directory relative to the project root.
func (c Convention) PagesRoot() string {
	return JoinSlash(c.SourceRoot, c.PagesDir)
}

// ScriptName normalizes a discovered script path into a page name.
//
//	./src/views/home/app.js -> home
func (c Convention) ScriptName(path string) string {
	name := StripRoot(path, c.PagesRoot())
	name = StripSuffix(name, c.ScriptExt)
	return StripMarker(name, c.Marker)
}

// TemplateName normalizes a discovered template path into a page name.
//
//	./src/views/home/app.html -> home
func (c Convention) TemplateName(path string) string {
	name := StripRoot(path, c.SourceRoot)
	name = StripSuffix(name, c.TemplateExt)
	name = StripRoot(name, c.PagesDir)
	return StripMarker(name, c.Marker)
}

// StripRoot removes a leading root directory. A leading "./" on either side is
// ignored and paths outside root are returned unchanged.
func StripRoot(path, root string) string {
	path = strings.TrimPrefix(path, "./")
	root = strings.Trim(strings.TrimPrefix(root, "./"), "/")
	if root == "" {
		return path
	}
	return strings.TrimPrefix(path, root+"/")
}

// StripSuffix removes the file extension suffix.
func StripSuffix(path, suffix string) string {
	return strings.TrimSuffix(path, suffix)
}

// StripMarker removes the first marker segment that follows a page segment,
// collapsing <page>/<marker> to <page>. A leading marker segment is part of
// the page name and is kept.
func StripMarker(path, marker string) string {
	if marker == "" {
		return path
	}

	segments := strings.Split(path, "/")
	for i := 1; i < len(segments); i++ {
		if segments[i] == marker {
			return strings.Join(append(segments[:i:i], segments[i+1:]...), "/")
		}
	}

	return path
}

// JoinSlash joins slash separated path parts, dropping "./" prefixes and
// empty parts.
func JoinSlash(parts ...string) string {
	var kept []string
	for _, part := range parts {
		part = strings.Trim(strings.TrimPrefix(part, "./"), "/")
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, "/")
}
