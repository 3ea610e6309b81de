package layout

import (
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pageFS(files ...string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for _, file := range files {
		fsys[file] = &fstest.MapFile{Data: []byte("// " + file)}
	}
	return fsys
}

func TestDiscoverEntries(t *testing.T) {
	fsys := pageFS(
		"src/views/home/app.js",
		"src/views/about/app.js",
		"src/views/admin/users/app.js",
		"src/views/home/app.html",
		"src/components/button.js",
	)

	entries, chunks, err := DiscoverEntries(fsys, DefaultConvention())
	require.NoError(t, err)

	require.Equal(t, []string{"about", "admin/users", "home"}, entries.Names())
	require.Equal(t, []string{"./src/views/home/app.js"}, entries.Paths("home"))
	require.Nil(t, entries.Paths("button"))

	for name, paths := range entries.Map() {
		require.Len(t, paths, 1, name)
	}

	require.Equal(t, entries.Names(), chunks.Names())
	require.Equal(t, entries.Len(), chunks.Len())
	require.True(t, chunks.Has("admin/users"))
	require.False(t, chunks.Has("button"))
}

func TestDiscoverEntries_empty(t *testing.T) {
	entries, chunks, err := DiscoverEntries(pageFS("src/index.js"), DefaultConvention())
	require.NoError(t, err)
	require.Zero(t, entries.Len())
	require.Zero(t, chunks.Len())
	require.Empty(t, entries.Map())
}

func TestDiscoverEntries_missingPagesRoot(t *testing.T) {
	entries, _, err := DiscoverEntries(fstest.MapFS{}, DefaultConvention())
	require.NoError(t, err)
	require.Zero(t, entries.Len())
}

func TestDiscoverEntries_duplicate(t *testing.T) {
	fsys := pageFS(
		"src/views/home/app.js",
		"src/views/home.js",
	)

	_, _, err := DiscoverEntries(fsys, DefaultConvention())
	require.Error(t, err)
	require.ErrorIs(t, err, ErrDuplicatePage)

	var dupErr *DuplicatePageError
	require.True(t, errors.As(err, &dupErr))
	assert.Equal(t, "home", dupErr.Name)
	assert.Equal(t, "script", dupErr.Kind)
	assert.Equal(t, "./src/views/home.js", dupErr.First)
	assert.Equal(t, "./src/views/home/app.js", dupErr.Second)
	assert.Contains(t, err.Error(), "./src/views/home.js")
	assert.Contains(t, err.Error(), "./src/views/home/app.js")
}

func TestDiscoverEntries_walkError(t *testing.T) {
	_, _, err := DiscoverEntries(brokenFS{}, DefaultConvention())
	require.Error(t, err)
	require.ErrorIs(t, err, fs.ErrPermission)
}

func TestDiscoverTemplates(t *testing.T) {
	fsys := pageFS(
		"src/views/home/app.html",
		"src/views/orphan/app.html",
		"src/views/admin/users/app.html",
		"src/views/home/app.js",
		"src/index.html",
	)

	templates, err := DiscoverTemplates(fsys, DefaultConvention())
	require.NoError(t, err)

	require.Equal(t, []Template{
		{Name: "admin/users", Path: "views/admin/users/app.html"},
		{Name: "home", Path: "views/home/app.html"},
		{Name: "orphan", Path: "views/orphan/app.html"},
	}, templates)
}

func TestDiscoverTemplates_duplicate(t *testing.T) {
	fsys := pageFS(
		"src/views/home/app.html",
		"src/views/home.html",
	)

	_, err := DiscoverTemplates(fsys, DefaultConvention())
	require.ErrorIs(t, err, ErrDuplicatePage)
}

func TestResolve_scenarioA(t *testing.T) {
	fsys := pageFS(
		"src/views/home/app.js",
		"src/views/about/app.js",
		"src/views/home/app.html",
		"src/views/about/app.html",
	)

	res, err := Resolve(fsys, DefaultConvention())
	require.NoError(t, err)

	require.Equal(t, map[string][]string{
		"about": {"./src/views/about/app.js"},
		"home":  {"./src/views/home/app.js"},
	}, res.Entries.Map())
	require.Len(t, res.Templates, 2)
	require.Empty(t, res.Warnings)
}

func TestResolve_pageAtPagesRoot(t *testing.T) {
	fsys := pageFS(
		"src/views/app.js",
		"src/views/app.html",
	)

	res, err := Resolve(fsys, DefaultConvention())
	require.NoError(t, err)

	require.Equal(t, []string{"app"}, res.Entries.Names())
	require.Equal(t, []Template{{Name: "app", Path: "views/app.html"}}, res.Templates)
	require.True(t, res.Chunks.Has("app"))
	require.Empty(t, res.Warnings)
}

func TestResolve_leadingMarkerFolder(t *testing.T) {
	fsys := pageFS(
		"src/views/app/foo.js",
		"src/views/app/foo.html",
		"src/views/foo.js",
		"src/views/foo.html",
	)

	res, err := Resolve(fsys, DefaultConvention())
	require.NoError(t, err)

	require.Equal(t, map[string][]string{
		"app/foo": {"./src/views/app/foo.js"},
		"foo":     {"./src/views/foo.js"},
	}, res.Entries.Map())
	require.Equal(t, []Template{
		{Name: "app/foo", Path: "views/app/foo.html"},
		{Name: "foo", Path: "views/foo.html"},
	}, res.Templates)
	require.Empty(t, res.Warnings)
}

func TestResolve_warnings(t *testing.T) {
	fsys := pageFS(
		"src/views/orphan/app.html",
		"src/views/headless/app.js",
	)

	res, err := Resolve(fsys, DefaultConvention())
	require.NoError(t, err)

	require.Len(t, res.Warnings, 2)
	assert.Contains(t, res.Warnings[0], "views/orphan/app.html")
	assert.Contains(t, res.Warnings[1], "./src/views/headless/app.js")
	require.False(t, res.Chunks.Has("orphan"))
}

func TestResolve_customConvention(t *testing.T) {
	fsys := pageFS(
		"web/pages/shop/main.ts",
		"web/pages/shop/main.htm",
	)
	conv := Convention{
		SourceRoot:  "web",
		PagesDir:    "pages",
		ScriptExt:   ".ts",
		TemplateExt: ".htm",
		Marker:      "main",
	}

	res, err := Resolve(fsys, conv)
	require.NoError(t, err)
	require.Equal(t, []string{"shop"}, res.Entries.Names())
	require.Equal(t, []Template{{Name: "shop", Path: "pages/shop/main.htm"}}, res.Templates)
}

type brokenFS struct{}

func (brokenFS) Open(name string) (fs.File, error) {
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
}
