package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestRebuilder(t *testing.T) {
	root := sampleProject(t)

	ws, err := (&ProjectFlags{Root: root, Mode: "development"}).load(zerolog.Nop())
	require.NoError(t, err)

	b := &rebuilder{ws: ws, log: zerolog.Nop()}
	defer b.close()

	require.NoError(t, b.rebuild(context.Background()))
	first := b.pipeline
	require.NotNil(t, first)

	// editing a script keeps the pipeline
	require.NoError(t, os.WriteFile(filepath.Join(root, "src/views/home/app.js"), []byte(`document.title = "edited"`), 0o600))
	require.NoError(t, b.rebuild(context.Background()))
	require.Same(t, first, b.pipeline)

	script, err := os.ReadFile(filepath.Join(root, "dist", "home.js"))
	require.NoError(t, err)
	require.Contains(t, string(script), "edited")

	// adding a page replaces it
	contact := filepath.Join(root, "src/views/contact")
	require.NoError(t, os.MkdirAll(contact, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(contact, "app.js"), []byte(`export {}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(contact, "app.html"), []byte(pageTemplate), 0o600))
	require.NoError(t, b.rebuild(context.Background()))
	require.NotSame(t, first, b.pipeline)
	require.FileExists(t, filepath.Join(root, "dist", "contact.html"))
}

func TestPagesChanged(t *testing.T) {
	root := sampleProject(t)

	before, err := (&ProjectFlags{Root: root}).load(zerolog.Nop())
	require.NoError(t, err)
	same, err := (&ProjectFlags{Root: root}).load(zerolog.Nop())
	require.NoError(t, err)
	require.False(t, pagesChanged(before.config, same.config))

	require.NoError(t, os.Remove(filepath.Join(root, "src/views/about/app.html")))
	after, err := (&ProjectFlags{Root: root}).load(zerolog.Nop())
	require.NoError(t, err)
	require.True(t, pagesChanged(before.config, after.config))
}
