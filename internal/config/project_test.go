package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProject(t *testing.T) {
	project := DefaultProject()

	require.NoError(t, project.Validate())
	assert.Equal(t, "src", project.SourceRoot)
	assert.Equal(t, "views", project.PagesDir)
	assert.Equal(t, "dist", project.OutputDir)
	assert.Equal(t, "127.0.0.1", project.DevServer.Host)
	assert.Equal(t, 8010, project.DevServer.Port)
	assert.Equal(t, 10000, project.URLLimit)
	assert.Len(t, project.Aliases, 5)
	assert.Equal(t, "src/components", project.Aliases["components"])
}

func TestLoadProject_missingOptional(t *testing.T) {
	project, err := LoadProject(filepath.Join(t.TempDir(), DefaultProjectFile), true)
	require.NoError(t, err)
	require.Equal(t, DefaultProject(), project)
}

func TestLoadProject_missingRequired(t *testing.T) {
	_, err := LoadProject(filepath.Join(t.TempDir(), "custom.yaml"), false)
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadProject_overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultProjectFile)
	content := `
pagesDir: pages
outputDir: public
compress: true
aliases:
  styles: src/styles
devServer:
  port: 9000
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	project, err := LoadProject(path, true)
	require.NoError(t, err)

	assert.Equal(t, "src", project.SourceRoot)
	assert.Equal(t, "pages", project.PagesDir)
	assert.Equal(t, "public", project.OutputDir)
	assert.True(t, project.Compress)
	assert.Equal(t, "127.0.0.1", project.DevServer.Host)
	assert.Equal(t, 9000, project.DevServer.Port)
	assert.Equal(t, "src/styles", project.Aliases["styles"])
	assert.Equal(t, "src/util", project.Aliases["util"])

	conv := project.Convention()
	assert.Equal(t, "pages", conv.PagesDir)
	assert.Equal(t, "app", conv.Marker)
}

func TestLoadProject_invalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultProjectFile)
	require.NoError(t, os.WriteFile(path, []byte("pagesDir: [unclosed"), 0600))

	_, err := LoadProject(path, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not parse project file")
}

func TestProject_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(p *Project)
	}{
		{name: "empty source root", modify: func(p *Project) { p.SourceRoot = "" }},
		{name: "absolute output dir", modify: func(p *Project) { p.OutputDir = "/tmp/dist" }},
		{name: "escaping pages dir", modify: func(p *Project) { p.PagesDir = "../views" }},
		{name: "escaping alias", modify: func(p *Project) { p.Aliases["util"] = "src/../../util" }},
		{name: "script ext without dot", modify: func(p *Project) { p.ScriptExt = "js" }},
		{name: "bare dot template ext", modify: func(p *Project) { p.TemplateExt = "." }},
		{name: "empty marker", modify: func(p *Project) { p.Marker = "" }},
		{name: "nested marker", modify: func(p *Project) { p.Marker = "app/main" }},
		{name: "empty host", modify: func(p *Project) { p.DevServer.Host = "" }},
		{name: "port zero", modify: func(p *Project) { p.DevServer.Port = 0 }},
		{name: "port too large", modify: func(p *Project) { p.DevServer.Port = 70000 }},
		{name: "negative url limit", modify: func(p *Project) { p.URLLimit = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			project := DefaultProject()
			tt.modify(&project)

			err := project.Validate()
			require.Error(t, err)
			require.ErrorIs(t, err, ErrInvalidProject)
		})
	}
}
