package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wolfeidau/pagepack/internal/layout"
	"gopkg.in/yaml.v3"
)

// DefaultProjectFile is looked up in the project root when no file is given.
const DefaultProjectFile = "pagepack.yaml"

// ErrInvalidProject indicates the project file holds an unusable value
var ErrInvalidProject = errors.New("invalid project configuration")

type DevServer struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
}

// Project describes the source tree convention and output settings.
type Project struct {
	SourceRoot  string            `yaml:"sourceRoot" json:"sourceRoot"`
	PagesDir    string            `yaml:"pagesDir" json:"pagesDir"`
	ScriptExt   string            `yaml:"scriptExt" json:"scriptExt"`
	TemplateExt string            `yaml:"templateExt" json:"templateExt"`
	Marker      string            `yaml:"marker" json:"marker"`
	OutputDir   string            `yaml:"outputDir" json:"outputDir"`
	Aliases     map[string]string `yaml:"aliases" json:"aliases"`
	DevServer   DevServer         `yaml:"devServer" json:"devServer"`
	URLLimit    int               `yaml:"urlLimit" json:"urlLimit"`
	Compress    bool              `yaml:"compress" json:"compress"`
}

// DefaultProject returns the conventional layout: pages under src/views,
// output in dist, dev server on 127.0.0.1:8010.
func DefaultProject() Project {
	conv := layout.DefaultConvention()
	return Project{
		SourceRoot:  conv.SourceRoot,
		PagesDir:    conv.PagesDir,
		ScriptExt:   conv.ScriptExt,
		TemplateExt: conv.TemplateExt,
		Marker:      conv.Marker,
		OutputDir:   "dist",
		Aliases: map[string]string{
			"components": "src/components",
			"config":     "src/config",
			"service":    "src/service",
			"assets":     "src/assets",
			"util":       "src/util",
		},
		DevServer: DevServer{
			Host: "127.0.0.1",
			Port: 8010,
		},
		URLLimit: 10000,
	}
}

// LoadProject reads a YAML project file on top of the defaults. A missing
// file is not an error when optional is set.
func LoadProject(path string, optional bool) (Project, error) {
	project := DefaultProject()

	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return project, nil
		}
		return Project{}, fmt.Errorf("could not read project file at %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &project); err != nil {
		return Project{}, fmt.Errorf("could not parse project file %s: %w", path, err)
	}

	if err := project.Validate(); err != nil {
		return Project{}, err
	}

	return project, nil
}

// Validate checks that every directory is a clean relative path inside the
// project root and that the dev server address is usable.
func (p Project) Validate() error {
	dirs := map[string]string{
		"sourceRoot": p.SourceRoot,
		"pagesDir":   p.PagesDir,
		"outputDir":  p.OutputDir,
	}
	for alias, dir := range p.Aliases {
		dirs["aliases."+alias] = dir
	}

	for field, dir := range dirs {
		if err := validateRelDir(dir); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidProject, field, err)
		}
	}

	for field, ext := range map[string]string{"scriptExt": p.ScriptExt, "templateExt": p.TemplateExt} {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("%w: %s must start with a dot", ErrInvalidProject, field)
		}
	}

	if p.Marker == "" || strings.Contains(p.Marker, "/") {
		return fmt.Errorf("%w: marker must be a single path segment", ErrInvalidProject)
	}

	if p.DevServer.Host == "" {
		return fmt.Errorf("%w: devServer.host is required", ErrInvalidProject)
	}
	if p.DevServer.Port < 1 || p.DevServer.Port > 65535 {
		return fmt.Errorf("%w: devServer.port %d out of range", ErrInvalidProject, p.DevServer.Port)
	}

	if p.URLLimit < 0 {
		return fmt.Errorf("%w: urlLimit cannot be negative", ErrInvalidProject)
	}

	return nil
}

// Convention returns the layout convention described by the project.
func (p Project) Convention() layout.Convention {
	return layout.Convention{
		SourceRoot:  p.SourceRoot,
		PagesDir:    p.PagesDir,
		ScriptExt:   p.ScriptExt,
		TemplateExt: p.TemplateExt,
		Marker:      p.Marker,
	}
}

func validateRelDir(dir string) error {
	if dir == "" {
		return errors.New("cannot be empty")
	}
	if filepath.IsAbs(dir) {
		return errors.New("must be relative to the project root")
	}
	clean := filepath.ToSlash(filepath.Clean(dir))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return errors.New("cannot escape the project root")
	}
	return nil
}
