package assets

import (
	"fmt"
	"strings"
	"sync"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/wolfeidau/pagepack/internal/bundle"
)

// BuildMetadata is the subset of the esbuild metafile used to place chunks.
type BuildMetadata struct {
	Outputs map[string]OutputInfo `json:"outputs"`
}

type OutputInfo struct {
	EntryPoint string                `json:"entryPoint"`
	Imports    []ImportInfo          `json:"imports"`
	Inputs     map[string]InputBytes `json:"inputs"`
	CSSBundle  string                `json:"cssBundle"`
}

type ImportInfo struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
}

type InputBytes struct {
	BytesInOutput int `json:"bytesInOutput"`
}

// BuildError carries the messages esbuild reported for a failed build.
type BuildError struct {
	Messages []string
}

func (e *BuildError) Error() string {
	if len(e.Messages) == 0 {
		return "esbuild failed"
	}
	return fmt.Sprintf("esbuild failed with %d errors: %s", len(e.Messages), strings.Join(e.Messages, "; "))
}

func newBuildError(msgs []api.Message) *BuildError {
	buildErr := &BuildError{}
	for _, msg := range msgs {
		text := msg.Text
		if msg.Location != nil {
			text = fmt.Sprintf("%s:%d:%d: %s", msg.Location.File, msg.Location.Line, msg.Location.Column, msg.Text)
		}
		buildErr.Messages = append(buildErr.Messages, text)
	}
	return buildErr
}

// Page describes one generated html file.
type Page struct {
	Name    string   `json:"name"`
	HTML    string   `json:"html"`
	Scripts []string `json:"scripts,omitempty"`
	Styles  []string `json:"styles,omitempty"`
}

// Report summarises a completed build.
type Report struct {
	BuildID string   `json:"buildId"`
	Mode    string   `json:"mode"`
	Hash    string   `json:"hash"`
	Pages   []Page   `json:"pages"`
	Files   []string `json:"files"`
}

// Pipeline executes an assembled configuration with esbuild and renders the
// page templates. Rebuilds reuse the same esbuild context.
type Pipeline struct {
	config   *bundle.Config
	urlRules []*bundle.Matcher
	buildCtx api.BuildContext
	metadata *BuildMetadata
	emitted  *emittedAssets
	mu       sync.Mutex
}

// New creates a pipeline for the given configuration.
func New(cfg *bundle.Config) (*Pipeline, error) {
	p := &Pipeline{config: cfg, emitted: newEmittedAssets()}

	for _, rule := range cfg.Rules {
		if rule.Loader != bundle.LoaderURL {
			continue
		}
		m, err := rule.Compile()
		if err != nil {
			return nil, fmt.Errorf("invalid rule %s: %w", rule.Name, err)
		}
		p.urlRules = append(p.urlRules, m)
	}

	return p, nil
}

// Close releases the esbuild context.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.buildCtx != nil {
		p.buildCtx.Dispose()
		p.buildCtx = nil
	}
}
