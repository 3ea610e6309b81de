package assets

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/wolfeidau/pagepack/internal/bundle"
)

// RenderPage injects stylesheet links at the end of head and module scripts at
// the end of body. A non empty hash is appended to every reference as a query.
func RenderPage(template []byte, scripts, styles []string, hash string) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(template))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	head := doc.Find("head").First()
	for _, href := range styles {
		head.AppendHtml(fmt.Sprintf(`<link href="%s" rel="stylesheet">`, html.EscapeString(withHash(href, hash))))
	}

	body := doc.Find("body").First()
	for _, src := range scripts {
		body.AppendHtml(fmt.Sprintf(`<script type="module" src="%s"></script>`, html.EscapeString(withHash(src, hash))))
	}

	out, err := doc.Html()
	if err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}

	return []byte(out), nil
}

// renderPage writes the html file for a directive.
func (p *Pipeline) renderPage(directive bundle.HTMLDirective, hash string) (Page, error) {
	name := strings.TrimSuffix(directive.Filename, ".html")
	page := Page{Name: name, HTML: directive.Filename}

	template, err := os.ReadFile(filepath.Join(p.config.Context, filepath.FromSlash(directive.Template)))
	if err != nil {
		return Page{}, fmt.Errorf("failed to read template for %s: %w", name, err)
	}

	out := template
	if directive.Inject != "" {
		assets, err := p.chunkAssets(directive.Chunks)
		if err != nil {
			return Page{}, fmt.Errorf("failed to resolve chunks for %s: %w", name, err)
		}

		page.Scripts = p.references(directive.Filename, assets.Scripts)
		page.Styles = p.references(directive.Filename, assets.Styles)

		if !directive.Hash {
			hash = ""
		}
		out, err = RenderPage(template, page.Scripts, page.Styles, hash)
		if err != nil {
			return Page{}, fmt.Errorf("failed to render %s: %w", name, err)
		}
	}

	dest := filepath.Join(p.config.Output.Path, filepath.FromSlash(directive.Filename))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return Page{}, fmt.Errorf("failed to create page dir: %w", err)
	}
	if err := os.WriteFile(dest, out, 0o600); err != nil {
		return Page{}, fmt.Errorf("failed to write page %s: %w", directive.Filename, err)
	}

	return page, nil
}

// references turns output files into URLs usable from the html file, either
// under the public path or relative to the page.
func (p *Pipeline) references(htmlFile string, files []string) []string {
	refs := make([]string, 0, len(files))
	for _, file := range files {
		if p.config.Output.PublicPath != "" {
			refs = append(refs, strings.TrimSuffix(p.config.Output.PublicPath, "/")+"/"+file)
			continue
		}
		rel, err := filepath.Rel(filepath.Dir(filepath.FromSlash(htmlFile)), filepath.FromSlash(file))
		if err != nil {
			rel = file
		}
		refs = append(refs, filepath.ToSlash(rel))
	}
	return refs
}

func withHash(ref, hash string) string {
	if hash == "" {
		return ref
	}
	if strings.Contains(ref, "?") {
		return ref + "&" + hash
	}
	return ref + "?" + hash
}
