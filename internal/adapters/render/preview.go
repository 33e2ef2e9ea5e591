// Package render turns canvas artifacts into browser-ready preview pages.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"gopkg.in/yaml.v3"

	"github.com/PabloGalante/canvas-agent/internal/domain"
)

// ContentSecurityPolicy isolates raw HTML artifacts. Scripts may run, but
// the page gets an opaque origin.
const ContentSecurityPolicy = "sandbox allow-scripts"

const defaultTitle = "Canvas"

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/katex@0.16.11/dist/katex.min.css">
<script defer src="https://cdn.jsdelivr.net/npm/katex@0.16.11/dist/katex.min.js"></script>
<script defer src="https://cdn.jsdelivr.net/npm/katex@0.16.11/dist/contrib/auto-render.min.js"
  onload="renderMathInElement(document.body, {delimiters: [{left: '$$', right: '$$', display: true}, {left: '$', right: '$', display: false}]});"></script>
<style>
body { font-family: sans-serif; max-width: 860px; margin: 2rem auto; padding: 0 1rem; line-height: 1.6; }
pre { background: #f4f4f4; padding: 1rem; overflow-x: auto; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ddd; padding: 0.4rem 0.8rem; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`

type frontMatter struct {
	Title string `yaml:"title"`
}

type page struct {
	Title string
	Body  template.HTML
}

// Previewer renders artifacts for the canvas preview endpoint.
type Previewer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	page   *template.Template
}

func NewPreviewer() *Previewer {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Globally()

	return &Previewer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
		policy: policy,
		page:   template.Must(template.New("preview").Parse(pageTemplate)),
	}
}

// Render returns a complete HTML page for the artifact. HTML artifacts are
// returned as they are; callers must serve them with ContentSecurityPolicy.
func (p *Previewer) Render(a domain.CanvasArtifact) ([]byte, error) {
	if a.Kind == domain.CanvasHTML {
		return []byte(a.Content), nil
	}

	title, body := SplitFrontMatter(a.Content)
	if title == "" {
		title = defaultTitle
	}

	var buf bytes.Buffer
	if err := p.md.Convert([]byte(body), &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	safe := p.policy.SanitizeBytes(buf.Bytes())

	var out bytes.Buffer
	if err := p.page.Execute(&out, page{Title: title, Body: template.HTML(safe)}); err != nil {
		return nil, fmt.Errorf("render preview page: %w", err)
	}
	return out.Bytes(), nil
}

// SplitFrontMatter separates a leading YAML front matter block from the
// Markdown body and returns its title. Invalid front matter is left in
// the body.
func SplitFrontMatter(md string) (title, body string) {
	trimmed := strings.TrimLeft(md, " \t\r\n")
	if !strings.HasPrefix(trimmed, "---\n") && !strings.HasPrefix(trimmed, "---\r\n") {
		return "", md
	}

	rest := trimmed[strings.Index(trimmed, "\n")+1:]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return "", md
	}

	var fm frontMatter
	if err := yaml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
		return "", md
	}

	body = rest[end+len("\n---"):]
	if i := strings.Index(body, "\n"); i >= 0 {
		body = body[i+1:]
	} else {
		body = ""
	}
	return strings.TrimSpace(fm.Title), body
}
