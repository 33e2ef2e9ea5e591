package render_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/canvas-agent/internal/adapters/render"
	"github.com/PabloGalante/canvas-agent/internal/domain"
)

func TestSplitFrontMatter(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantTitle string
		wantBody  string
	}{
		{
			name:      "with title",
			in:        "---\ntitle: \"Tides\"\nmath: katex\n---\n# Tides\n",
			wantTitle: "Tides",
			wantBody:  "# Tides\n",
		},
		{
			name:     "no front matter",
			in:       "# Plain\n",
			wantBody: "# Plain\n",
		},
		{
			name:     "unterminated",
			in:       "---\ntitle: x\n# body",
			wantBody: "---\ntitle: x\n# body",
		},
		{
			name:     "invalid yaml",
			in:       "---\ntitle: [x\n---\nbody",
			wantBody: "---\ntitle: [x\n---\nbody",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, body := render.SplitFrontMatter(tt.in)
			assert.Equal(t, tt.wantTitle, title)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestRenderMarkdown(t *testing.T) {
	p := render.NewPreviewer()

	out, err := p.Render(domain.CanvasArtifact{
		Kind:    domain.CanvasMarkdown,
		Content: "---\ntitle: Report\n---\n# Heading\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\nMath $x^2$.\n\n<script>alert(1)</script>\n",
	})
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "<title>Report</title>")
	assert.Contains(t, html, "Heading</h1>")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "$x^2$")
	assert.Contains(t, html, "katex")
	assert.NotContains(t, html, "alert(1)")
}

func TestRenderMarkdownDefaultTitle(t *testing.T) {
	out, err := render.NewPreviewer().Render(domain.CanvasArtifact{Kind: domain.CanvasMarkdown, Content: "hi"})
	require.NoError(t, err)
	assert.Contains(t, string(out), "<title>Canvas</title>")
}

func TestRenderHTMLIsRaw(t *testing.T) {
	content := "<!DOCTYPE html><html><body><script>renderChart()</script></body></html>"

	out, err := render.NewPreviewer().Render(domain.CanvasArtifact{Kind: domain.CanvasHTML, Content: content})
	require.NoError(t, err)
	assert.Equal(t, content, string(out))
}
