package canvas

import (
	"strings"

	"github.com/PabloGalante/canvas-agent/internal/domain"
)

const (
	htmlFenceOpen = "```html"
	fenceClose    = "```"
)

// Sanitize strips a Markdown code fence the model may have wrapped around an
// HTML document despite being told not to. Only an exact "```html" prefix and
// "```" suffix are recognized, after trimming whitespace. Markdown passes
// through untouched.
func Sanitize(text string, kind domain.CanvasKind) string {
	if kind != domain.CanvasHTML {
		return text
	}

	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, htmlFenceOpen)
	s = strings.TrimSuffix(s, fenceClose)
	return strings.TrimSpace(s)
}
