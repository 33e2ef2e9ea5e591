package canvas

import (
	"strings"

	"github.com/PabloGalante/canvas-agent/internal/domain"
)

// Accumulator collects streamed fragments of one generation. Snapshots are
// only available once the output kind has been set.
type Accumulator struct {
	buf  strings.Builder
	kind domain.CanvasKind
}

func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// SetKind fixes the output kind used for sanitizing.
func (a *Accumulator) SetKind(kind domain.CanvasKind) {
	a.kind = kind
}

// Append adds a fragment and returns the sanitized content so far. ok is
// false while the kind is still unknown.
func (a *Accumulator) Append(fragment string) (snapshot domain.CanvasArtifact, ok bool) {
	a.buf.WriteString(fragment)
	if a.kind == "" {
		return domain.CanvasArtifact{}, false
	}
	return a.snapshot(), true
}

// Finalize sanitizes the complete buffer. A kind that was never set is
// treated as Markdown.
func (a *Accumulator) Finalize() domain.CanvasArtifact {
	if a.kind == "" {
		a.kind = domain.CanvasMarkdown
	}
	return a.snapshot()
}

func (a *Accumulator) snapshot() domain.CanvasArtifact {
	return domain.CanvasArtifact{
		Kind:    a.kind,
		Content: Sanitize(a.buf.String(), a.kind),
	}
}
