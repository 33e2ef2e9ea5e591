package canvas_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PabloGalante/canvas-agent/internal/app/canvas"
	"github.com/PabloGalante/canvas-agent/internal/domain"
)

func TestAccumulatorWithholdsUntilKindKnown(t *testing.T) {
	acc := canvas.NewAccumulator()

	_, ok := acc.Append("```html\n<p>")
	assert.False(t, ok)

	acc.SetKind(domain.CanvasHTML)
	snap, ok := acc.Append("hi</p>\n```")
	assert.True(t, ok)
	assert.Equal(t, domain.CanvasArtifact{Kind: domain.CanvasHTML, Content: "<p>hi</p>"}, snap)

	assert.Equal(t, snap, acc.Finalize())
}

func TestAccumulatorFinalizeDefaultsToMarkdown(t *testing.T) {
	acc := canvas.NewAccumulator()
	acc.Append("# doc\n")

	got := acc.Finalize()
	assert.Equal(t, domain.CanvasMarkdown, got.Kind)
	assert.Equal(t, "# doc\n", got.Content)
}
