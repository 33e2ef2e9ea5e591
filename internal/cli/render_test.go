package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/canvas-agent/internal/domain"
)

func TestWriteArtifact(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	path, err := writeArtifact(dir, domain.CanvasArtifact{Kind: domain.CanvasHTML, Content: "<p>hi</p>"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "canvas_export.html"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", string(data))
}

func TestFormatSources(t *testing.T) {
	assert.Empty(t, formatSources(nil))

	out := formatSources([]domain.GroundingSource{
		{URI: "https://a.example", Title: "A"},
		{URI: "https://b.example", Title: "B"},
	})
	assert.Contains(t, out, "1. [A](https://a.example)")
	assert.Contains(t, out, "2. [B](https://b.example)")
}

func TestPrintMessageSavesCanvas(t *testing.T) {
	dir := t.TempDir()
	msg := &domain.Message{
		Kind: domain.KindCanvasCard,
		Canvas: &domain.CanvasPayload{
			Title:      "doc",
			Artifact:   &domain.CanvasArtifact{Kind: domain.CanvasMarkdown, Content: "# doc"},
			Completion: "done",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, printMessage(&buf, msg, dir))
	assert.Contains(t, buf.String(), "done")
	assert.FileExists(t, filepath.Join(dir, "canvas_export.md"))
}

func TestLoadImageRejectsText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))

	_, err := loadImage(path)
	assert.Error(t, err)
}
