package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/PabloGalante/canvas-agent/internal/domain"
)

// markdownRenderer is the shared glamour renderer for terminal output.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		markdownRenderer = nil
	}
}

// renderMarkdown returns content unchanged when rendering is unavailable.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// formatSources lists grounding sources as a Markdown list.
func formatSources(sources []domain.GroundingSource) string {
	if len(sources) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n---\n\n")
	for i, s := range sources {
		fmt.Fprintf(&b, "%d. [%s](%s)\n", i+1, s.Title, s.URI)
	}
	return b.String()
}

// writeArtifact saves the artifact in dir under its export file name and
// returns the path.
func writeArtifact(dir string, a domain.CanvasArtifact) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, a.FileName())
	if err := os.WriteFile(path, []byte(a.Content), 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}

// printMessage writes a model message for the terminal. Canvas artifacts
// are saved to outDir.
func printMessage(w io.Writer, msg *domain.Message, outDir string) error {
	switch msg.Kind {
	case domain.KindCanvasCard:
		path, err := writeArtifact(outDir, *msg.Canvas.Artifact)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, msg.Canvas.Completion)
		fmt.Fprintf(w, "Saved %s\n", path)
	case domain.KindSearchResult:
		fmt.Fprint(w, renderMarkdown(msg.Text+formatSources(msg.Search.Sources)))
	default:
		fmt.Fprint(w, renderMarkdown(msg.Text))
	}
	return nil
}
