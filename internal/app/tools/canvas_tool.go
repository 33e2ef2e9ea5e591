package tools

import (
	"github.com/PabloGalante/canvas-agent/internal/domain"
)

// CanvasTool routes a request to the canvas generator.
type CanvasTool struct{}

func (CanvasTool) Name() string {
	return "createOnCanvas"
}

func (t CanvasTool) Declaration() domain.ToolDeclaration {
	return domain.ToolDeclaration{
		Name: t.Name(),
		Description: "Use this tool when the user asks to create, draw, build or visualize something " +
			"that needs source code, e.g. a UI component, chart, document, presentation, animation or diagram. " +
			"The output is shown on the canvas.",
		Params: []domain.ToolParam{{
			Name:        "prompt",
			Description: "Detailed description of what to create on the canvas. This must be the user's original, complete request.",
			Required:    true,
		}},
	}
}

func (CanvasTool) Action(args map[string]any) (domain.RoutedAction, bool) {
	prompt := getString(args, "prompt")
	if prompt == "" {
		return nil, false
	}
	return domain.CanvasRequest{Prompt: prompt}, true
}
