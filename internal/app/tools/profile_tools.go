package tools

import "github.com/PabloGalante/canvas-agent/internal/domain"

// Zero-argument tools offered by the canvas sub-router.
const (
	CreateVisualization = "createVisualization"
	CreateDocument      = "createDocument"
)

// ProfileDeclarations returns the visualization and document choices.
func ProfileDeclarations() []domain.ToolDeclaration {
	return []domain.ToolDeclaration{
		{
			Name: CreateVisualization,
			Description: "Use when the user wants a visual, interactive product such as a chart, graph, dashboard, " +
				"animation or user interface component. The output must be code.",
		},
		{
			Name: CreateDocument,
			Description: "Use when the user wants a text document, lecture, report, worked math solution, " +
				"or any content structured like a document. The output must be formatted text.",
		},
	}
}
