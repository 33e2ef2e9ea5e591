package tools

import (
	"github.com/PabloGalante/canvas-agent/internal/domain"
)

// SearchTool routes a request to the grounded search generator.
type SearchTool struct{}

func (SearchTool) Name() string {
	return "deepSearch"
}

func (t SearchTool) Declaration() domain.ToolDeclaration {
	return domain.ToolDeclaration{
		Name: t.Name(),
		Description: "Use this tool when the user asks about real-time information, news, recent events, " +
			"or any topic that needs up-to-date information from the web.",
		Params: []domain.ToolParam{{
			Name:        "query",
			Description: "The user's search query. This must be a short summary of the information the user is looking for.",
			Required:    true,
		}},
	}
}

func (SearchTool) Action(args map[string]any) (domain.RoutedAction, bool) {
	query := getString(args, "query")
	if query == "" {
		return nil, false
	}
	return domain.SearchRequest{Query: query}, true
}
