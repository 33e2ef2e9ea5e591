package tools

import (
	"github.com/PabloGalante/canvas-agent/internal/domain"
)

// Tool is a function the router offers to the model. When the model calls
// it, Action turns the call arguments into a routed action.
type Tool interface {
	Name() string
	Declaration() domain.ToolDeclaration
	Action(args map[string]any) (domain.RoutedAction, bool)
}

// Registry keeps tools in declaration order.
type Registry struct {
	tools []Tool
}

func NewRegistry(tools ...Tool) *Registry {
	return &Registry{tools: tools}
}

// NewRouterRegistry returns the canvas and search tools, in that order.
func NewRouterRegistry() *Registry {
	return NewRegistry(CanvasTool{}, SearchTool{})
}

func (r *Registry) Declarations() []domain.ToolDeclaration {
	out := make([]domain.ToolDeclaration, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t.Declaration())
	}
	return out
}

// Resolve maps a function call to the action of the tool with that name.
// It returns false for unknown tools or calls missing required arguments.
func (r *Registry) Resolve(call domain.FunctionCall) (domain.RoutedAction, bool) {
	for _, t := range r.tools {
		if t.Name() == call.Name {
			return t.Action(call.Args)
		}
	}
	return nil, false
}

// --- internal helpers --- //

func getString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
