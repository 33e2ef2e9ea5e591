package tools_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/canvas-agent/internal/app/tools"
	"github.com/PabloGalante/canvas-agent/internal/domain"
)

func TestRouterRegistryDeclarationOrder(t *testing.T) {
	decls := tools.NewRouterRegistry().Declarations()

	require.Len(t, decls, 2)
	assert.Equal(t, "createOnCanvas", decls[0].Name)
	assert.Equal(t, "deepSearch", decls[1].Name)
	require.Len(t, decls[0].Params, 1)
	assert.Equal(t, "prompt", decls[0].Params[0].Name)
	assert.True(t, decls[0].Params[0].Required)
}

func TestRegistryResolve(t *testing.T) {
	reg := tools.NewRouterRegistry()

	action, ok := reg.Resolve(domain.FunctionCall{Name: "createOnCanvas", Args: map[string]any{"prompt": "a bar chart"}})
	require.True(t, ok)
	assert.Equal(t, domain.CanvasRequest{Prompt: "a bar chart"}, action)

	action, ok = reg.Resolve(domain.FunctionCall{Name: "deepSearch", Args: map[string]any{"query": "news today"}})
	require.True(t, ok)
	assert.Equal(t, domain.SearchRequest{Query: "news today"}, action)
}

func TestRegistryResolveRejectsBadCalls(t *testing.T) {
	reg := tools.NewRouterRegistry()

	_, ok := reg.Resolve(domain.FunctionCall{Name: "createOnCanvas", Args: map[string]any{}})
	assert.False(t, ok, "missing prompt")

	_, ok = reg.Resolve(domain.FunctionCall{Name: "deepSearch", Args: map[string]any{"query": 42}})
	assert.False(t, ok, "non-string query")

	_, ok = reg.Resolve(domain.FunctionCall{Name: "launchRocket"})
	assert.False(t, ok, "unknown tool")
}

func TestProfileDeclarationsHaveNoParams(t *testing.T) {
	for _, d := range tools.ProfileDeclarations() {
		assert.Empty(t, d.Params, d.Name)
	}
}
