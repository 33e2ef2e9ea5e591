package search_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/canvas-agent/internal/adapters/llm"
	"github.com/PabloGalante/canvas-agent/internal/app/prompts"
	"github.com/PabloGalante/canvas-agent/internal/app/search"
	"github.com/PabloGalante/canvas-agent/internal/domain"
)

func TestDedupeSources(t *testing.T) {
	refs := []domain.GroundingSource{
		{URI: "https://b.example", Title: "B first"},
		{URI: "", Title: "no uri"},
		{URI: "https://a.example", Title: ""},
		{URI: "https://b.example", Title: "B second"},
		{URI: "https://c.example", Title: "C"},
		{URI: "https://a.example", Title: "A late title"},
	}

	got := search.DedupeSources(refs, "Untitled")

	assert.Equal(t, []domain.GroundingSource{
		{URI: "https://b.example", Title: "B first"},
		{URI: "https://a.example", Title: "Untitled"},
		{URI: "https://c.example", Title: "C"},
	}, got)
}

func TestDedupeSourcesURIsAreUnique(t *testing.T) {
	var refs []domain.GroundingSource
	for i := 0; i < 50; i++ {
		refs = append(refs, domain.GroundingSource{
			URI:   []string{"u1", "u2", "u3"}[i%3],
			Title: string(rune('a' + i%26)),
		})
	}

	got := search.DedupeSources(refs, "x")
	seen := map[string]bool{}
	for _, s := range got {
		assert.False(t, seen[s.URI], "duplicate %s", s.URI)
		seen[s.URI] = true
	}
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].Title)
	assert.Equal(t, "b", got[1].Title)
	assert.Equal(t, "c", got[2].Title)
}

func TestSearch(t *testing.T) {
	mock := llm.NewMockLLM()
	mock.GenerateFunc = func(_ context.Context, req domain.LLMRequest) (*domain.LLMResponse, error) {
		return &domain.LLMResponse{
			Text: "Summary (Source: [A](https://a))",
			GroundingRefs: []domain.GroundingSource{
				{URI: "https://a", Title: "A"},
				{URI: "https://a", Title: "A again"},
			},
		}, nil
	}

	res, err := search.NewService(mock, "search-model", prompts.ForCode("en")).Search(context.Background(), "today's news")
	require.NoError(t, err)
	assert.Equal(t, "Summary (Source: [A](https://a))", res.Content)
	assert.Equal(t, []domain.GroundingSource{{URI: "https://a", Title: "A"}}, res.Sources)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].SearchGrounding)
	assert.Equal(t, "search-model", calls[0].Model)
	assert.Empty(t, calls[0].Tools)
}

func TestSearchError(t *testing.T) {
	boom := errors.New("deadline exceeded")
	mock := llm.NewMockLLM()
	mock.GenerateFunc = func(context.Context, domain.LLMRequest) (*domain.LLMResponse, error) {
		return nil, boom
	}

	_, err := search.NewService(mock, "m", prompts.ForCode("en")).Search(context.Background(), "q")
	require.ErrorIs(t, err, boom)
}
