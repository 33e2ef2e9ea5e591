// Package search answers questions with provider-side web grounding and
// inline citations.
package search

import (
	"context"
	"fmt"

	"github.com/PabloGalante/canvas-agent/internal/app/prompts"
	"github.com/PabloGalante/canvas-agent/internal/domain"
	"github.com/PabloGalante/canvas-agent/internal/observability"
)

// Result is a synthesized answer plus its deduplicated sources.
type Result struct {
	Content string
	Sources []domain.GroundingSource
}

type Service struct {
	llm   domain.LLMClient
	model string
	lang  prompts.Language
}

func NewService(llm domain.LLMClient, model string, lang prompts.Language) *Service {
	return &Service{llm: llm, model: model, lang: lang}
}

// Search runs query with search grounding enabled. Transport errors are
// returned to the caller.
func (s *Service) Search(ctx context.Context, query string) (*Result, error) {
	log := observability.LoggerFromContext(ctx).With("query", query)
	log.Info("grounded search started")

	res, err := s.llm.Generate(ctx, domain.LLMRequest{
		Model:             s.model,
		Text:              query,
		SystemInstruction: prompts.Search(s.lang),
		SearchGrounding:   true,
	})
	if err != nil {
		log.Error("grounded search failed", "error", err)
		return nil, fmt.Errorf("grounded search: %w", err)
	}

	sources := DedupeSources(res.GroundingRefs, s.lang.Messages.UntitledSource)
	log.Info("grounded search completed", "raw_refs", len(res.GroundingRefs), "sources", len(sources))

	return &Result{Content: res.Text, Sources: sources}, nil
}

// DedupeSources drops references without a URI, keeps the first title seen
// for each URI and preserves first-seen order. Empty titles become untitled.
func DedupeSources(refs []domain.GroundingSource, untitled string) []domain.GroundingSource {
	seen := make(map[string]struct{}, len(refs))
	out := make([]domain.GroundingSource, 0, len(refs))

	for _, ref := range refs {
		if ref.URI == "" {
			continue
		}
		if _, dup := seen[ref.URI]; dup {
			continue
		}
		seen[ref.URI] = struct{}{}

		if ref.Title == "" {
			ref.Title = untitled
		}
		out = append(out, ref)
	}
	return out
}
