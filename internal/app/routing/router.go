// Package routing decides how a user utterance is handled: a direct text
// reply, a canvas generation or a grounded web search.
package routing

import (
	"context"

	"github.com/PabloGalante/canvas-agent/internal/app/prompts"
	"github.com/PabloGalante/canvas-agent/internal/app/tools"
	"github.com/PabloGalante/canvas-agent/internal/domain"
	"github.com/PabloGalante/canvas-agent/internal/observability"
)

type Router struct {
	llm   domain.LLMClient
	model string
	lang  prompts.Language
	tools *tools.Registry
}

func NewRouter(llm domain.LLMClient, model string, lang prompts.Language) *Router {
	return &Router{
		llm:   llm,
		model: model,
		lang:  lang,
		tools: tools.NewRouterRegistry(),
	}
}

// Route never fails: transport errors become a localized TextReply.
// When the model calls several tools only the first call is honored.
func (r *Router) Route(ctx context.Context, utterance string) domain.RoutedAction {
	log := observability.LoggerFromContext(ctx)

	res, err := r.llm.Generate(ctx, domain.LLMRequest{
		Model:             r.model,
		Text:              utterance,
		SystemInstruction: prompts.Router(r.lang),
		Tools:             r.tools.Declarations(),
	})
	if err != nil {
		log.Error("routing call failed", "error", err)
		return domain.TextReply{Content: r.lang.Messages.RouterError}
	}

	if len(res.FunctionCalls) > 0 {
		call := res.FunctionCalls[0]
		if len(res.FunctionCalls) > 1 {
			log.Warn("model called several tools, honoring the first", "tool", call.Name, "calls", len(res.FunctionCalls))
		}
		if action, ok := r.tools.Resolve(call); ok {
			log.Info("request routed", "tool", call.Name)
			return action
		}
		log.Warn("unusable tool call, falling back to text", "tool", call.Name)
	}

	return domain.TextReply{Content: res.Text}
}

// AnalyzeImage answers a question about an attached image with a single
// model call. An empty prompt asks for a description. Errors become a
// localized failure text.
func (r *Router) AnalyzeImage(ctx context.Context, prompt string, image domain.Image) string {
	if prompt == "" {
		prompt = r.lang.Messages.ImageDefaultPrompt
	}

	res, err := r.llm.Generate(ctx, domain.LLMRequest{
		Model:             r.model,
		Text:              prompt,
		Image:             &image,
		SystemInstruction: prompts.ImageAnalysis(r.lang),
	})
	if err != nil {
		observability.LoggerFromContext(ctx).Error("image analysis failed", "error", err, "mime_type", image.MimeType)
		return r.lang.Messages.ImageFailed
	}
	return res.Text
}
