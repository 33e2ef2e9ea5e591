package llm

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"google.golang.org/genai"

	"github.com/PabloGalante/canvas-agent/internal/domain"
)

type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient creates an LLMClient backed by the Gemini API.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	return &GeminiClient{client: client}, nil
}

// Generate implements domain.LLMClient.
func (g *GeminiClient) Generate(ctx context.Context, req domain.LLMRequest) (*domain.LLMResponse, error) {
	res, err := g.client.Models.GenerateContent(ctx, req.Model, buildContents(req), buildConfig(req))
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}
	return toResponse(res), nil
}

// Stream implements domain.LLMClient. Each yielded value is the text of one
// streamed chunk; chunks without text are skipped.
func (g *GeminiClient) Stream(ctx context.Context, req domain.LLMRequest) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for chunk, err := range g.client.Models.GenerateContentStream(ctx, req.Model, buildContents(req), buildConfig(req)) {
			if err != nil {
				yield("", fmt.Errorf("gemini stream: %w", err))
				return
			}
			text := extractText(chunk)
			if text == "" {
				continue
			}
			if !yield(text, nil) {
				return
			}
		}
	}
}

func buildContents(req domain.LLMRequest) []*genai.Content {
	parts := []*genai.Part{genai.NewPartFromText(req.Text)}
	if req.Image != nil {
		parts = append(parts, genai.NewPartFromBytes(req.Image.Data, req.Image.MimeType))
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}

func buildConfig(req domain.LLMRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}

	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}

	if req.ThinkingBudget > 0 {
		budget := req.ThinkingBudget
		cfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: &budget}
	}

	if len(req.Tools) > 0 {
		cfg.Tools = append(cfg.Tools, &genai.Tool{FunctionDeclarations: toFunctionDeclarations(req.Tools)})
	}
	if req.SearchGrounding {
		cfg.Tools = append(cfg.Tools, &genai.Tool{GoogleSearch: &genai.GoogleSearch{}})
	}

	return cfg
}

func toFunctionDeclarations(decls []domain.ToolDeclaration) []*genai.FunctionDeclaration {
	out := make([]*genai.FunctionDeclaration, 0, len(decls))
	for _, d := range decls {
		schema := &genai.Schema{
			Type:       genai.TypeObject,
			Properties: map[string]*genai.Schema{},
			Required:   []string{},
		}
		for _, p := range d.Params {
			schema.Properties[p.Name] = &genai.Schema{
				Type:        genai.TypeString,
				Description: p.Description,
			}
			if p.Required {
				schema.Required = append(schema.Required, p.Name)
			}
		}
		out = append(out, &genai.FunctionDeclaration{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  schema,
		})
	}
	return out
}

func toResponse(res *genai.GenerateContentResponse) *domain.LLMResponse {
	out := &domain.LLMResponse{Text: extractText(res)}

	for _, call := range res.FunctionCalls() {
		out.FunctionCalls = append(out.FunctionCalls, domain.FunctionCall{
			Name: call.Name,
			Args: call.Args,
		})
	}

	if len(res.Candidates) > 0 && res.Candidates[0].GroundingMetadata != nil {
		for _, chunk := range res.Candidates[0].GroundingMetadata.GroundingChunks {
			if chunk == nil || chunk.Web == nil {
				continue
			}
			out.GroundingRefs = append(out.GroundingRefs, domain.GroundingSource{
				URI:   chunk.Web.URI,
				Title: chunk.Web.Title,
			})
		}
	}

	return out
}

// extractText prefers the SDK accessor and falls back to concatenating the
// text parts of every candidate.
func extractText(res *genai.GenerateContentResponse) string {
	if res == nil {
		return ""
	}
	if text := res.Text(); text != "" {
		return text
	}

	var sb strings.Builder
	for _, cand := range res.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part != nil && part.Text != "" && !part.Thought {
				sb.WriteString(part.Text)
			}
		}
	}
	return sb.String()
}
