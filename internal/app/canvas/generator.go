// Package canvas produces canvas artifacts: interactive HTML visualizations
// or Markdown documents, streamed fragment by fragment.
package canvas

import (
	"context"
	"fmt"

	"github.com/PabloGalante/canvas-agent/internal/app/prompts"
	"github.com/PabloGalante/canvas-agent/internal/app/tools"
	"github.com/PabloGalante/canvas-agent/internal/domain"
	"github.com/PabloGalante/canvas-agent/internal/observability"
)

// Profile selects the generation instructions and the output kind.
type Profile string

const (
	ProfileAuto          Profile = ""
	ProfileVisualization Profile = "visualization"
	ProfileDocument      Profile = "document"
)

// Kind is the artifact kind a profile produces.
func (p Profile) Kind() domain.CanvasKind {
	if p == ProfileVisualization {
		return domain.CanvasHTML
	}
	return domain.CanvasMarkdown
}

// ParseProfile accepts "visualization", "document" or "" (auto).
func ParseProfile(s string) (Profile, error) {
	switch Profile(s) {
	case ProfileAuto, ProfileVisualization, ProfileDocument:
		return Profile(s), nil
	default:
		return "", fmt.Errorf("unknown canvas profile %q", s)
	}
}

// FragmentFunc receives the sanitized content accumulated so far.
type FragmentFunc func(snapshot domain.CanvasArtifact)

type Config struct {
	Model           string
	ClassifierModel string
	ThinkingBudget  int32
}

type Generator struct {
	llm  domain.LLMClient
	cfg  Config
	lang prompts.Language
}

func NewGenerator(llm domain.LLMClient, cfg Config, lang prompts.Language) *Generator {
	return &Generator{llm: llm, cfg: cfg, lang: lang}
}

// Generate streams a canvas artifact for prompt. With ProfileAuto the
// sub-router picks the profile first. Streaming errors are returned; the
// fragments delivered before the error stay delivered.
func (g *Generator) Generate(
	ctx context.Context,
	prompt string,
	forced Profile,
	onFragment FragmentFunc,
) (domain.CanvasArtifact, error) {
	profile := forced
	if profile == ProfileAuto {
		profile = g.Classify(ctx, prompt)
	}

	log := observability.LoggerFromContext(ctx).With("profile", profile)
	log.Info("canvas generation started", "forced", forced != ProfileAuto)

	acc := NewAccumulator()
	acc.SetKind(profile.Kind())

	req := domain.LLMRequest{
		Model:             g.cfg.Model,
		Text:              prompt,
		SystemInstruction: g.systemInstruction(profile),
		ThinkingBudget:    g.cfg.ThinkingBudget,
	}

	fragments := 0
	for fragment, err := range g.llm.Stream(ctx, req) {
		if err != nil {
			log.Error("canvas stream failed", "error", err, "fragments", fragments)
			return domain.CanvasArtifact{}, fmt.Errorf("canvas %s stream: %w", profile, err)
		}
		fragments++
		if snapshot, ok := acc.Append(fragment); ok && onFragment != nil {
			onFragment(snapshot)
		}
	}

	artifact := acc.Finalize()
	if onFragment != nil {
		onFragment(artifact)
	}

	log.Info("canvas generation completed", "fragments", fragments, "kind", artifact.Kind, "bytes", len(artifact.Content))
	return artifact, nil
}

// Classify asks the model whether prompt calls for a visualization or a
// document. It never fails: errors and unclear answers mean ProfileDocument.
func (g *Generator) Classify(ctx context.Context, prompt string) Profile {
	log := observability.LoggerFromContext(ctx)

	res, err := g.llm.Generate(ctx, domain.LLMRequest{
		Model:             g.cfg.ClassifierModel,
		Text:              g.lang.Messages.ClassifyPrompt(prompt),
		SystemInstruction: prompts.CanvasClassifier(),
		Tools:             tools.ProfileDeclarations(),
	})
	if err != nil {
		log.Warn("canvas classification failed, using document profile", "error", err)
		return ProfileDocument
	}

	if len(res.FunctionCalls) > 0 && res.FunctionCalls[0].Name == tools.CreateVisualization {
		return ProfileVisualization
	}
	return ProfileDocument
}

func (g *Generator) systemInstruction(p Profile) string {
	if p == ProfileVisualization {
		return prompts.Visualization(g.lang)
	}
	return prompts.Document(g.lang)
}
