package llm

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"sync"

	"github.com/PabloGalante/canvas-agent/internal/app/tools"
	"github.com/PabloGalante/canvas-agent/internal/domain"
)

// MockLLM is a deterministic LLMClient for local mode and tests.
// GenerateFunc and StreamFunc override the built-in keyword behaviour.
type MockLLM struct {
	GenerateFunc func(ctx context.Context, req domain.LLMRequest) (*domain.LLMResponse, error)
	StreamFunc   func(ctx context.Context, req domain.LLMRequest) iter.Seq2[string, error]

	mu    sync.Mutex
	calls []domain.LLMRequest
}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

// Calls returns every request received so far, in order.
func (m *MockLLM) Calls() []domain.LLMRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.LLMRequest(nil), m.calls...)
}

func (m *MockLLM) record(req domain.LLMRequest) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()
}

func (m *MockLLM) Generate(ctx context.Context, req domain.LLMRequest) (*domain.LLMResponse, error) {
	m.record(req)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}

	switch {
	case req.Image != nil:
		return &domain.LLMResponse{
			Text: fmt.Sprintf("I see a %s image (%d bytes). %s", req.Image.MimeType, len(req.Image.Data), req.Text),
		}, nil
	case req.SearchGrounding:
		return &domain.LLMResponse{
			Text: fmt.Sprintf("**%s**\n\n- Mock result (Source: [Example](https://example.com))", req.Text),
			GroundingRefs: []domain.GroundingSource{
				{URI: "https://example.com", Title: "Example"},
				{URI: "https://example.com", Title: "Example (duplicate)"},
			},
		}, nil
	case hasTool(req, tools.CreateVisualization):
		name := tools.CreateDocument
		if containsAny(req.Text, "chart", "graph", "dashboard", "biểu đồ", "đồ thị") {
			name = tools.CreateVisualization
		}
		return &domain.LLMResponse{FunctionCalls: []domain.FunctionCall{{Name: name}}}, nil
	case hasTool(req, "createOnCanvas"):
		if containsAny(req.Text, "draw", "chart", "create", "document", "vẽ", "biểu đồ", "tạo", "tài liệu") {
			return &domain.LLMResponse{FunctionCalls: []domain.FunctionCall{
				{Name: "createOnCanvas", Args: map[string]any{"prompt": req.Text}},
			}}, nil
		}
		if containsAny(req.Text, "news", "today", "latest", "tin tức", "hôm nay", "mới nhất") {
			return &domain.LLMResponse{FunctionCalls: []domain.FunctionCall{
				{Name: "deepSearch", Args: map[string]any{"query": req.Text}},
			}}, nil
		}
	}

	return &domain.LLMResponse{Text: fmt.Sprintf("You said %q.", req.Text)}, nil
}

func (m *MockLLM) Stream(ctx context.Context, req domain.LLMRequest) iter.Seq2[string, error] {
	m.record(req)
	if m.StreamFunc != nil {
		return m.StreamFunc(ctx, req)
	}

	if strings.Contains(req.SystemInstruction, "renderChart") {
		return StreamFragments(
			"```html\n<!DOCTYPE html>\n<html><body>",
			"<h1>Mock visualization</h1>",
			"</body></html>\n```",
		)
	}
	return StreamFragments(
		"---\ntitle: \"Mock document\"\nmath: katex\n---\n\n",
		"# Mock document\n\n",
		"Inline math $x^2$.\n",
	)
}

// StreamFragments yields each fragment in order.
func StreamFragments(fragments ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, f := range fragments {
			if !yield(f, nil) {
				return
			}
		}
	}
}

// StreamFailing yields the fragments and then err.
func StreamFailing(err error, fragments ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, f := range fragments {
			if !yield(f, nil) {
				return
			}
		}
		yield("", err)
	}
}

func hasTool(req domain.LLMRequest, name string) bool {
	for _, t := range req.Tools {
		if t.Name == name {
			return true
		}
	}
	return false
}

func containsAny(s string, words ...string) bool {
	s = strings.ToLower(s)
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
