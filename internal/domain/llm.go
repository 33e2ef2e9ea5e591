package domain

// ToolParam is a single string-typed argument of a tool declaration.
type ToolParam struct {
	Name        string
	Description string
	Required    bool
}

// ToolDeclaration describes a function the model may choose to call.
type ToolDeclaration struct {
	Name        string
	Description string
	Params      []ToolParam
}

// LLMRequest is one call to the language model.
type LLMRequest struct {
	Model             string
	Text              string
	Image             *Image
	SystemInstruction string
	Tools             []ToolDeclaration

	// SearchGrounding enables provider-side web search.
	SearchGrounding bool

	// ThinkingBudget is passed through when > 0.
	ThinkingBudget int32
}

// FunctionCall is a tool invocation chosen by the model.
type FunctionCall struct {
	Name string
	Args map[string]any
}

// LLMResponse is the non-streaming result of a model call.
type LLMResponse struct {
	Text          string
	FunctionCalls []FunctionCall

	// GroundingRefs are raw, possibly duplicated, references.
	GroundingRefs []GroundingSource
}
