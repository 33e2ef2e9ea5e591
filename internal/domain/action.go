package domain

// RoutedAction is the Request Router's decision for one utterance.
// Implementations are TextReply, CanvasRequest and SearchRequest.
type RoutedAction interface {
	routedAction()
}

// TextReply means the model answered directly.
type TextReply struct {
	Content string
}

// CanvasRequest asks for a canvas artifact built from Prompt.
type CanvasRequest struct {
	Prompt string
}

// SearchRequest asks for a web-grounded answer to Query.
type SearchRequest struct {
	Query string
}

func (TextReply) routedAction()     {}
func (CanvasRequest) routedAction() {}
func (SearchRequest) routedAction() {}
