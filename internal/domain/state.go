package domain

// ConversationState is the per-session request lifecycle.
//
//	idle -> awaiting_route -> {generating_canvas | generating_search | awaiting_text} -> idle
//
// Image analysis, manual search and visualization enter their working state
// directly from idle.
type ConversationState string

const (
	StateIdle             ConversationState = "idle"
	StateAwaitingRoute    ConversationState = "awaiting_route"
	StateGeneratingCanvas ConversationState = "generating_canvas"
	StateGeneratingSearch ConversationState = "generating_search"
	StateAwaitingText     ConversationState = "awaiting_text"
)

var transitions = map[ConversationState][]ConversationState{
	StateIdle:             {StateAwaitingRoute, StateAwaitingText, StateGeneratingSearch, StateGeneratingCanvas},
	StateAwaitingRoute:    {StateGeneratingCanvas, StateGeneratingSearch, StateAwaitingText, StateIdle},
	StateGeneratingCanvas: {StateIdle},
	StateGeneratingSearch: {StateIdle},
	StateAwaitingText:     {StateIdle},
}

// CanTransition reports whether moving from s to next is allowed.
func (s ConversationState) CanTransition(next ConversationState) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}
