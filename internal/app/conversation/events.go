package conversation

import "github.com/PabloGalante/canvas-agent/internal/domain"

type EventType string

const (
	EventMessageAppended EventType = "message_appended"
	EventMessageReplaced EventType = "message_replaced"
	EventCanvasFragment  EventType = "canvas_fragment"
	EventStateChanged    EventType = "state_changed"
)

// Event is a progress notification for a session. Events of one request are
// delivered in order on the goroutine serving that request.
type Event struct {
	Type      EventType
	SessionID domain.SessionID

	Message   *domain.Message          // appended and replaced
	MessageID domain.MessageID         // canvas fragments: the placeholder id
	Canvas    *domain.CanvasArtifact   // canvas fragments
	State     domain.ConversationState // state changes
}

// EventFunc receives events. A nil EventFunc drops them.
type EventFunc func(Event)

func (f EventFunc) emit(e Event) {
	if f != nil {
		f(e)
	}
}
