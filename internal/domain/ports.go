package domain

import (
	"context"
	"iter"
)

// LLMClient defines how the core application interacts with an LLM service.
type LLMClient interface {
	Generate(ctx context.Context, req LLMRequest) (*LLMResponse, error)

	// Stream yields text fragments in order. A non-nil error ends the stream.
	Stream(ctx context.Context, req LLMRequest) iter.Seq2[string, error]
}

// SessionStore defines session's persistence
type SessionStore interface {
	CreateSession(ctx context.Context, session *Session) error
	UpdateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, id SessionID) (*Session, error)
}

// MessageStore keeps the ordered timeline of each session.
// Messages are only ever appended or replaced by id.
type MessageStore interface {
	AppendMessage(ctx context.Context, msg *Message) error
	ReplaceMessage(ctx context.Context, msg *Message) error
	GetMessage(ctx context.Context, sessionID SessionID, id MessageID) (*Message, error)
	GetMessagesBySession(ctx context.Context, sessionID SessionID, limit int) ([]*Message, error)
}
