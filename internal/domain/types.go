package domain

import (
	"errors"
	"time"
)

type SessionID string
type MessageID string

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// MessageKind decides how the UI renders a message.
type MessageKind string

const (
	KindText           MessageKind = "text"
	KindCanvasDrafting MessageKind = "canvas-drafting" // placeholder
	KindCanvasCard     MessageKind = "canvas-card"
	KindSearchThinking MessageKind = "search-thinking" // placeholder
	KindSearchResult   MessageKind = "search-result"
)

// IsPlaceholder reports whether messages of this kind are waiting to be
// replaced by a generator result.
func (k MessageKind) IsPlaceholder() bool {
	return k == KindCanvasDrafting || k == KindSearchThinking
}

type CanvasKind string

const (
	CanvasHTML     CanvasKind = "html"
	CanvasMarkdown CanvasKind = "markdown"
)

type Timestamp = time.Time

// ErrNotFound is returned by stores when a session or message does not exist.
var ErrNotFound = errors.New("not found")
