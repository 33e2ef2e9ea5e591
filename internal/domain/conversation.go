package domain

import (
	"errors"
	"fmt"
)

// Image is an inline attachment on a user message.
type Image struct {
	Data     []byte
	MimeType string
}

// CanvasArtifact is a finalized canvas document.
type CanvasArtifact struct {
	Kind    CanvasKind
	Content string
}

// MediaType is the MIME type used when exporting the artifact.
func (a CanvasArtifact) MediaType() string {
	if a.Kind == CanvasHTML {
		return "text/html"
	}
	return "text/markdown"
}

func (a CanvasArtifact) FileExtension() string {
	if a.Kind == CanvasHTML {
		return "html"
	}
	return "md"
}

func (a CanvasArtifact) FileName() string {
	return "canvas_export." + a.FileExtension()
}

// GroundingSource is a web page cited by a grounded search answer.
type GroundingSource struct {
	URI   string
	Title string
}

// CanvasPayload is set on canvas-drafting and canvas-card messages.
type CanvasPayload struct {
	Title      string
	Artifact   *CanvasArtifact // nil while drafting
	Completion string
}

// SearchPayload is set on search-thinking and search-result messages.
type SearchPayload struct {
	Query   string
	Sources []GroundingSource
}

// Message represents any entry of a session timeline (user or model).
type Message struct {
	ID        MessageID
	SessionID SessionID
	Role      Role
	Kind      MessageKind
	Text      string
	Image     *Image
	CreatedAt Timestamp

	Canvas *CanvasPayload
	Search *SearchPayload
}

// Validate checks that the kind-specific payloads match the message kind.
func (m *Message) Validate() error {
	if m.ID == "" {
		return errors.New("message id is required")
	}
	if m.Role == RoleUser {
		if m.Kind != KindText {
			return fmt.Errorf("user message cannot be of kind %q", m.Kind)
		}
		if m.Canvas != nil || m.Search != nil {
			return errors.New("user message cannot carry canvas or search payload")
		}
		return nil
	}

	switch m.Kind {
	case KindText:
		if m.Canvas != nil || m.Search != nil {
			return errors.New("text message cannot carry canvas or search payload")
		}
	case KindCanvasDrafting, KindCanvasCard:
		if m.Canvas == nil || m.Search != nil {
			return fmt.Errorf("%s message must carry only a canvas payload", m.Kind)
		}
		if m.Kind == KindCanvasCard && m.Canvas.Artifact == nil {
			return errors.New("canvas-card message has no artifact")
		}
	case KindSearchThinking, KindSearchResult:
		if m.Search == nil || m.Canvas != nil {
			return fmt.Errorf("%s message must carry only a search payload", m.Kind)
		}
	default:
		return fmt.Errorf("unknown message kind %q", m.Kind)
	}
	return nil
}

// Session groups the messages of one conversation.
type Session struct {
	ID        SessionID
	Title     string
	CreatedAt Timestamp
	UpdatedAt Timestamp
}
