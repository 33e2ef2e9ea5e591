package firestore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/canvas-agent/internal/domain"
)

// Store shares session state between server replicas. It implements both
// domain.SessionStore and domain.MessageStore.
type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore store.
// Uses the project passed (CANVAS_GCP_PROJECT).
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) sessionsCol() *firestore.CollectionRef {
	return s.client.Collection("canvas_sessions")
}

func (s *Store) sessionDoc(id domain.SessionID) *firestore.DocumentRef {
	return s.sessionsCol().Doc(string(id))
}

func (s *Store) messagesCol(sessionID domain.SessionID) *firestore.CollectionRef {
	return s.sessionDoc(sessionID).Collection("messages")
}

func (s *Store) messageDoc(sessionID domain.SessionID, msgID domain.MessageID) *firestore.DocumentRef {
	return s.messagesCol(sessionID).Doc(string(msgID))
}

func notFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type sessionDoc struct {
	Title     string    `firestore:"title"`
	CreatedAt time.Time `firestore:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at"`

	// MessageSeq is the seq of the last appended message.
	MessageSeq int64 `firestore:"message_seq"`
}

type sourceDoc struct {
	URI   string `firestore:"uri"`
	Title string `firestore:"title"`
}

type messageDoc struct {
	Seq       int64     `firestore:"seq"` // insertion order within the session
	Role      string    `firestore:"role"`
	Kind      string    `firestore:"kind"`
	Text      string    `firestore:"text"`
	CreatedAt time.Time `firestore:"created_at"`

	ImageData     []byte `firestore:"image_data,omitempty"`
	ImageMimeType string `firestore:"image_mime_type,omitempty"`

	CanvasTitle      *string `firestore:"canvas_title"`
	CanvasKind       string  `firestore:"canvas_kind,omitempty"`
	CanvasContent    string  `firestore:"canvas_content,omitempty"`
	CanvasCompletion string  `firestore:"canvas_completion,omitempty"`

	SearchQuery   *string     `firestore:"search_query"`
	SearchSources []sourceDoc `firestore:"search_sources,omitempty"`
}

func toMessageDoc(msg *domain.Message) messageDoc {
	doc := messageDoc{
		Role:      string(msg.Role),
		Kind:      string(msg.Kind),
		Text:      msg.Text,
		CreatedAt: msg.CreatedAt,
	}
	if msg.Image != nil {
		doc.ImageData = msg.Image.Data
		doc.ImageMimeType = msg.Image.MimeType
	}
	if c := msg.Canvas; c != nil {
		title := c.Title
		doc.CanvasTitle = &title
		doc.CanvasCompletion = c.Completion
		if c.Artifact != nil {
			doc.CanvasKind = string(c.Artifact.Kind)
			doc.CanvasContent = c.Artifact.Content
		}
	}
	if sp := msg.Search; sp != nil {
		query := sp.Query
		doc.SearchQuery = &query
		for _, src := range sp.Sources {
			doc.SearchSources = append(doc.SearchSources, sourceDoc{URI: src.URI, Title: src.Title})
		}
	}
	return doc
}

// appendedDoc is the document for a new message placed after every
// message already in the session.
func appendedDoc(session sessionDoc, msg *domain.Message) messageDoc {
	doc := toMessageDoc(msg)
	doc.Seq = session.MessageSeq + 1
	return doc
}

// replacementDoc is the document for msg taking the place of existing.
func replacementDoc(existing messageDoc, msg *domain.Message) messageDoc {
	doc := toMessageDoc(msg)
	doc.Seq = existing.Seq
	return doc
}

func fromMessageDoc(sessionID domain.SessionID, id string, doc messageDoc) *domain.Message {
	msg := &domain.Message{
		ID:        domain.MessageID(id),
		SessionID: sessionID,
		Role:      domain.Role(doc.Role),
		Kind:      domain.MessageKind(doc.Kind),
		Text:      doc.Text,
		CreatedAt: doc.CreatedAt,
	}
	if doc.ImageMimeType != "" {
		msg.Image = &domain.Image{Data: doc.ImageData, MimeType: doc.ImageMimeType}
	}
	if doc.CanvasTitle != nil {
		msg.Canvas = &domain.CanvasPayload{Title: *doc.CanvasTitle, Completion: doc.CanvasCompletion}
		if doc.CanvasKind != "" {
			msg.Canvas.Artifact = &domain.CanvasArtifact{
				Kind:    domain.CanvasKind(doc.CanvasKind),
				Content: doc.CanvasContent,
			}
		}
	}
	if doc.SearchQuery != nil {
		msg.Search = &domain.SearchPayload{Query: *doc.SearchQuery}
		for _, src := range doc.SearchSources {
			msg.Search.Sources = append(msg.Search.Sources, domain.GroundingSource{URI: src.URI, Title: src.Title})
		}
	}
	return msg
}

// ─────────────────────────────────────────
// SessionStore implementation
// ─────────────────────────────────────────

func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	doc := sessionDoc{
		Title:     session.Title,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}

	_, err := s.sessionDoc(session.ID).Create(ctx, doc)
	if err != nil {
		return fmt.Errorf("firestore CreateSession: %w", err)
	}
	return nil
}

func (s *Store) UpdateSession(ctx context.Context, session *domain.Session) error {
	_, err := s.sessionDoc(session.ID).Update(ctx, []firestore.Update{
		{Path: "title", Value: session.Title},
		{Path: "updated_at", Value: session.UpdatedAt},
	})
	if err != nil {
		if notFound(err) {
			return fmt.Errorf("session %s: %w", session.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("firestore UpdateSession: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	snap, err := s.sessionDoc(id).Get(ctx)
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("firestore GetSession: %w", err)
	}

	var doc sessionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetSession decode: %w", err)
	}

	return &domain.Session{
		ID:        id,
		Title:     doc.Title,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

// ─────────────────────────────────────────
// MessageStore implementation
// ─────────────────────────────────────────

// AppendMessage assigns the next sequence number of the session, so the
// timeline order does not depend on timestamps or document ids.
func (s *Store) AppendMessage(ctx context.Context, msg *domain.Message) error {
	sessionRef := s.sessionDoc(msg.SessionID)
	ref := s.messageDoc(msg.SessionID, msg.ID)

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(sessionRef)
		if err != nil {
			return err
		}
		var session sessionDoc
		if err := snap.DataTo(&session); err != nil {
			return err
		}

		doc := appendedDoc(session, msg)
		if err := tx.Update(sessionRef, []firestore.Update{{Path: "message_seq", Value: doc.Seq}}); err != nil {
			return err
		}
		return tx.Create(ref, doc)
	})
	if err != nil {
		if notFound(err) {
			return fmt.Errorf("session %s: %w", msg.SessionID, domain.ErrNotFound)
		}
		return fmt.Errorf("firestore AppendMessage: %w", err)
	}
	return nil
}

// ReplaceMessage overwrites an existing message document. The stored seq
// keeps the message in its original position.
func (s *Store) ReplaceMessage(ctx context.Context, msg *domain.Message) error {
	ref := s.messageDoc(msg.SessionID, msg.ID)

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		var existing messageDoc
		if err := snap.DataTo(&existing); err != nil {
			return err
		}
		return tx.Set(ref, replacementDoc(existing, msg))
	})
	if err != nil {
		if notFound(err) {
			return fmt.Errorf("message %s: %w", msg.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("firestore ReplaceMessage: %w", err)
	}
	return nil
}

func (s *Store) GetMessage(ctx context.Context, sessionID domain.SessionID, id domain.MessageID) (*domain.Message, error) {
	snap, err := s.messageDoc(sessionID, id).Get(ctx)
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("message %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("firestore GetMessage: %w", err)
	}

	var doc messageDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode messageDoc: %w", err)
	}
	return fromMessageDoc(sessionID, snap.Ref.ID, doc), nil
}

// GetMessagesBySession returns the last limit messages in chronological
// order, or all when limit <= 0.
func (s *Store) GetMessagesBySession(ctx context.Context, sessionID domain.SessionID, limit int) ([]*domain.Message, error) {
	q := s.messagesCol(sessionID).OrderBy("seq", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.Message
	for {
		snap, err := iter.Next()
		if err != nil {
			if errors.Is(err, iterator.Done) {
				break
			}
			return nil, fmt.Errorf("firestore GetMessagesBySession: %w", err)
		}

		var doc messageDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode messageDoc: %w", err)
		}
		out = append(out, fromMessageDoc(sessionID, snap.Ref.ID, doc))
	}

	slices.Reverse(out)
	return out, nil
}
