package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/PabloGalante/canvas-agent/internal/domain"
)

// MessageStore keeps each session's messages in insertion order.
type MessageStore struct {
	mu       sync.RWMutex
	messages map[domain.SessionID][]*domain.Message
}

func NewMessageStore() *MessageStore {
	return &MessageStore{
		messages: make(map[domain.SessionID][]*domain.Message),
	}
}

func (s *MessageStore) AppendMessage(_ context.Context, msg *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(msg.SessionID, msg.ID) >= 0 {
		return fmt.Errorf("message %s already exists", msg.ID)
	}

	s.messages[msg.SessionID] = append(s.messages[msg.SessionID], msg)
	return nil
}

// ReplaceMessage swaps the message with the same id, keeping its position.
func (s *MessageStore) ReplaceMessage(_ context.Context, msg *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(msg.SessionID, msg.ID)
	if i < 0 {
		return fmt.Errorf("message %s: %w", msg.ID, domain.ErrNotFound)
	}

	s.messages[msg.SessionID][i] = msg
	return nil
}

func (s *MessageStore) GetMessage(_ context.Context, sessionID domain.SessionID, id domain.MessageID) (*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(sessionID, id)
	if i < 0 {
		return nil, fmt.Errorf("message %s: %w", id, domain.ErrNotFound)
	}
	return s.messages[sessionID][i], nil
}

// GetMessagesBySession returns the last limit messages, or all when limit <= 0.
func (s *MessageStore) GetMessagesBySession(_ context.Context, sessionID domain.SessionID, limit int) ([]*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages[sessionID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return append([]*domain.Message(nil), msgs...), nil
}

func (s *MessageStore) indexOf(sessionID domain.SessionID, id domain.MessageID) int {
	for i, m := range s.messages[sessionID] {
		if m.ID == id {
			return i
		}
	}
	return -1
}
