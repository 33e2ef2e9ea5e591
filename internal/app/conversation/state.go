package conversation

import (
	"errors"
	"fmt"
	"sync"

	"github.com/PabloGalante/canvas-agent/internal/domain"
)

// ErrBusy is returned when a session already has a request in flight.
var ErrBusy = errors.New("a request is already in progress for this session")

// machine tracks the request lifecycle of one session.
type machine struct {
	mu    sync.Mutex
	state domain.ConversationState
}

func (m *machine) current() domain.ConversationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// begin leaves idle for next, or fails with ErrBusy.
func (m *machine) begin(next domain.ConversationState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != domain.StateIdle {
		return ErrBusy
	}
	if !m.state.CanTransition(next) {
		return fmt.Errorf("invalid transition %s -> %s", m.state, next)
	}
	m.state = next
	return nil
}

func (m *machine) advance(next domain.ConversationState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.CanTransition(next) {
		return fmt.Errorf("invalid transition %s -> %s", m.state, next)
	}
	m.state = next
	return nil
}

func (m *machine) reset() {
	m.mu.Lock()
	m.state = domain.StateIdle
	m.mu.Unlock()
}

type machines struct {
	mu sync.Mutex
	m  map[domain.SessionID]*machine
}

func (ms *machines) get(id domain.SessionID) *machine {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.m == nil {
		ms.m = make(map[domain.SessionID]*machine)
	}
	mc, ok := ms.m[id]
	if !ok {
		mc = &machine{state: domain.StateIdle}
		ms.m[id] = mc
	}
	return mc
}
