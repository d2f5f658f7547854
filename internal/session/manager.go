package session

import (
	"fmt"
	"sync"

	"github.com/oklog/ulid/v2"

	"sketchbook/internal/aeon"
)

// Manager owns every live session and serializes access to them. Connection
// handlers run on their own goroutines, so all routing into a session goes
// through the manager's lock.
type Manager struct {
	store SketchStore

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(store SketchStore) *Manager {
	return &Manager{
		store:    store,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session and returns its identifier. Identifiers are
// ULIDs, so sessions created by one backend sort by creation time.
func (m *Manager) Create() string {
	id := ulid.Make().String()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = New(id, m.store)
	return id
}

// Close drops a session after its connection goes away.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Perform routes one user action to its session and returns the resulting
// state changes.
func (m *Manager) Perform(action aeon.UserAction) ([]aeon.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[action.Session]
	if !ok {
		return nil, fmt.Errorf("unknown session %q", action.Session)
	}
	return s.Perform(action.Events)
}

// Refresh routes one refresh request to its session.
func (m *Manager) Refresh(refresh aeon.RefreshRequest) ([]aeon.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[refresh.Session]
	if !ok {
		return nil, fmt.Errorf("unknown session %q", refresh.Session)
	}
	return s.Refresh(refresh.Path)
}
