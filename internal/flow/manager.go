package flow

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("booking session not found")

// Manager owns the live wizard sessions. Mutations run under its lock via Do,
// which keeps each session operation atomic the same way the store's
// operations are.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	idle     time.Duration
	now      func() time.Time
}

func NewManager(idle time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		idle:     idle,
		now:      time.Now,
	}
}

func (m *Manager) Create(mode Mode, pre Draft) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.pruneLocked(now)

	s := newSession(uuid.NewString(), mode, pre, now)
	m.sessions[s.ID] = s
	return s
}

// Do runs fn against a session under the manager lock. Returning an error
// from fn propagates it unchanged.
func (m *Manager) Do(id string, fn func(*Session) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	s.LastActive = m.now()
	return fn(s)
}

// Delete discards a session and its draft.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

func (m *Manager) pruneLocked(now time.Time) {
	if m.idle <= 0 {
		return
	}
	for id, s := range m.sessions {
		if now.Sub(s.LastActive) > m.idle {
			delete(m.sessions, id)
		}
	}
}
