// Package session manages wizard session lifecycle. A session outlives a
// single websocket connection so a client can reconnect to the wizard it
// had open.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/wizard"
)

// Session holds per-client wizard state.
type Session struct {
	ID        string    `json:"id"`
	Actor     string    `json:"actor"`
	CreatedAt time.Time `json:"created_at"`

	mu           sync.Mutex
	lastActiveAt time.Time
	wizard       *wizard.Controller
}

// NewSession creates a session for actor.
func NewSession(actor string) *Session {
	now := time.Now()
	return &Session{
		ID:           uuid.New().String(),
		Actor:        actor,
		CreatedAt:    now,
		lastActiveAt: now,
	}
}

// Touch updates the last activity timestamp.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActiveAt = time.Now()
	s.mu.Unlock()
}

// LastActiveAt returns the last activity timestamp.
func (s *Session) LastActiveAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActiveAt
}

// Wizard returns the open wizard, or nil.
func (s *Session) Wizard() *wizard.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wizard != nil && s.wizard.Closed() {
		s.wizard = nil
	}
	return s.wizard
}

// SetWizard replaces the open wizard, closing the previous one.
func (s *Session) SetWizard(c *wizard.Controller) {
	s.mu.Lock()
	prev := s.wizard
	s.wizard = c
	s.lastActiveAt = time.Now()
	s.mu.Unlock()
	if prev != nil && prev != c {
		prev.Close()
	}
}

// CloseWizard closes and forgets the open wizard.
func (s *Session) CloseWizard() {
	s.SetWizard(nil)
}

// IsExpired returns true if the session has exceeded the given max age.
func (s *Session) IsExpired(maxAge time.Duration) bool {
	return time.Since(s.CreatedAt) > maxAge
}

// IsIdle returns true if the session has been idle longer than the timeout.
func (s *Session) IsIdle(timeout time.Duration) bool {
	return time.Since(s.LastActiveAt()) > timeout
}

// Manager handles session creation, lookup, and cleanup.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	maxAge      time.Duration
	idleTimeout time.Duration
}

// NewManager creates a session manager with the given timeouts.
func NewManager(maxAge, idleTimeout time.Duration) *Manager {
	return &Manager{
		sessions:    make(map[string]*Session),
		maxAge:      maxAge,
		idleTimeout: idleTimeout,
	}
}

// Create creates a new session and returns it.
func (m *Manager) Create(actor string) *Session {
	s := NewSession(actor)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get retrieves a session by ID. Returns nil if not found or expired.
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	if m.stale(s) {
		m.Remove(id)
		return nil
	}
	return s
}

// Remove deletes a session and closes its wizard.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.CloseWizard()
	}
}

// Len returns the number of tracked sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) stale(s *Session) bool {
	return s.IsExpired(m.maxAge) || s.IsIdle(m.idleTimeout)
}

// Cleanup removes all expired and idle sessions and returns how many were
// removed.
func (m *Manager) Cleanup() int {
	m.mu.Lock()
	var removed []*Session
	for id, s := range m.sessions {
		if m.stale(s) {
			delete(m.sessions, id)
			removed = append(removed, s)
		}
	}
	m.mu.Unlock()
	for _, s := range removed {
		s.CloseWizard()
	}
	return len(removed)
}

// Run calls Cleanup every interval until ctx is cancelled.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Cleanup()
		}
	}
}
