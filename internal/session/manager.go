package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session binds a bearer token to an account for the lifetime of a login.
type Session struct {
	Token     string
	Email     string
	CreatedAt time.Time
}

// Manager owns the token → session table. TTL of zero means sessions never
// expire on their own; logout is the only teardown.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
}

func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Issue creates a fresh session for the given account email.
func (m *Manager) Issue(email string) *Session {
	session := &Session{
		Token:     uuid.NewString(),
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	m.mu.Lock()
	m.sessions[session.Token] = session
	m.mu.Unlock()
	return session
}

// Resolve returns the session for a token, evicting it if expired.
func (m *Manager) Resolve(token string) (*Session, bool) {
	m.mu.RLock()
	session, ok := m.sessions[token]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if m.ttl > 0 && time.Since(session.CreatedAt) > m.ttl {
		m.Revoke(token)
		return nil, false
	}
	return session, true
}

func (m *Manager) Revoke(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

// RevokeAll drops every session bound to the given email.
func (m *Manager) RevokeAll(email string) {
	m.mu.Lock()
	for token, session := range m.sessions {
		if session.Email == email {
			delete(m.sessions, token)
		}
	}
	m.mu.Unlock()
}
