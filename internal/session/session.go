package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"charityhub/internal/model"
)

// TTL is the fixed session lifetime, measured from issuance (not sliding).
const TTL = 7 * 24 * time.Hour

// Session binds a token to the (username, role) snapshot taken at login time.
type Session struct {
	Token     string
	Username  string
	Role      model.Role
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Manager holds sessions in process memory, keyed by token. Sessions are
// deliberately ephemeral: nothing survives a restart.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Create issues a session for the given identity and returns it. The token is
// 32 crypto-random bytes, hex encoded.
func (m *Manager) Create(username string, role model.Role) (*Session, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	now := m.now().UTC()
	s := &Session{
		Token:     hex.EncodeToString(tokenBytes),
		Username:  username,
		Role:      role,
		CreatedAt: now,
		ExpiresAt: now.Add(TTL),
	}

	m.mu.Lock()
	m.sessions[s.Token] = s
	m.mu.Unlock()
	return s, nil
}

// Resolve returns the session bound to token, or nil for an unknown or expired
// token. Expiry is checked lazily here; an expired entry is dropped on the
// lookup that discovers it.
func (m *Manager) Resolve(token string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok {
		return nil
	}
	if !m.now().UTC().Before(s.ExpiresAt) {
		delete(m.sessions, token)
		return nil
	}
	return s
}

// Destroy removes the session for token. Destroying an unknown or expired
// token is a no-op.
func (m *Manager) Destroy(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

// Count returns the number of stored sessions, expired entries included.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
