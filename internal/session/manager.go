package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"
	"time"

	"cartsync/internal/checkout"
	"cartsync/internal/engine"
	"cartsync/internal/store"
)

var ErrInvalidToken = errors.New("invalid session token")

// Session bundles one visitor's cart machinery. The one-shot merge flag
// lives on the session's engine, never in package state, so sessions are
// fully isolated from each other.
type Session struct {
	Token     string
	Store     *store.Store
	Engine    *engine.Engine
	Checkout  *checkout.Flow
	CreatedAt time.Time
	expiresAt time.Time
}

// Builder wires the store, gateway, engine and checkout flow for a fresh
// session token.
type Builder func(token string) *Session

// Manager issues and resolves session tokens. Expired sessions are evicted
// lazily on lookup.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	build    Builder
}

func NewManager(ttl time.Duration, build Builder) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		build:    build,
	}
}

// Issue creates a new session with a random token.
func (m *Manager) Issue() (*Session, error) {
	token, err := randomToken()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	sess := m.build(token)
	sess.Token = token
	sess.CreatedAt = now
	sess.expiresAt = now.Add(m.ttl)

	m.mu.Lock()
	m.sessions[token] = sess
	m.mu.Unlock()
	return sess, nil
}

// Lookup resolves a token to its session, evicting it when expired.
func (m *Manager) Lookup(token string) (*Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[token]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrInvalidToken
	}
	if time.Now().After(sess.expiresAt) {
		m.mu.Lock()
		delete(m.sessions, token)
		m.mu.Unlock()
		return nil, ErrInvalidToken
	}
	return sess, nil
}

// TTLSeconds exposes the session lifetime for the issue response.
func (m *Manager) TTLSeconds() int {
	return int(m.ttl.Seconds())
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
