package auth

import (
	"context"
	"sync"
)

// NewInMemorySessionStore returns a SessionStore backed by an in-memory map,
// keyed by user so each user holds at most one active credential.
func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{sessions: make(map[string]Session)}
}

// InMemorySessionStore implements SessionStore for tests and local
// development.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session // keyed by user id
}

// Save replaces the user's active session record.
func (s *InMemorySessionStore) Save(_ context.Context, session Session) error {
	s.mu.Lock()
	s.sessions[session.UserID] = session
	s.mu.Unlock()
	return nil
}

// FindByToken retrieves the session holding the provided refresh token.
func (s *InMemorySessionStore) FindByToken(_ context.Context, refreshToken string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, session := range s.sessions {
		if session.RefreshToken == refreshToken {
			return session, nil
		}
	}
	return Session{}, ErrSessionNotFound
}

// DeleteByUser removes the user's active session.
func (s *InMemorySessionStore) DeleteByUser(_ context.Context, userID string) error {
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
	return nil
}

// Has reports whether the refresh token is currently on record. Useful for
// tests.
func (s *InMemorySessionStore) Has(refreshToken string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, session := range s.sessions {
		if session.RefreshToken == refreshToken {
			return true
		}
	}
	return false
}
