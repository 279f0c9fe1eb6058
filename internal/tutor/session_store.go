// Package tutor implements the tutoring orchestration engine: per-learner
// session state machines, collaborator request correlation, grading, and
// recommendation validation.
package tutor

import (
	"time"

	"github.com/eduagents/tutord/internal/domain"
)

// SessionStore holds one Session record per learner identity. It is a pure
// data structure with no internal locking: the orchestration engine is its
// sole owner and serializes all access through the event loop.
type SessionStore struct {
	sessions map[string]*domain.Session
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*domain.Session)}
}

// Get returns the session for identity, or nil when absent.
func (s *SessionStore) Get(identity string) *domain.Session {
	return s.sessions[identity]
}

// GetOrCreate returns the session for identity, creating a fresh one at the
// subject-selection menu on first contact.
func (s *SessionStore) GetOrCreate(identity string) *domain.Session {
	if sess, ok := s.sessions[identity]; ok {
		return sess
	}
	now := time.Now()
	sess := &domain.Session{
		Identity:  identity,
		State:     domain.AwaitingSubjectSelection,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessions[identity] = sess
	return sess
}

// Put stores the session as the record of truth for its identity.
func (s *SessionStore) Put(sess *domain.Session) {
	sess.UpdatedAt = time.Now()
	s.sessions[sess.Identity] = sess
}

// Len returns the number of tracked sessions.
func (s *SessionStore) Len() int {
	return len(s.sessions)
}
