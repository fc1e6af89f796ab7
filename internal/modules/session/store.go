package session

import (
	"sync"

	"github.com/amrahli/newsgate/internal/modules/linkage/domain"
)

// Session holds the transient state of one operator's multi-step dialogue.
// Sessions live only in process memory; a restart drops them all and
// operators must re-authenticate.
type Session struct {
	Step             Step
	LinkageName      string
	Resources        []domain.Resource
	AllowedLinkages  []string
	ModerationChatID int64
}

// Store keeps per-operator sessions and the process-lifetime set of
// authenticated operators.
type Store struct {
	mu            sync.Mutex
	sessions      map[int64]*Session
	authenticated map[int64]struct{}
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		sessions:      make(map[int64]*Session),
		authenticated: make(map[int64]struct{}),
	}
}

// Get returns the live session of an operator, if any.
func (s *Store) Get(operatorID int64) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[operatorID]
	return sess, ok
}

// Set replaces the operator's session.
func (s *Store) Set(operatorID int64, sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[operatorID] = sess
}

// Clear drops the operator's session, returning to the idle state.
func (s *Store) Clear(operatorID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, operatorID)
}

// Authenticate records the operator as authenticated for the process lifetime.
func (s *Store) Authenticate(operatorID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated[operatorID] = struct{}{}
}

// IsAuthenticated reports whether the operator passed the password gate.
func (s *Store) IsAuthenticated(operatorID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.authenticated[operatorID]
	return ok
}
