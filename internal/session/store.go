package session

import (
	"sync"

	"github.com/google/uuid"
)

// Store keeps one Session per user. Sessions share nothing with each other.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	opts     []Option
}

// NewStore creates an empty Store; opts are applied to every session it creates.
func NewStore(opts ...Option) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		opts:     opts,
	}
}

// Create starts a new session under a fresh random ID.
func (st *Store) Create() *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.createLocked()
}

// Get returns the session with the given ID.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	return s, ok
}

// GetOrCreate returns the session for id, creating a new one under a fresh ID
// when id is unknown. created reports whether a new session was made.
func (st *Store) GetOrCreate(id string) (s *Session, created bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[id]; ok && id != "" {
		return s, false
	}
	return st.createLocked(), true
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Wait blocks until every in-flight background generation has finished.
func (st *Store) Wait() {
	st.mu.Lock()
	all := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		all = append(all, s)
	}
	st.mu.Unlock()
	for _, s := range all {
		s.Wait()
	}
}

func (st *Store) createLocked() *Session {
	id := uuid.NewString()
	s := New(id, st.opts...)
	st.sessions[id] = s
	return s
}
