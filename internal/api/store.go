package api

import (
	"sync"

	"github.com/google/uuid"

	"github.com/quantforge/qpost/internal/graph"
	"github.com/quantforge/qpost/internal/qmodel"
)

// Session is one uploaded quantsim snapshot. Pass execution mutates
// Model in place, so all access goes through the session lock.
type Session struct {
	ID    string
	Graph *graph.Graph
	Model *qmodel.Model

	mu sync.Mutex
}

// Lock serializes pass execution and encoding reads for the session.
func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// SessionStore holds uploaded sessions keyed by id.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Create registers a new session for the given graph and model.
func (st *SessionStore) Create(g *graph.Graph, m *qmodel.Model) *Session {
	s := &Session{
		ID:    "sess_" + uuid.NewString(),
		Graph: g,
		Model: m,
	}
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Get looks a session up by id.
func (st *SessionStore) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Delete removes a session, reporting whether it existed.
func (st *SessionStore) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return false
	}
	delete(st.sessions, id)
	return true
}
