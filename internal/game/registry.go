package game

import (
	"sort"
	"sync"
)

// Registry keeps one Session per chat.
// It provides a thread-safe way to create and look up sessions by chat ID.
type Registry struct {
	sessions map[int64]*Session
	factory  func(id int64) *Session
	mu       sync.RWMutex
}

// NewRegistry creates a registry that builds missing sessions with factory.
func NewRegistry(factory func(id int64) *Session) *Registry {
	return &Registry{
		sessions: make(map[int64]*Session),
		factory:  factory,
	}
}

// Get retrieves the session for a chat.
// Returns the session and true if found, nil and false otherwise.
func (r *Registry) Get(id int64) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// GetOrCreate returns the chat's session, creating it on first use.
// The boolean is true when a new session was created.
func (r *Registry) GetOrCreate(id int64) (*Session, bool) {
	if s, ok := r.Get(id); ok {
		return s, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another handler may have created it between the two locks.
	if s, ok := r.sessions[id]; ok {
		return s, false
	}
	s := r.factory(id)
	r.sessions[id] = s
	return s, true
}

// Remove drops a chat's session.
// Returns true if the session was found and removed, false otherwise.
func (r *Registry) Remove(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; ok {
		delete(r.sessions, id)
		return true
	}
	return false
}

// IDs returns the ids of all sessions in ascending order.
func (r *Registry) IDs() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Count returns the number of sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Wait blocks until background work of every session has finished.
func (r *Registry) Wait() {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	for _, s := range sessions {
		s.Wait()
	}
}
