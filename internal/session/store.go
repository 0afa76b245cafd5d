package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// NotFoundError indicates an unknown or expired session ID.
type NotFoundError struct {
	ID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("session %s not found", e.ID)
}

// Store keeps live session records keyed by ID. Records are in-memory
// only; a restart drops all sessions.
type Store struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Record
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[uuid.UUID]*Record)}
}

// Create registers and returns a new session record.
func (s *Store) Create() *Record {
	r := NewRecord()
	s.mu.Lock()
	s.sessions[r.ID] = r
	s.mu.Unlock()
	return r
}

// Get looks up a session by ID.
func (s *Store) Get(id uuid.UUID) (*Record, error) {
	s.mu.RLock()
	r, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return r, nil
}

// Delete removes a session. Deleting an unknown ID is a no-op.
func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Prune drops sessions idle for longer than maxIdle and reports how many
// were removed.
func (s *Store) Prune(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, r := range s.sessions {
		if r.LastUpdated().Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
