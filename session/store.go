// Package session keeps in-flight registration conversations in memory.
// Nothing here survives a restart; finished submissions live in the
// spreadsheet only.
package session

import (
	"sync"
	"time"

	"regbot/model"
)

// Store maps a user id to their single active session. The transport
// library runs handlers on separate goroutines and the hourly reporter
// sweeps concurrently, so access is guarded.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*model.Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[int64]*model.Session)}
}

// Get returns the user's session if one exists and refreshes its
// last-activity stamp.
func (s *Store) Get(userID int64) (*model.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if ok {
		sess.LastActivity = time.Now()
	}
	return sess, ok
}

// Reset discards any previous session for the user and returns a fresh one.
func (s *Store) Reset(userID int64) *model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := &model.Session{
		UserID:       userID,
		State:        model.StateIdle,
		Fields:       make(map[string]string),
		LastActivity: time.Now(),
	}
	s.sessions[userID] = sess
	return sess
}

func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// Sweep drops sessions idle for longer than maxIdle and returns how many
// were removed. Abandoned conversations would otherwise accumulate forever.
func (s *Store) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if sess.LastActivity.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
