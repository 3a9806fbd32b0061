package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/retriever/internal/backend"
)

// Snapshot represents the latest session data available to the UI.
type Snapshot struct {
	User                backend.User
	HasUser             bool
	UnreadCount         int
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive poll failures
}

// IsOffline returns true when the API has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// IsUnauthorized reports whether the last poll was rejected for credentials.
func (s Snapshot) IsUnauthorized() bool {
	return backend.IsUnauthorized(s.LastError)
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update records the outcome of one poll. When err is non-nil the previous
// data is kept but the error is recorded for visibility, except that a
// rejected token also forgets the user.
func (s *Store) Update(user *backend.User, unread int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = time.Now()
		s.snapshot.ConsecutiveFailures++
		if backend.IsUnauthorized(err) {
			s.snapshot.User = backend.User{}
			s.snapshot.HasUser = false
			s.snapshot.UnreadCount = 0
		}
		return
	}

	if user != nil {
		s.snapshot.User = *user
		s.snapshot.HasUser = true
	} else {
		s.snapshot.User = backend.User{}
		s.snapshot.HasUser = false
	}
	s.snapshot.UnreadCount = unread
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// SetUnread overrides the unread count, e.g. right after mark-all-read.
func (s *Store) SetUnread(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 0 {
		n = 0
	}
	s.snapshot.UnreadCount = n
}

// User returns the signed-in user, or nil before the first successful poll.
func (s *Store) User() *backend.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.snapshot.HasUser {
		return nil
	}
	u := s.snapshot.User
	return &u
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}
