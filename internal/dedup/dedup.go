package dedup

import (
	"sync"

	"github.com/ejohansen/mailwatch/internal/mailbox"
)

// Set tracks message identifiers already acted upon during one
// monitoring run. It lives in memory only: a fresh Set is created at
// run start and nothing survives a restart. Once marked, an identifier
// stays marked for the rest of the run.
type Set struct {
	mu  sync.Mutex
	ids map[mailbox.MessageID]struct{}
}

// New creates an empty set.
func New() *Set {
	return &Set{ids: make(map[mailbox.MessageID]struct{})}
}

// Mark records an identifier as processed.
func (s *Set) Mark(id mailbox.MessageID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[id] = struct{}{}
}

// Seen reports whether an identifier has been processed this run.
func (s *Set) Seen(id mailbox.MessageID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

// Count returns the number of processed identifiers.
func (s *Set) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}
