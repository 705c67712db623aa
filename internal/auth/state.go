// Package auth holds authentication primitives shared by the service layer.
package auth

import (
	"sync"
	"time"
)

// StateStore tracks pending OAuth login states. A state is single-use:
// Consume reports true at most once per Put, and entries lapse after a TTL
// even if never consumed. The in-memory implementation below is suitable
// for a single-instance deployment; a multi-instance deployment would back
// this interface with a shared store.
type StateStore interface {
	Put(state string)
	Consume(state string) bool
}

type MemoryStateStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]time.Time
}

func NewMemoryStateStore(ttl time.Duration) *MemoryStateStore {
	return &MemoryStateStore{
		ttl:     ttl,
		entries: make(map[string]time.Time),
	}
}

func (s *MemoryStateStore) Put(state string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()
	s.entries[state] = time.Now()
}

// Consume removes the state and reports whether it was present and
// unexpired. Removal happens even for expired entries, so replaying a
// state is never possible.
func (s *MemoryStateStore) Consume(state string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	issuedAt, ok := s.entries[state]
	if !ok {
		return false
	}
	delete(s.entries, state)
	return time.Since(issuedAt) <= s.ttl
}

func (s *MemoryStateStore) sweepLocked() {
	now := time.Now()
	for state, issuedAt := range s.entries {
		if now.Sub(issuedAt) > s.ttl {
			delete(s.entries, state)
		}
	}
}
