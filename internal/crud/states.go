package crud

import (
	"sync"
	"time"
)

type stateKey struct {
	session  string
	resource string
}

type stateEntry struct {
	page     any
	lastUsed time.Time
}

// States keeps page state per session and resource, in process.
type States struct {
	mu      sync.Mutex
	entries map[stateKey]*stateEntry
	now     func() time.Time
}

func NewStates() *States {
	return &States{entries: make(map[stateKey]*stateEntry), now: time.Now}
}

// PageFor returns the page for sessionID and resource, creating it on first use.
func PageFor[T any](s *States, sessionID, resource string) *Page[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := stateKey{session: sessionID, resource: resource}
	if entry, ok := s.entries[key]; ok {
		if page, ok := entry.page.(*Page[T]); ok {
			entry.lastUsed = s.now()
			return page
		}
	}

	page := NewPage[T]()
	s.entries[key] = &stateEntry{page: page, lastUsed: s.now()}
	return page
}

// Drop forgets every page of a session.
func (s *States) Drop(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.entries {
		if key.session == sessionID {
			delete(s.entries, key)
		}
	}
}

// Sweep removes pages idle for longer than maxIdle and returns how many were removed.
func (s *States) Sweep(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxIdle)
	removed := 0
	for key, entry := range s.entries {
		if entry.lastUsed.Before(cutoff) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

func (s *States) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
