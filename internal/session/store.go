package session

import (
	"context"
	"sync"
	"time"

	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/model"
)

// Store persists sessions by id. Get returns model.ErrSessionNotFound for unknown
// or expired ids.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	rec       Record
	expiresAt time.Time
}

type MemoryStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	entry, ok := m.entries[id]
	m.mu.RUnlock()

	if !ok {
		return nil, model.ErrSessionNotFound
	}

	if m.ttl > 0 && m.now().After(entry.expiresAt) {
		_ = m.Delete(context.Background(), id)
		return nil, model.ErrSessionNotFound
	}

	return FromRecord(entry.rec), nil
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	rec := s.Record()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[rec.ID] = memoryEntry{rec: rec, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

// Len reports how many sessions are held, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
