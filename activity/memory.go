package activity

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]Entry
	err     error
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]Entry)}
}

// FailWith makes every subsequent call return err.
func (s *MemoryStore) FailWith(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Insert records one entry.
func (s *MemoryStore) Insert(_ context.Context, entry Entry) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}

	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now().UTC()
	s.entries[entry.UserID] = append(s.entries[entry.UserID], entry)
	return &entry, nil
}

// List returns userID's entries, newest first.
func (s *MemoryStore) List(_ context.Context, userID string, page Page) ([]Entry, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, 0, s.err
	}

	all := s.entries[userID]
	total := int64(len(all))

	// Entries are appended in insertion order; walk backwards for
	// newest first.
	start := page.Offset()
	if start >= len(all) {
		return []Entry{}, total, nil
	}
	out := make([]Entry, 0, page.PerPage)
	for i := len(all) - 1 - start; i >= 0 && len(out) < page.PerPage; i-- {
		out = append(out, all[i])
	}
	return out, total, nil
}
