package deadletter

import (
	"context"
	"slices"
	"sync"
)

// DefaultMaxEntries bounds a MemoryStore created with a non-positive size.
const DefaultMaxEntries = 10000

// MemoryStore keeps entries in memory, evicting the oldest when full.
// Suitable for testing and single-process diagnostics.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []*Entry
	maxSize int
	closed  bool
}

// NewMemoryStore creates a store holding at most maxEntries entries.
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryStore{maxSize: maxEntries}
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	stored := *e
	if i := s.indexLocked(e.ID); i >= 0 {
		s.entries[i] = &stored
		return nil
	}
	if len(s.entries) >= s.maxSize {
		s.entries = slices.Delete(s.entries, 0, len(s.entries)-s.maxSize+1)
	}
	s.entries = append(s.entries, &stored)
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	i := s.indexLocked(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	e := *s.entries[i]
	return &e, nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context, limit int) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	n := len(s.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]*Entry, n)
	for i := range n {
		e := *s.entries[i]
		out[i] = &e
	}
	return out, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if i := s.indexLocked(id); i >= 0 {
		s.entries = slices.Delete(s.entries, i, i+1)
	}
	return nil
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrStoreClosed
	}
	return len(s.entries), nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.entries = nil
	return nil
}

func (s *MemoryStore) indexLocked(id string) int {
	return slices.IndexFunc(s.entries, func(e *Entry) bool { return e.ID == id })
}
