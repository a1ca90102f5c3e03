package registry

import (
	"context"
	"sync"

	regerrors "strreg/internal/errors"
)

// MemoryStore keeps records in process memory. The collection resets on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	records []*Record
	byKey   map[string]*Record
	nextID  int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byKey:  make(map[string]*Record),
		nextID: 1,
	}
}

// Insert appends rec under the write lock, so the duplicate check and the
// append cannot interleave with another insert.
func (s *MemoryStore) Insert(_ context.Context, rec *Record) error {
	key := rec.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byKey[key]; exists {
		return regerrors.New(regerrors.Conflict, "String already exists in the system")
	}

	rec.ID = s.nextID
	s.nextID++
	s.records = append(s.records, rec)
	s.byKey[key] = rec
	return nil
}

// Find returns the record stored under key.
func (s *MemoryStore) Find(_ context.Context, key string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byKey[key]
	if !ok {
		return nil, regerrors.New(regerrors.NotFound, "String does not exist in the system")
	}
	return rec, nil
}

// All returns a snapshot of the records in insertion order.
func (s *MemoryStore) All(_ context.Context) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

// Delete removes the record stored under key. Remaining IDs are untouched.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byKey[key]
	if !ok {
		return regerrors.New(regerrors.NotFound, "String does not exist in the system")
	}
	delete(s.byKey, key)

	for i, r := range s.records {
		if r == rec {
			s.records = append(s.records[:i], s.records[i+1:]...)
			break
		}
	}
	return nil
}

// Count returns the number of records.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}
