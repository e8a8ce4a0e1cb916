package store

import (
	"errors"
	"sync"
)

// MemoryStore is an in-process Store. It backs tests and any context where a
// durable backend is unavailable but state should still survive within the
// session.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string

	// FailWrites, when set, makes every Set return a StorageError. Tests use
	// it to exercise quota-exceeded style failures.
	FailWrites bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites {
		return &StorageError{Key: key, Err: errors.New("write rejected")}
	}
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// Len reports the number of stored keys.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// NopStore is the no-backend fallback: every read reports absent and writes
// are silently discarded. Callers see the same contract as a store that was
// cleared on every launch.
type NopStore struct{}

func (NopStore) Get(string) (string, bool) { return "", false }
func (NopStore) Set(string, string) error  { return nil }
func (NopStore) Remove(string)             {}
