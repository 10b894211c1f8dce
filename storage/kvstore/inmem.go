package kvstore

import (
	"context"
	"sync"
)

type memoryStore struct {
	sync.RWMutex
	table map[string]string
}

var _ Store = (*memoryStore)(nil) // interface compliance check

// NewMemory returns an in-memory Store. It backs tests and the guest flow of
// the web gateway before a session is established.
func NewMemory() Store {
	return &memoryStore{table: make(map[string]string)}
}

func (s *memoryStore) Get(_ context.Context, key string) (string, error) {
	s.RLock()
	defer s.RUnlock()

	val, ok := s.table[key]
	if !ok {
		return "", ErrNotFound
	}
	return val, nil
}

func (s *memoryStore) Set(_ context.Context, key, value string) error {
	s.Lock()
	defer s.Unlock()

	s.table[key] = value
	return nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.Lock()
	defer s.Unlock()

	delete(s.table, key)
	return nil
}
