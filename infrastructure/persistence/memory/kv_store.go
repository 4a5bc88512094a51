package memory

import (
	"context"
	"sync"
)

// InMemoryKeyValueStore provides an in-memory implementation of KeyValueStore
type InMemoryKeyValueStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewInMemoryKeyValueStore creates a new in-memory key-value store
func NewInMemoryKeyValueStore() *InMemoryKeyValueStore {
	return &InMemoryKeyValueStore{values: make(map[string][]byte)}
}

// Load returns a copy of the value stored under key
func (s *InMemoryKeyValueStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

// Save stores a copy of value under key
func (s *InMemoryKeyValueStore) Save(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	s.values[key] = stored
	return nil
}
