package memory

import (
	"context"
	"strings"
	"sync"
)

// InMemoryObjectStore keeps images in memory and serves them under a fixed
// base URL
type InMemoryObjectStore struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]storedObject
}

type storedObject struct {
	data        []byte
	contentType string
}

// NewInMemoryObjectStore creates a new in-memory object store
func NewInMemoryObjectStore(baseURL string) *InMemoryObjectStore {
	return &InMemoryObjectStore{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		objects: make(map[string]storedObject),
	}
}

// PutImage stores data at path and returns its URL
func (s *InMemoryObjectStore) PutImage(ctx context.Context, data []byte, path, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	s.objects[path] = storedObject{data: stored, contentType: contentType}
	return s.baseURL + "/" + path, nil
}

// DeleteImage removes the object behind url
func (s *InMemoryObjectStore) DeleteImage(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.objects, strings.TrimPrefix(url, s.baseURL+"/"))
	return nil
}

// Get returns the object stored at path
func (s *InMemoryObjectStore) Get(path string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[path]
	return obj.data, obj.contentType, ok
}

// Len returns the number of stored objects
func (s *InMemoryObjectStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
