package blob

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	appErrors "secondbrain-backend/pkg/errors"
)

// MemoryStore is an in-memory Store used in tests and local development.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte

	// FailPut and FailGet force the next corresponding call to return the
	// configured error, for exercising failure paths in tests.
	FailPut error
	FailGet error
}

// NewMemoryStore creates an empty in-memory blob store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Put stores the content and returns its generated id.
func (s *MemoryStore) Put(ctx context.Context, content []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailPut != nil {
		return "", s.FailPut
	}
	id := uuid.New().String()
	buf := make([]byte, len(content))
	copy(buf, content)
	s.blobs[id] = buf
	return id, nil
}

// Get returns the stored content or NotFound.
func (s *MemoryStore) Get(ctx context.Context, id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailGet != nil {
		return nil, s.FailGet
	}
	data, ok := s.blobs[id]
	if !ok {
		return nil, appErrors.NewNotFound(fmt.Sprintf("blob %s not found", id))
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return buf, nil
}

// PreviewURL returns a synthetic URL for the blob.
func (s *MemoryStore) PreviewURL(id string) string {
	return "memory://" + id
}

// Len reports how many blobs are stored.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
