package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryPhotoStore keeps photos in process memory. Used in development
// when no bucket is configured, and in tests.
type MemoryPhotoStore struct {
	BaseURL string

	mu      sync.Mutex
	objects map[string][]byte
}

// NewMemoryPhotoStore returns an empty store serving URLs under baseURL.
func NewMemoryPhotoStore(baseURL string) *MemoryPhotoStore {
	return &MemoryPhotoStore{BaseURL: baseURL, objects: map[string][]byte{}}
}

func (m *MemoryPhotoStore) Upload(_ context.Context, key, _ string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), data...)
	return m.BaseURL + "/" + key, nil
}

func (m *MemoryPhotoStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return fmt.Errorf("delete %s: no such object", key)
	}
	delete(m.objects, key)
	return nil
}

// Has reports whether key is stored.
func (m *MemoryPhotoStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

// Len returns the number of stored objects.
func (m *MemoryPhotoStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
