// Package storage holds captured frames while they are being checked.
package storage

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// ObjectStore is a bucket of short-lived frame objects.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Remove(ctx context.Context, keys ...string) error
}

// Memory is an in-process ObjectStore, used when no remote bucket is configured.
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte

	// Error injection
	UploadError error
	RemoveError error
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

// Upload stores a copy of data under key
func (m *Memory) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if m.UploadError != nil {
		return m.UploadError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; ok {
		return fmt.Errorf("object %s already exists", key)
	}
	m.objects[key] = slices.Clone(data)
	return nil
}

// Remove deletes the given keys; unknown keys are ignored
func (m *Memory) Remove(ctx context.Context, keys ...string) error {
	if m.RemoveError != nil {
		return m.RemoveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.objects, k)
	}
	return nil
}

// Keys returns the stored keys in sorted order
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Sorted(maps.Keys(m.objects))
}
