package storage

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/openshelf/openshelf/ports"
)

// Memory is an in-memory file store for testing.
type Memory struct {
	mu      sync.RWMutex
	objects map[string][]byte
	baseURL string
}

// NewMemory creates an in-memory file store.
func NewMemory() *Memory {
	return &Memory{
		objects: make(map[string][]byte),
		baseURL: "mem://files",
	}
}

// Put stores an object and returns its URL.
func (m *Memory) Put(ctx context.Context, key string, contentType string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.objects[key] = data
	m.mu.Unlock()
	return m.baseURL + "/" + key, nil
}

// Get retrieves an object.
func (m *Memory) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.RLock()
	data, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete removes an object.
func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored objects (for testing).
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// Ensure interface compliance.
var _ ports.FileStore = (*Memory)(nil)
