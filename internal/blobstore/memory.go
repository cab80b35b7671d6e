package blobstore

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"
)

type memoryBlob struct {
	data        []byte
	contentType string
}

// Memory is an in-process Store for tests and local development.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string]memoryBlob
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{blobs: map[string]memoryBlob{}}
}

func (m *Memory) Upload(ctx context.Context, key, contentType string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = memoryBlob{data: data, contentType: contentType}
	return nil
}

func (m *Memory) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.blobs[key]
	if !ok {
		return nil, "", ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b.data)), b.contentType, nil
}

func (m *Memory) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.blobs[key]
	return ok, nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}

// URL returns a stable pseudo-URL; in-memory blobs are only reachable through
// the application's own image endpoint.
func (m *Memory) URL(ctx context.Context, key string, expires time.Duration) (string, error) {
	return "/blobs/" + key, nil
}
