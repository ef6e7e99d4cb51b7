package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// MemoryImageStorage keeps images in process memory and serves them under
// a URL prefix. It stands in for S3 when object storage is disabled.
type MemoryImageStorage struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	prefix  string
}

// NewMemoryImageStorage creates a memory storage whose URLs start with prefix
func NewMemoryImageStorage(prefix string) *MemoryImageStorage {
	return &MemoryImageStorage{
		objects: make(map[string]memoryObject),
		prefix:  strings.TrimRight(prefix, "/"),
	}
}

func (m *MemoryImageStorage) Put(_ context.Context, key string, body io.Reader, _ int64, contentType string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	m.mu.Lock()
	m.objects[key] = memoryObject{data: data, contentType: contentType}
	m.mu.Unlock()
	return m.prefix + "/" + key, nil
}

func (m *MemoryImageStorage) Delete(_ context.Context, keyOrURL string) error {
	key := strings.TrimPrefix(keyOrURL, m.prefix+"/")
	if key == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

// Open returns a stored object
func (m *MemoryImageStorage) Open(key string) (io.ReadSeeker, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, "", false
	}
	return bytes.NewReader(obj.data), obj.contentType, true
}

// Prefix is the URL path the objects are served under
func (m *MemoryImageStorage) Prefix() string {
	return m.prefix
}
