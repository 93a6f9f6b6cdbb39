package blob

import (
	"context"
	"io"
	"sync"
)

// MemoryStorage keeps uploads in process, for tests and local runs.
type MemoryStorage struct {
	mu      sync.Mutex
	Bucket  string
	Objects map[string][]byte
	Types   map[string]string
}

func NewMemoryStorage(bucket string) *MemoryStorage {
	return &MemoryStorage{Bucket: bucket, Objects: map[string][]byte{}, Types: map[string]string{}}
}

func (m *MemoryStorage) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[objectPath] = data
	m.Types[objectPath] = contentType
	return PublicURL(m.Bucket, objectPath), nil
}
