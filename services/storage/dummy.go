package filesvc

import (
	"context"
	"io"
	"sync"

	"github.com/eduspace/backend/core"
)

// DummyStorage records uploads in memory; used in development and tests.
type DummyStorage struct {
	mu      sync.Mutex
	Uploads map[string][]byte
}

var _ core.FileStorage = (*DummyStorage)(nil)

func NewDummyStorage() *DummyStorage {
	return &DummyStorage{Uploads: make(map[string][]byte)}
}

func (s *DummyStorage) Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.Uploads[key] = content
	s.mu.Unlock()
	return "https://files.local/" + key, nil
}
