package filestore

import (
	"bytes"
	"context"
	"io"
	"path"
	"sync"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/regmon-lab/themis/pkg/domain/interfaces"
)

// Memory is an in-memory file store for tests and local runs
type Memory struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

var _ interfaces.FileStore = &Memory{}

// NewMemory creates an in-memory file store
func NewMemory() *Memory {
	return &Memory{
		objects: make(map[string][]byte),
	}
}

func (s *Memory) Put(_ context.Context, name string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read content", goerr.V("name", name))
	}

	handle := path.Join(uuid.NewString(), path.Base(name))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[handle] = data

	return handle, nil
}

func (s *Memory) Get(_ context.Context, handle string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.objects[handle]
	if !ok {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "object not found", goerr.V("handle", handle))
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}
