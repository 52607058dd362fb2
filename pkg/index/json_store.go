package index

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// JSONStore keeps the index in a JSON file.
type JSONStore struct {
	mu   sync.Mutex
	path string
}

// NewJSONStore creates a store for the file at path.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Kind returns "json".
func (s *JSONStore) Kind() string {
	return "json"
}

// Save persists the index to disk.
func (s *JSONStore) Save(_ context.Context, idx *Index) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	stamp(idx)

	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}

// Load reads the index from disk.
// Returns nil, nil if the file doesn't exist.
func (s *JSONStore) Load(_ context.Context) (*Index, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *JSONStore) load() (*Index, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	idx := &Index{}
	if err := json.Unmarshal(data, idx); err != nil {
		return nil, err
	}
	idx.sort()
	return idx, nil
}

// Lookup reads the file and returns one entry.
func (s *JSONStore) Lookup(_ context.Context, partname string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.load()
	if err != nil {
		return nil, err
	}
	if idx == nil {
		idx = &Index{}
	}
	return idx.Lookup(partname)
}

// Clear removes the index file.
func (s *JSONStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close is a no-op.
func (s *JSONStore) Close() error {
	return nil
}

var _ Store = (*JSONStore)(nil)
