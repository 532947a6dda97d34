package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var (
	ErrStore = errors.New("could not store repository data")
	ErrLoad  = errors.New("could not load repository data")
)

// Store persists the data of a MemoryRepository as a whole.
type Store interface {
	Store(fileName string, data any) error
	Load(fileName string, data any) error
}

var (
	_ Store = noopStore{}
	_ Store = (*JSONStore)(nil)
)

type noopStore struct{}

func (noopStore) Store(string, any) error { return nil }
func (noopStore) Load(string, any) error  { return nil }

// JSONStore persists the data as human-readable JSON files in a directory.
// It is not schema aware: renaming fields of an entity loses their data.
// Use it for local development only.
type JSONStore struct {
	dir string
	mu  sync.Mutex
}

func NewJSONStore(dir string) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil { //nolint:mnd // rwx for the owner
		return nil, fmt.Errorf("%w: could not create dir %s: %w", ErrStore, dir, err)
	}

	return &JSONStore{dir: dir}, nil
}

func (s *JSONStore) Store(fileName string, data any) error {
	if data == nil {
		return nil
	}

	b, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// write and rename, so a crash never leaves a half written file behind
	tmp := filepath.Join(s.dir, "."+fileName+".tmp")

	if err = os.WriteFile(tmp, b, 0o600); err != nil { //nolint:mnd // rw for the owner
		return fmt.Errorf("%w: %w", ErrStore, err)
	}

	if err = os.Rename(tmp, filepath.Join(s.dir, fileName)); err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}

	return nil
}

// Load decodes the file into data. A missing file returns an error wrapping os.ErrNotExist.
func (s *JSONStore) Load(fileName string, data any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(filepath.Join(s.dir, fileName))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoad, err)
	}

	if err = json.Unmarshal(b, data); err != nil {
		return fmt.Errorf("%w: %w", ErrLoad, err)
	}

	return nil
}
