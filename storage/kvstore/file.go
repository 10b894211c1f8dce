package kvstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

type fileStore struct {
	sync.Mutex
	path string
}

var _ Store = (*fileStore)(nil)

// NewFile returns a Store persisted as a single JSON file. pikctl uses it to
// keep the auth token between invocations.
func NewFile(path string) Store {
	return &fileStore{path: path}
}

func (s *fileStore) load() (map[string]string, error) {
	table := make(map[string]string)
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return table, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", s.path)
	}
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", s.path)
	}
	return table, nil
}

func (s *fileStore) save(table map[string]string) error {
	data, err := json.Marshal(table)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrapf(err, "creating %s", filepath.Dir(s.path))
	}
	// tokens live here; keep the file owner-only
	return errors.Wrapf(os.WriteFile(s.path, data, 0o600), "writing %s", s.path)
}

func (s *fileStore) Get(_ context.Context, key string) (string, error) {
	s.Lock()
	defer s.Unlock()

	table, err := s.load()
	if err != nil {
		return "", err
	}
	val, ok := table[key]
	if !ok {
		return "", ErrNotFound
	}
	return val, nil
}

func (s *fileStore) Set(_ context.Context, key, value string) error {
	s.Lock()
	defer s.Unlock()

	table, err := s.load()
	if err != nil {
		return err
	}
	table[key] = value
	return s.save(table)
}

func (s *fileStore) Delete(_ context.Context, key string) error {
	s.Lock()
	defer s.Unlock()

	table, err := s.load()
	if err != nil {
		return err
	}
	delete(table, key)
	return s.save(table)
}
