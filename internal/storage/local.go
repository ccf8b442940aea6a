package storage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/agentstation/toolindex/pkg/errors"
)

// LocalStore keeps documents as files under a base directory. It is the
// development backend; keys map directly to file paths.
type LocalStore struct {
	dir string
}

// NewLocal creates a local store rooted at dir, creating it if needed.
func NewLocal(dir string) (*LocalStore, error) {
	if dir == "" {
		dir = "data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.WrapIO("mkdir", dir, err)
	}
	return &LocalStore{dir: dir}, nil
}

// Get reads the document at key. A missing file maps to ErrNotFound so
// callers can distinguish first-run from real failures.
func (s *LocalStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ErrNotFound
		}
		return nil, errors.WrapIO("get", key, err)
	}
	return data, nil
}

// Put writes the document at key atomically: write to a temp file in the
// same directory, then rename over the destination.
func (s *LocalStore) Put(_ context.Context, key string, data []byte, _ string) error {
	dest := s.path(key)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return errors.WrapIO("mkdir", filepath.Dir(dest), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".tmp-*")
	if err != nil {
		return errors.WrapIO("put", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.WrapIO("put", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.WrapIO("put", key, err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return errors.WrapIO("put", key, err)
	}
	return nil
}

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.dir, filepath.FromSlash(key))
}
