package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// lockRetryDelay paces lock acquisition attempts against a sibling
// process holding the store.
const lockRetryDelay = 50 * time.Millisecond

// FileStore persists each key as a JSON document in a directory. A file
// lock serializes access across processes; read-modify-write cycles
// within a process are already serialized by the Store.
type FileStore struct {
	dir  string
	lock *flock.Flock
}

// NewFileStore opens a store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &FileStore{
		dir:  dir,
		lock: flock.New(filepath.Join(dir, ".lock")),
	}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Get reads the document for key, nil when absent.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	if _, err := s.lock.TryRLockContext(ctx, lockRetryDelay); err != nil {
		return nil, fmt.Errorf("locking storage: %w", err)
	}
	defer s.lock.Unlock()

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return data, nil
}

// Set writes the document for key.
func (s *FileStore) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.lock.TryLockContext(ctx, lockRetryDelay); err != nil {
		return fmt.Errorf("locking storage: %w", err)
	}
	defer s.lock.Unlock()

	if err := os.WriteFile(s.path(key), value, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Delete removes the document for key; an absent key is not an error.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	if _, err := s.lock.TryLockContext(ctx, lockRetryDelay); err != nil {
		return fmt.Errorf("locking storage: %w", err)
	}
	defer s.lock.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}
