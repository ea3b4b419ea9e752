package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jonesrussell/legisync/internal/domain"
	"github.com/jonesrussell/legisync/internal/logger"
)

// FileStore stores items as flat files under a root directory.
type FileStore struct {
	root   string
	logger logger.Interface
}

// NewFileStore creates a file-backed store rooted at dir, creating the
// directory if needed.
func NewFileStore(dir string, log logger.Interface) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("file store: root directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file store: create root: %w", err)
	}
	return &FileStore{root: dir, logger: log}, nil
}

// Backend returns the backend this store serves.
func (s *FileStore) Backend() domain.Backend { return domain.BackendFile }

// path maps an item name to its on-disk location. Item names are flat;
// filepath.Base guards against traversal in hostile names.
func (s *FileStore) path(name string) string {
	return filepath.Join(s.root, filepath.Base(name))
}

// Put writes the item, overwriting any existing content.
func (s *FileStore) Put(ctx context.Context, name string, data []byte) error {
	if err := os.WriteFile(s.path(name), data, 0o644); err != nil {
		return fmt.Errorf("file store: put %s: %w", name, err)
	}
	s.logger.Debug("Wrote item", "backend", domain.BackendFile, "name", name, "size", len(data))
	return nil
}

// Get reads the named item, returning ErrNotFound when absent.
func (s *FileStore) Get(ctx context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("file store: get %s: %w", name, err)
	}
	return data, nil
}

// Exists reports whether the named item is present.
func (s *FileStore) Exists(ctx context.Context, name string) (bool, error) {
	_, err := os.Stat(s.path(name))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("file store: stat %s: %w", name, err)
	}
	return true, nil
}

// Delete removes the named item. Deleting a missing item is not an error.
func (s *FileStore) Delete(ctx context.Context, name string) error {
	err := os.Remove(s.path(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("file store: delete %s: %w", name, err)
	}
	return nil
}

// List returns matching item names in lexicographic order.
func (s *FileStore) List(ctx context.Context, q ListQuery) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("file store: list: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var out []string
	for _, name := range names {
		if !matchName(name, q) {
			continue
		}
		out = append(out, name)
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
	}
	return out, nil
}
