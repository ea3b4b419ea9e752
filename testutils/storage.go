// Package testutils provides shared testing utilities across the
// application.
package testutils

import (
	"context"
	"sort"
	"sync"

	"github.com/jonesrussell/legisync/internal/domain"
	"github.com/jonesrussell/legisync/internal/storage"
)

// MemStore is an in-memory implementation of the storage interface for
// tests. It mirrors the real backends' listing semantics: lexicographic
// order with prefix/suffix/after/limit filtering.
type MemStore struct {
	mu      sync.Mutex
	backend domain.Backend
	items   map[string][]byte

	// Puts counts write operations, letting tests assert idempotence.
	Puts int
}

// NewMemStore creates an empty in-memory store for the given backend.
func NewMemStore(backend domain.Backend) *MemStore {
	return &MemStore{backend: backend, items: make(map[string][]byte)}
}

// Backend returns the backend this store pretends to serve.
func (s *MemStore) Backend() domain.Backend { return s.backend }

// Put stores the item.
func (s *MemStore) Put(ctx context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[name] = append([]byte(nil), data...)
	s.Puts++
	return nil
}

// Get returns the item or storage.ErrNotFound.
func (s *MemStore) Get(ctx context.Context, name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.items[name]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Exists reports item presence.
func (s *MemStore) Exists(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[name]
	return ok, nil
}

// Delete removes the item if present.
func (s *MemStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, name)
	return nil
}

// List returns matching names in lexicographic order.
func (s *MemStore) List(ctx context.Context, q storage.ListQuery) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.items))
	for name := range s.items {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []string
	for _, name := range names {
		if !matches(name, q) {
			continue
		}
		out = append(out, name)
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
	}
	return out, nil
}

// Len returns the number of stored items.
func (s *MemStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func matches(name string, q storage.ListQuery) bool {
	if q.Prefix != "" && (len(name) < len(q.Prefix) || name[:len(q.Prefix)] != q.Prefix) {
		return false
	}
	if q.Suffix != "" && (len(name) < len(q.Suffix) || name[len(name)-len(q.Suffix):] != q.Suffix) {
		return false
	}
	if q.After != "" && name <= q.After {
		return false
	}
	return true
}
