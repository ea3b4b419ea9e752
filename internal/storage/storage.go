// Package storage provides the uniform item storage abstraction over the
// two physical backends: a local filesystem tree and a MinIO bucket.
package storage

import (
	"context"
	"errors"

	"github.com/jonesrussell/legisync/internal/domain"
)

// ErrNotFound is returned by Get when the named item does not exist.
// Callers treat it as an absent result, not a failure.
var ErrNotFound = errors.New("item not found")

// ListQuery filters and bounds a List call. Limit <= 0 means unlimited;
// After is an exclusive cursor for resumable pagination.
type ListQuery struct {
	Prefix string
	Suffix string
	After  string
	Limit  int
}

// Interface defines storage operations over one backend. Both
// implementations return identically ordered, lexicographically sorted
// name sequences from List.
type Interface interface {
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
	Exists(ctx context.Context, name string) (bool, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context, q ListQuery) ([]string, error)
	Backend() domain.Backend
}

// matchName applies the prefix/suffix/after filter to a single name.
func matchName(name string, q ListQuery) bool {
	if q.Prefix != "" && len(name) < len(q.Prefix) {
		return false
	}
	if q.Prefix != "" && name[:len(q.Prefix)] != q.Prefix {
		return false
	}
	if q.Suffix != "" {
		if len(name) < len(q.Suffix) || name[len(name)-len(q.Suffix):] != q.Suffix {
			return false
		}
	}
	if q.After != "" && name <= q.After {
		return false
	}
	return true
}
