package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	minioconfig "github.com/jonesrussell/legisync/internal/config/minio"
	"github.com/jonesrussell/legisync/internal/domain"
	"github.com/jonesrussell/legisync/internal/logger"
)

const (
	// maxListRounds is a runaway-loop guard on bucket pagination, not a
	// correctness mechanism.
	maxListRounds = 999
	// listPageSize is the nominal page size used with the rounds guard.
	listPageSize = 1000
)

// contentTypes maps item extensions to upload content types.
var contentTypes = map[string]string{
	".json": "application/json",
	".zip":  "application/zip",
	".html": "text/html; charset=utf-8",
	".pdf":  "application/pdf",
	".txt":  "text/plain; charset=utf-8",
}

// ObjectStore stores items in a MinIO bucket. A store that failed setup
// runs in disabled mode: writes and deletes are no-ops, reads report
// absent, so file-only operation remains possible.
type ObjectStore struct {
	client  *miniogo.Client
	bucket  string
	enabled bool
	logger  logger.Interface
}

// NewObjectStore creates the MinIO-backed store. Setup failures (bad
// credentials, bucket missing and uncreatable) disable the backend for
// the process rather than failing it.
func NewObjectStore(ctx context.Context, cfg *minioconfig.Config, log logger.Interface) (*ObjectStore, error) {
	store := &ObjectStore{bucket: cfg.Bucket, logger: log}

	if !cfg.Enabled {
		log.Info("Object backend disabled by configuration")
		return store, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		log.Warn("Failed to create MinIO client, continuing file-only", "error", err)
		return store, nil
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		log.Warn("Failed to reach MinIO, continuing file-only", "endpoint", cfg.Endpoint, "error", err)
		return store, nil
	}
	if !exists {
		if !cfg.CreateBucket {
			log.Warn("Bucket missing and creation disabled, continuing file-only", "bucket", cfg.Bucket)
			return store, nil
		}
		if mkErr := client.MakeBucket(ctx, cfg.Bucket, miniogo.MakeBucketOptions{}); mkErr != nil {
			log.Warn("Failed to create bucket, continuing file-only", "bucket", cfg.Bucket, "error", mkErr)
			return store, nil
		}
	}

	store.client = client
	store.enabled = true
	log.Info("Object backend initialized", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket)
	return store, nil
}

// Backend returns the backend this store serves.
func (s *ObjectStore) Backend() domain.Backend { return domain.BackendObject }

// Enabled reports whether the backend survived setup.
func (s *ObjectStore) Enabled() bool { return s.enabled }

// Put uploads the item, overwriting any existing content.
func (s *ObjectStore) Put(ctx context.Context, name string, data []byte) error {
	if !s.enabled {
		return nil
	}

	contentType := contentTypes[filepath.Ext(name)]
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)),
		miniogo.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("object store: put %s: %w", name, err)
	}
	s.logger.Debug("Wrote item", "backend", domain.BackendObject, "name", name, "size", len(data))
	return nil
}

// Get downloads the named item, returning ErrNotFound when absent.
func (s *ObjectStore) Get(ctx context.Context, name string) ([]byte, error) {
	if !s.enabled {
		return nil, ErrNotFound
	}

	obj, err := s.client.GetObject(ctx, s.bucket, name, miniogo.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("object store: get %s: %w", name, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if miniogo.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("object store: read %s: %w", name, err)
	}
	return data, nil
}

// Exists reports whether the named item is present.
func (s *ObjectStore) Exists(ctx context.Context, name string) (bool, error) {
	if !s.enabled {
		return false, nil
	}

	_, err := s.client.StatObject(ctx, s.bucket, name, miniogo.StatObjectOptions{})
	if err != nil {
		if miniogo.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("object store: stat %s: %w", name, err)
	}
	return true, nil
}

// Delete removes the named item. Deleting a missing item is not an error.
func (s *ObjectStore) Delete(ctx context.Context, name string) error {
	if !s.enabled {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, name, miniogo.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("object store: delete %s: %w", name, err)
	}
	return nil
}

// List returns matching item names in lexicographic order. Listing an
// empty prefix walks the entire bucket. Iteration is capped to guard
// against runaway pagination.
func (s *ObjectStore) List(ctx context.Context, q ListQuery) ([]string, error) {
	if !s.enabled {
		return nil, nil
	}

	opts := miniogo.ListObjectsOptions{
		Prefix:     q.Prefix,
		StartAfter: q.After,
		Recursive:  true,
	}

	maxObjects := maxListRounds * listPageSize
	seen := 0

	var out []string
	for obj := range s.client.ListObjects(ctx, s.bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("object store: list: %w", obj.Err)
		}
		seen++
		if seen > maxObjects {
			s.logger.Warn("Bucket listing hit iteration cap, truncating", "cap", maxObjects)
			break
		}
		if !matchName(obj.Key, q) {
			continue
		}
		out = append(out, obj.Key)
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
	}

	sort.Strings(out)
	return out, nil
}
