// Package summary persists the minimal per-bill record consumed by the
// downstream classification and search layer: always in the local
// database, optionally mirrored to an Elasticsearch index.
package summary

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jmoiron/sqlx"

	esconfig "github.com/jonesrussell/legisync/internal/config/elasticsearch"
	"github.com/jonesrussell/legisync/internal/domain"
	"github.com/jonesrussell/legisync/internal/logger"
)

// Store handles summary record persistence.
type Store struct {
	db     *sqlx.DB
	es     *elasticsearch.Client
	index  string
	logger logger.Interface
}

// NewStore creates a summary store over the open database. When the
// Elasticsearch config is enabled, records are additionally indexed; an
// unreachable cluster disables indexing rather than failing the pipeline.
func NewStore(db *sqlx.DB, cfg *esconfig.Config, log logger.Interface) (*Store, error) {
	store := &Store{db: db, logger: log.WithComponent("summary")}

	if cfg == nil || !cfg.Enabled {
		return store, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		APIKey:    cfg.APIKey,
	})
	if err != nil {
		log.Warn("Failed to create Elasticsearch client, summary indexing disabled", "error", err)
		return store, nil
	}

	store.es = client
	store.index = cfg.Index
	return store, nil
}

// Upsert creates or replaces the summary record for s.Key. The upsert is
// idempotent; re-running on unchanged input rewrites identical rows.
func (s *Store) Upsert(ctx context.Context, rec *domain.Summary) error {
	query := `
		INSERT INTO bill_summary (key, bill_id, date, title, summary, cite_url, jurisdiction)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			bill_id = excluded.bill_id, date = excluded.date,
			title = excluded.title, summary = excluded.summary,
			cite_url = excluded.cite_url, jurisdiction = excluded.jurisdiction
	`

	_, err := s.db.ExecContext(ctx, query,
		rec.Key, rec.BillID, rec.Date, rec.Title, rec.Summary, rec.CiteURL, rec.Jurisdiction)
	if err != nil {
		return fmt.Errorf("failed to upsert summary %s: %w", rec.Key, err)
	}

	if s.es != nil {
		if idxErr := s.indexRecord(ctx, rec); idxErr != nil {
			// The database row is authoritative; index lag is tolerable.
			s.logger.Warn("Failed to index summary", "key", rec.Key, "error", idxErr)
		}
	}
	return nil
}

// Find returns the summary record for key, or nil when none exists.
func (s *Store) Find(ctx context.Context, key string) (*domain.Summary, error) {
	query := `SELECT key, bill_id, date, title, summary, cite_url, jurisdiction
		FROM bill_summary WHERE key = ?`

	var rec domain.Summary
	err := s.db.GetContext(ctx, &rec, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select summary %s: %w", key, err)
	}
	return &rec, nil
}

// indexRecord mirrors one summary record to the Elasticsearch index.
func (s *Store) indexRecord(ctx context.Context, rec *domain.Summary) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	res, err := s.es.Index(
		s.index,
		bytes.NewReader(body),
		s.es.Index.WithContext(ctx),
		s.es.Index.WithDocumentID(rec.Key),
	)
	if err != nil {
		return fmt.Errorf("failed to index summary: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch error: %s", res.String())
	}
	return nil
}
