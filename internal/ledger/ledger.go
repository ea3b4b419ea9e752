// Package ledger provides the persistent change-detection record store.
// Entries map (item name, backend) to the last-seen content hash,
// generation date and size, and are the sole authority for staleness
// decisions across the pipeline.
package ledger

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/jonesrussell/legisync/internal/domain"
)

// schema bootstraps the ledger tables on open. Entries are retained
// indefinitely and keyed uniquely per (name, backend).
const schema = `
CREATE TABLE IF NOT EXISTS change_ledger (
	name        TEXT NOT NULL,
	backend     TEXT NOT NULL,
	hash        TEXT NOT NULL,
	date        TIMESTAMP NOT NULL,
	size        INTEGER NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (name, backend)
);

CREATE TABLE IF NOT EXISTS bill_summary (
	key          TEXT PRIMARY KEY,
	bill_id      INTEGER NOT NULL,
	date         TIMESTAMP NOT NULL,
	title        TEXT NOT NULL,
	summary      TEXT NOT NULL,
	cite_url     TEXT NOT NULL DEFAULT '',
	jurisdiction TEXT NOT NULL DEFAULT ''
);
`

// Open opens (creating if needed) the SQLite database backing the ledger
// and summary records.
func Open(path string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}
	if _, execErr := db.Exec(schema); execErr != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create ledger schema: %w", execErr)
	}
	return db, nil
}

// Ledger handles database operations for change ledger entries.
type Ledger struct {
	db *sqlx.DB
}

// New creates a ledger over an open database.
func New(db *sqlx.DB) *Ledger {
	return &Ledger{db: db}
}

// ledgerSelectColumns lists columns for SELECT queries on change_ledger.
const ledgerSelectColumns = `name, backend, hash, date, size, description`

// Find returns the entry for (name, backend), or nil when none exists.
func (l *Ledger) Find(ctx context.Context, name string, backend domain.Backend) (*domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerSelectColumns + ` FROM change_ledger WHERE name = ? AND backend = ?`

	var entry domain.LedgerEntry
	err := l.db.GetContext(ctx, &entry, query, name, backend)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select ledger entry: %w", err)
	}
	return &entry, nil
}

// Upsert creates or replaces the entry for (entry.Name, entry.Backend).
func (l *Ledger) Upsert(ctx context.Context, entry *domain.LedgerEntry) error {
	query := `
		INSERT INTO change_ledger (name, backend, hash, date, size, description)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (name, backend) DO UPDATE SET
			hash = excluded.hash, date = excluded.date,
			size = excluded.size, description = excluded.description
	`

	_, err := l.db.ExecContext(ctx, query,
		entry.Name, entry.Backend, entry.Hash, entry.Date, entry.Size, entry.Description)
	if err != nil {
		return fmt.Errorf("failed to upsert ledger entry: %w", err)
	}
	return nil
}

// Delete removes the entry for (name, backend). Deleting a missing entry
// is not an error.
func (l *Ledger) Delete(ctx context.Context, name string, backend domain.Backend) error {
	_, err := l.db.ExecContext(ctx,
		`DELETE FROM change_ledger WHERE name = ? AND backend = ?`, name, backend)
	if err != nil {
		return fmt.Errorf("failed to delete ledger entry: %w", err)
	}
	return nil
}

// List returns entries for one backend ordered by name, optionally
// filtered by a name prefix. Used for status reporting.
func (l *Ledger) List(ctx context.Context, backend domain.Backend, prefix string) ([]domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerSelectColumns + ` FROM change_ledger
		WHERE backend = ? AND name LIKE ? ORDER BY name`

	var entries []domain.LedgerEntry
	if err := l.db.SelectContext(ctx, &entries, query, backend, prefix+"%"); err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	return entries, nil
}

// HashBytes returns the hex-encoded SHA-256 of content, the hash form
// recorded in ledger entries.
func HashBytes(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}
