// Package domain defines the core entities shared across the pipeline:
// storage items, ledger entries, dataset listings and bill details.
package domain

import "time"

// Backend identifies one of the two physical storage mechanisms.
type Backend string

const (
	// BackendFile is the local filesystem tree.
	BackendFile Backend = "FILE"
	// BackendObject is the remote bucket-style object store.
	BackendObject Backend = "OBJECT"
)

// Valid reports whether b names a known backend.
func (b Backend) Valid() bool {
	return b == BackendFile || b == BackendObject
}

// Item is a named blob in a storage backend. The name uniquely identifies
// logical content within one backend and encodes type, state, session,
// bill and year.
type Item struct {
	Name    string
	Backend Backend
	Data    []byte
}

// Size returns the byte length of the item payload.
func (i *Item) Size() int64 {
	return int64(len(i.Data))
}

// LedgerEntry records the last-seen state of an item in one backend.
// Entries are unique per (Name, Backend) pair.
type LedgerEntry struct {
	Name        string    `db:"name"`
	Backend     Backend   `db:"backend"`
	Hash        string    `db:"hash"`
	Date        time.Time `db:"date"`
	Size        int64     `db:"size"`
	Description string    `db:"description"`
}
