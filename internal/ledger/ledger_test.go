package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/legisync/internal/domain"
	"github.com/jonesrussell/legisync/internal/ledger"
)

func newLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	db, err := ledger.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return ledger.New(db)
}

func TestLedger_FindMissingReturnsNil(t *testing.T) {
	t.Parallel()

	led := newLedger(t)
	entry, err := led.Find(context.Background(), "nope.txt", domain.BackendFile)
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestLedger_UpsertAndFind(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	led := newLedger(t)

	in := &domain.LedgerEntry{
		Name:        "OH-Dataset-1668.zip",
		Backend:     domain.BackendFile,
		Hash:        "abc123",
		Date:        time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Size:        42,
		Description: "133rd General Assembly",
	}
	require.NoError(t, led.Upsert(ctx, in))

	entry, err := led.Find(ctx, in.Name, domain.BackendFile)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "abc123", entry.Hash)
	assert.Equal(t, int64(42), entry.Size)

	// Upsert replaces in place; (name, backend) stays unique.
	in.Hash = "def456"
	require.NoError(t, led.Upsert(ctx, in))

	entry, err = led.Find(ctx, in.Name, domain.BackendFile)
	require.NoError(t, err)
	assert.Equal(t, "def456", entry.Hash)

	entries, err := led.List(ctx, domain.BackendFile, "OH-")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLedger_BackendsAreIndependent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	led := newLedger(t)

	file := &domain.LedgerEntry{Name: "x.txt", Backend: domain.BackendFile, Hash: "h1", Date: time.Now()}
	object := &domain.LedgerEntry{Name: "x.txt", Backend: domain.BackendObject, Hash: "h2", Date: time.Now()}
	require.NoError(t, led.Upsert(ctx, file))
	require.NoError(t, led.Upsert(ctx, object))

	got, err := led.Find(ctx, "x.txt", domain.BackendObject)
	require.NoError(t, err)
	assert.Equal(t, "h2", got.Hash)

	require.NoError(t, led.Delete(ctx, "x.txt", domain.BackendObject))

	got, err = led.Find(ctx, "x.txt", domain.BackendObject)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = led.Find(ctx, "x.txt", domain.BackendFile)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "h1", got.Hash)
}

func TestHashBytes(t *testing.T) {
	t.Parallel()

	a := ledger.HashBytes([]byte("content"))
	assert.Equal(t, a, ledger.HashBytes([]byte("content")))
	assert.NotEqual(t, a, ledger.HashBytes([]byte("other")))
	assert.Len(t, a, 64)
}
