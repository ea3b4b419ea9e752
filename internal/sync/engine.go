// Package sync reconciles the item sets of the two storage backends
// under explicit, asymmetric delete/put/get controls.
package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonesrussell/legisync/internal/domain"
	"github.com/jonesrussell/legisync/internal/ledger"
	"github.com/jonesrussell/legisync/internal/logger"
	"github.com/jonesrussell/legisync/internal/storage"
)

// ErrInvalidBackendPair is returned for a malformed from/to combination.
// This is a fatal configuration error.
var ErrInvalidBackendPair = errors.New("invalid from/to backend pair")

// Options control one reconciliation run. Deletes, puts and gets are
// independently enabled and independently capped; a ceiling of 0 means
// unlimited.
type Options struct {
	From domain.Backend
	To   domain.Backend

	Deletes bool
	Puts    bool
	Gets    bool

	MaxDeletes int
	MaxPuts    int
	MaxGets    int

	// SkipExisting skips items present in both backends without a hash
	// comparison.
	SkipExisting bool

	// Name, when set, overrides the listing filter with a single item.
	Name   string
	Prefix string
	Suffix string
	After  string
}

// Result reports the distinct operation counts of one run.
type Result struct {
	Deleted int
	Put     int
	Got     int
}

// Engine reconciles the two backends using the storage abstraction and
// the change ledger.
type Engine struct {
	file   storage.Interface
	object storage.Interface
	ledger *ledger.Ledger
	logger logger.Interface
}

// NewEngine creates a sync engine over the two backends.
func NewEngine(file, object storage.Interface, led *ledger.Ledger, log logger.Interface) *Engine {
	return &Engine{file: file, object: object, ledger: led, logger: log.WithComponent("sync")}
}

// Run reconciles the `to` backend against the `from` backend.
func (e *Engine) Run(ctx context.Context, opts Options) (Result, error) {
	src, dst, err := e.resolve(opts.From, opts.To)
	if err != nil {
		return Result{}, err
	}

	srcNames, dstNames, err := e.listBoth(ctx, src, dst, opts)
	if err != nil {
		return Result{}, err
	}

	srcSet := toSet(srcNames)
	dstSet := toSet(dstNames)

	var res Result

	if opts.Deletes {
		if err := e.deletePass(ctx, dst, dstNames, srcSet, opts, &res); err != nil {
			return res, err
		}
	}
	if opts.Puts {
		if err := e.copyPass(ctx, src, dst, srcNames, dstSet, opts.MaxPuts, &res.Put); err != nil {
			return res, err
		}
	}
	if opts.Gets {
		if err := e.copyPass(ctx, dst, src, dstNames, srcSet, opts.MaxGets, &res.Got); err != nil {
			return res, err
		}
	}
	if opts.Puts && !opts.SkipExisting {
		if err := e.refreshPass(ctx, src, dst, srcNames, dstSet, opts.MaxPuts, &res.Put); err != nil {
			return res, err
		}
	}

	e.logger.Info("Sync complete",
		"from", opts.From, "to", opts.To,
		"deleted", res.Deleted, "put", res.Put, "got", res.Got)
	return res, nil
}

// resolve maps the from/to backends to stores, rejecting malformed pairs.
func (e *Engine) resolve(from, to domain.Backend) (src, dst storage.Interface, err error) {
	if !from.Valid() || !to.Valid() || from == to {
		return nil, nil, fmt.Errorf("%w: %s -> %s", ErrInvalidBackendPair, from, to)
	}
	if from == domain.BackendFile {
		return e.file, e.object, nil
	}
	return e.object, e.file, nil
}

// listBoth lists both backends under the same filter, or a single
// explicit name override.
func (e *Engine) listBoth(ctx context.Context, src, dst storage.Interface, opts Options) (srcNames, dstNames []string, err error) {
	if opts.Name != "" {
		srcNames, err = listOne(ctx, src, opts.Name)
		if err != nil {
			return nil, nil, err
		}
		dstNames, err = listOne(ctx, dst, opts.Name)
		return srcNames, dstNames, err
	}

	q := storage.ListQuery{Prefix: opts.Prefix, Suffix: opts.Suffix, After: opts.After}
	srcNames, err = src.List(ctx, q)
	if err != nil {
		return nil, nil, fmt.Errorf("sync: list %s: %w", src.Backend(), err)
	}
	dstNames, err = dst.List(ctx, q)
	if err != nil {
		return nil, nil, fmt.Errorf("sync: list %s: %w", dst.Backend(), err)
	}
	return srcNames, dstNames, nil
}

// deletePass removes items present in dst but absent from src, dropping
// their ledger entries, up to the delete ceiling.
func (e *Engine) deletePass(ctx context.Context, dst storage.Interface, dstNames []string, srcSet map[string]struct{}, opts Options, res *Result) error {
	for _, name := range dstNames {
		if _, ok := srcSet[name]; ok {
			continue
		}
		if opts.MaxDeletes > 0 && res.Deleted >= opts.MaxDeletes {
			e.logger.Info("Delete ceiling reached", "ceiling", opts.MaxDeletes)
			return nil
		}
		if err := dst.Delete(ctx, name); err != nil {
			return fmt.Errorf("sync: delete %s: %w", name, err)
		}
		if err := e.ledger.Delete(ctx, name, dst.Backend()); err != nil {
			return err
		}
		e.logger.Info("Deleted orphan item", "backend", dst.Backend(), "name", name)
		res.Deleted++
	}
	return nil
}

// copyPass copies items present in from but absent from to, up to the
// given ceiling, updating the destination ledger entry per copy.
func (e *Engine) copyPass(ctx context.Context, from, to storage.Interface, fromNames []string, toSet map[string]struct{}, ceiling int, counter *int) error {
	for _, name := range fromNames {
		if _, ok := toSet[name]; ok {
			continue
		}
		if ceiling > 0 && *counter >= ceiling {
			e.logger.Info("Copy ceiling reached", "ceiling", ceiling, "direction", fmt.Sprintf("%s->%s", from.Backend(), to.Backend()))
			return nil
		}
		if err := e.copyItem(ctx, from, to, name); err != nil {
			return err
		}
		*counter++
	}
	return nil
}

// refreshPass re-copies items present in both backends whose destination
// hash no longer matches the source hash.
func (e *Engine) refreshPass(ctx context.Context, from, to storage.Interface, fromNames []string, toSet map[string]struct{}, ceiling int, counter *int) error {
	for _, name := range fromNames {
		if _, ok := toSet[name]; !ok {
			continue
		}
		if ceiling > 0 && *counter >= ceiling {
			return nil
		}

		srcHash, err := e.hashOf(ctx, from, name)
		if err != nil {
			return err
		}
		dstHash, err := e.hashOf(ctx, to, name)
		if err != nil {
			return err
		}
		if srcHash == dstHash {
			e.logger.Debug("Item unchanged, skipping", "name", name)
			continue
		}

		if err := e.copyItem(ctx, from, to, name); err != nil {
			return err
		}
		e.logger.Info("Refreshed stale item", "name", name, "backend", to.Backend())
		*counter++
	}
	return nil
}

// hashOf returns the ledger hash for (name, backend), falling back to
// hashing the stored bytes when no entry exists.
func (e *Engine) hashOf(ctx context.Context, store storage.Interface, name string) (string, error) {
	entry, err := e.ledger.Find(ctx, name, store.Backend())
	if err != nil {
		return "", err
	}
	if entry != nil {
		return entry.Hash, nil
	}

	data, err := store.Get(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return ledger.HashBytes(data), nil
}

// copyItem copies one item between backends and records it in the ledger.
func (e *Engine) copyItem(ctx context.Context, from, to storage.Interface, name string) error {
	data, err := from.Get(ctx, name)
	if err != nil {
		return fmt.Errorf("sync: read %s from %s: %w", name, from.Backend(), err)
	}
	if err := to.Put(ctx, name, data); err != nil {
		return fmt.Errorf("sync: write %s to %s: %w", name, to.Backend(), err)
	}

	return e.ledger.Upsert(ctx, &domain.LedgerEntry{
		Name:        name,
		Backend:     to.Backend(),
		Hash:        ledger.HashBytes(data),
		Date:        time.Now().UTC(),
		Size:        int64(len(data)),
		Description: fmt.Sprintf("synced from %s", from.Backend()),
	})
}

// listOne lists a single explicit name if present.
func listOne(ctx context.Context, store storage.Interface, name string) ([]string, error) {
	ok, err := store.Exists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return []string{name}, nil
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
