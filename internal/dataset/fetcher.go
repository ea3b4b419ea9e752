// Package dataset retrieves the upstream session catalog and per-session
// dataset archives, consulting the change ledger to avoid redundant
// fetches.
package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jonesrussell/legisync/internal/domain"
	"github.com/jonesrussell/legisync/internal/ledger"
	"github.com/jonesrussell/legisync/internal/legiscan"
	"github.com/jonesrussell/legisync/internal/logger"
	"github.com/jonesrussell/legisync/internal/pipeline"
	"github.com/jonesrussell/legisync/internal/storage"
)

const (
	// DefaultFrequency is the listing refresh window.
	DefaultFrequency = 7 * 24 * time.Hour
	// DefaultRetainedListings is the number of historical listings kept.
	DefaultRetainedListings = 5
)

var (
	// ErrMalformedListing is a fatal configuration error: listing bytes
	// that do not parse as a well-formed catalog.
	ErrMalformedListing = errors.New("malformed dataset listing")
	// ErrNoListing is returned when no listing could be fetched and none
	// is cached.
	ErrNoListing = errors.New("no dataset listing available")
)

// storedListing is the persisted listing shape: the upstream wire form,
// so cached listings revalidate the same way fresh ones do.
type storedListing struct {
	Status   string                `json:"status"`
	Sessions []domain.SessionEntry `json:"datasetlist"`
}

// Fetcher obtains dataset listings and session archives.
type Fetcher struct {
	store     storage.Interface
	ledger    *ledger.Ledger
	client    *legiscan.Client
	logger    logger.Interface
	frequency time.Duration
	retained  int
	now       func() time.Time
}

// NewFetcher creates a dataset fetcher writing to the given store.
func NewFetcher(store storage.Interface, led *ledger.Ledger, client *legiscan.Client, log logger.Interface, frequency time.Duration, retained int) *Fetcher {
	if frequency <= 0 {
		frequency = DefaultFrequency
	}
	if retained <= 0 {
		retained = DefaultRetainedListings
	}
	return &Fetcher{
		store:     store,
		ledger:    led,
		client:    client,
		logger:    log.WithComponent("dataset"),
		frequency: frequency,
		retained:  retained,
		now:       time.Now,
	}
}

// EnsureListing returns a current dataset listing. The cached listing is
// used when fresh enough; otherwise a new one is fetched when run.APIEnabled,
// falling back to the most recent cached listing on fetch failure.
func (f *Fetcher) EnsureListing(ctx context.Context, run *pipeline.Run) (*domain.DatasetListing, error) {
	names, err := f.listingNames(ctx)
	if err != nil {
		return nil, err
	}

	// Listing names embed the date, so the lexicographically last name is
	// the most recent.
	var newest string
	if len(names) > 0 {
		newest = names[len(names)-1]
	}

	if newest != "" {
		date, dateErr := domain.ParseListingDate(newest)
		if dateErr == nil && f.now().Sub(date) < f.frequency {
			f.logger.Info("Using cached dataset listing", "name", newest)
			return f.loadListing(ctx, newest)
		}
	}

	if run.APIEnabled {
		listing, fetchErr := f.fetchListing(ctx)
		if fetchErr == nil {
			return listing, nil
		}
		run.DegradeAPI()
		f.logger.Warn("Listing fetch failed, falling back to cached", "error", fetchErr)
	}

	if newest == "" {
		return nil, ErrNoListing
	}
	f.logger.Info("Using stale cached dataset listing", "name", newest)
	return f.loadListing(ctx, newest)
}

// fetchListing retrieves a fresh catalog, persists it, registers it with
// the ledger and purges listings beyond the retention window.
func (f *Fetcher) fetchListing(ctx context.Context) (*domain.DatasetListing, error) {
	sessions, err := f.client.GetDatasetList(ctx, "")
	if err != nil {
		return nil, err
	}

	today := f.now()
	name := domain.ListingName(today)
	data, err := json.Marshal(storedListing{Status: "OK", Sessions: sessions})
	if err != nil {
		return nil, fmt.Errorf("marshal listing: %w", err)
	}

	if putErr := f.store.Put(ctx, name, data); putErr != nil {
		return nil, putErr
	}
	if ledErr := f.ledger.Upsert(ctx, &domain.LedgerEntry{
		Name:        name,
		Backend:     f.store.Backend(),
		Hash:        ledger.HashBytes(data),
		Date:        today.UTC(),
		Size:        int64(len(data)),
		Description: "dataset listing",
	}); ledErr != nil {
		return nil, ledErr
	}

	if purgeErr := f.purgeListings(ctx); purgeErr != nil {
		f.logger.Warn("Failed to purge old listings", "error", purgeErr)
	}

	f.logger.Info("Fetched dataset listing", "name", name, "sessions", len(sessions))
	return &domain.DatasetListing{Date: today, Sessions: sessions}, nil
}

// loadListing reads and validates a persisted listing. A listing that
// does not parse as a well-formed catalog is a fatal configuration error,
// distinct from a transient fetch failure.
func (f *Fetcher) loadListing(ctx context.Context, name string) (*domain.DatasetListing, error) {
	data, err := f.store.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("read listing %s: %w", name, err)
	}

	var stored storedListing
	if jsonErr := json.Unmarshal(data, &stored); jsonErr != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedListing, name, jsonErr)
	}
	if stored.Status != "OK" || len(stored.Sessions) == 0 {
		return nil, fmt.Errorf("%w: %s: status %q with %d sessions", ErrMalformedListing, name, stored.Status, len(stored.Sessions))
	}

	date, err := domain.ParseListingDate(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedListing, err)
	}
	return &domain.DatasetListing{Date: date, Sessions: stored.Sessions}, nil
}

// purgeListings keeps the most recent retained listings and deletes the
// rest from storage and the ledger.
func (f *Fetcher) purgeListings(ctx context.Context) error {
	names, err := f.listingNames(ctx)
	if err != nil {
		return err
	}
	if len(names) <= f.retained {
		return nil
	}

	for _, name := range names[:len(names)-f.retained] {
		if delErr := f.store.Delete(ctx, name); delErr != nil {
			return delErr
		}
		if delErr := f.ledger.Delete(ctx, name, f.store.Backend()); delErr != nil {
			return delErr
		}
		f.logger.Info("Purged old dataset listing", "name", name)
	}
	return nil
}

// listingNames returns stored listing names in ascending date order.
func (f *Fetcher) listingNames(ctx context.Context) ([]string, error) {
	names, err := f.store.List(ctx, storage.ListQuery{Prefix: "DatasetList-", Suffix: ".json"})
	if err != nil {
		return nil, fmt.Errorf("list dataset listings: %w", err)
	}

	valid := names[:0]
	for _, n := range names {
		if domain.IsListingName(n) {
			valid = append(valid, n)
		}
	}
	return valid, nil
}

// FetchDatasets refreshes session archives for one jurisdiction. A
// session archive is fetched only when it is missing, or when the
// listing's hash differs from the ledger's and the listing is not older
// than the ledger entry. A fetch failure for one session is returned as
// a run-level error rather than silently marking the session complete.
func (f *Fetcher) FetchDatasets(ctx context.Context, run *pipeline.Run, listing *domain.DatasetListing, stateID, sessionLimit int) (int, error) {
	jur, ok := domain.JurisdictionByID(stateID)
	if !ok {
		return 0, fmt.Errorf("unknown jurisdiction id %d", stateID)
	}

	sessions := listing.SessionsForState(stateID)
	if sessionLimit > 0 && len(sessions) > sessionLimit {
		sessions = sessions[:sessionLimit]
	}

	fetched := 0
	var firstErr error
	for _, session := range sessions {
		need, err := f.needsFetch(ctx, jur.Code, session)
		if err != nil {
			return fetched, err
		}
		if !need {
			f.logger.Debug("Session dataset unchanged", "state", jur.Code, "session", session.SessionID)
			continue
		}
		if !run.APIEnabled {
			f.logger.Warn("Session dataset stale but API disabled", "state", jur.Code, "session", session.SessionID)
			continue
		}

		if fetchErr := f.fetchDataset(ctx, jur.Code, session); fetchErr != nil {
			run.DegradeAPI()
			f.logger.Error("Session dataset fetch failed",
				"state", jur.Code, "session", session.SessionID, "error", fetchErr)
			if firstErr == nil {
				firstErr = fmt.Errorf("fetch dataset %s session %d: %w", jur.Code, session.SessionID, fetchErr)
			}
			continue
		}
		fetched++
	}
	return fetched, firstErr
}

// needsFetch applies the hash-and-date refresh rule for one session.
func (f *Fetcher) needsFetch(ctx context.Context, code string, session domain.SessionEntry) (bool, error) {
	name := domain.DatasetName(code, session.SessionID, "zip")

	exists, err := f.store.Exists(ctx, name)
	if err != nil {
		return false, err
	}
	if !exists {
		return true, nil
	}

	entry, err := f.ledger.Find(ctx, name, f.store.Backend())
	if err != nil {
		return false, err
	}
	if entry == nil {
		return true, nil
	}
	if entry.Hash == session.DatasetHash {
		return false, nil
	}
	// Hash differs; refresh unless our record is newer than the listing's
	// declared date.
	return !entry.Date.After(session.ParsedDate()), nil
}

// fetchDataset retrieves one session archive and records the listing's
// declared hash and date in the ledger.
func (f *Fetcher) fetchDataset(ctx context.Context, code string, session domain.SessionEntry) error {
	zip, err := f.client.GetDataset(ctx, session.SessionID, session.AccessKey)
	if err != nil {
		return err
	}

	name := domain.DatasetName(code, session.SessionID, "zip")
	if putErr := f.store.Put(ctx, name, zip); putErr != nil {
		return putErr
	}

	if ledErr := f.ledger.Upsert(ctx, &domain.LedgerEntry{
		Name:        name,
		Backend:     f.store.Backend(),
		Hash:        session.DatasetHash,
		Date:        session.ParsedDate(),
		Size:        int64(len(zip)),
		Description: session.SessionName,
	}); ledErr != nil {
		return ledErr
	}

	f.logger.Info("Fetched session dataset", "name", name, "size", len(zip))
	return nil
}
