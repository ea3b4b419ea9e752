package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jonesrussell/legisync/internal/domain"
	"github.com/jonesrussell/legisync/internal/ledger"
	"github.com/jonesrussell/legisync/internal/legiscan"
	"github.com/jonesrussell/legisync/internal/logger"
	"github.com/jonesrussell/legisync/internal/normalize"
	"github.com/jonesrussell/legisync/internal/pipeline"
	"github.com/jonesrussell/legisync/internal/storage"
)

// ErrUnsupportedMime is returned for document revisions whose mime type
// maps to no known extension.
var ErrUnsupportedMime = errors.New("unsupported document mime type")

// mimeExtensions maps revision mime types to item extensions.
var mimeExtensions = map[string]string{
	"text/html":       "html",
	"application/pdf": "pdf",
}

// DocumentFetcher obtains raw document bytes for a bill revision: a
// previously stored artifact when its ledger hash still matches, the
// origin site otherwise, with the upstream API as bounded fallback.
type DocumentFetcher struct {
	store  storage.Interface
	ledger *ledger.Ledger
	client *legiscan.Client
	http   *http.Client
	logger logger.Interface
}

// NewDocumentFetcher creates a document fetcher. A nil httpClient uses
// http.DefaultClient.
func NewDocumentFetcher(store storage.Interface, led *ledger.Ledger, client *legiscan.Client, httpClient *http.Client, log logger.Interface) *DocumentFetcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &DocumentFetcher{
		store:  store,
		ledger: led,
		client: client,
		http:   httpClient,
		logger: log.WithComponent("document"),
	}
}

// Document is a fetched raw document ready for normalization.
type Document struct {
	Data []byte
	Ext  string
	// CiteURL is the resolved citation for the provenance header.
	CiteURL string
}

// Fetch returns the raw bytes for the chosen revision of a bill,
// persisting newly fetched bytes and updating the ledger hash.
func (f *DocumentFetcher) Fetch(ctx context.Context, run *pipeline.Run, key string, bill *domain.BillDetail, rev domain.Revision) (*Document, error) {
	ext, ok := mimeExtensions[strings.ToLower(rev.Mime)]
	if !ok {
		return nil, fmt.Errorf("%w: %q for %s", ErrUnsupportedMime, rev.Mime, key)
	}

	rawName := key + "." + ext
	cite := rev.StateLink

	if data, reused, err := f.reuseStored(ctx, rawName, bill.Hash); err != nil {
		return nil, err
	} else if reused {
		f.logger.Debug("Reusing stored raw artifact", "name", rawName)
		return &Document{Data: data, Ext: ext, CiteURL: cite}, nil
	}

	data, err := f.fetchOrigin(ctx, rev.StateLink, ext)
	if err != nil {
		f.logger.Warn("Origin fetch failed", "key", key, "url", rev.StateLink, "error", err)
		data, err = f.fetchFallback(ctx, run, rev.DocID)
		if err != nil {
			return nil, fmt.Errorf("fetch document %s: %w", key, err)
		}
		cite = rev.URL
	}

	if putErr := f.store.Put(ctx, rawName, data); putErr != nil {
		return nil, putErr
	}
	if ledErr := f.ledger.Upsert(ctx, &domain.LedgerEntry{
		Name:        rawName,
		Backend:     f.store.Backend(),
		Hash:        bill.Hash,
		Date:        rev.ParsedDate(),
		Size:        int64(len(data)),
		Description: fmt.Sprintf("raw document %d", rev.DocID),
	}); ledErr != nil {
		return nil, ledErr
	}

	return &Document{Data: data, Ext: ext, CiteURL: cite}, nil
}

// reuseStored returns previously stored raw bytes when the ledger hash
// still matches the descriptor's hash.
func (f *DocumentFetcher) reuseStored(ctx context.Context, rawName, descriptorHash string) ([]byte, bool, error) {
	entry, err := f.ledger.Find(ctx, rawName, f.store.Backend())
	if err != nil {
		return nil, false, err
	}
	if entry == nil || entry.Hash != descriptorHash {
		return nil, false, nil
	}

	data, err := f.store.Get(ctx, rawName)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// fetchOrigin performs a plain GET against the revision's origin URL.
// PDF payloads must begin with the PDF magic bytes; an invalid or empty
// payload is an error so the caller can consider the API fallback.
func (f *DocumentFetcher) fetchOrigin(ctx context.Context, rawURL, ext string) ([]byte, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse origin url: %w", err)
	}
	// Re-encode the query so oddly escaped origin links are normalized.
	parsed.RawQuery = parsed.Query().Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("origin request: %w", err)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("origin fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("origin fetch: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("origin fetch: read body: %w", err)
	}

	if len(data) == 0 {
		return nil, errors.New("origin fetch: empty payload")
	}
	if ext == "pdf" && !normalize.IsPDF(data) {
		return nil, fmt.Errorf("origin fetch: expected pdf, got %q payload", resp.Header.Get("Content-Type"))
	}
	return data, nil
}

// fetchFallback retrieves the document via the upstream API when the
// fallback budget allows. The budget is consumed per attempt regardless
// of outcome.
func (f *DocumentFetcher) fetchFallback(ctx context.Context, run *pipeline.Run, docID int) ([]byte, error) {
	if !run.APIEnabled {
		return nil, errors.New("api fallback disabled for this run")
	}
	if !run.ConsumeAPIBudget() {
		return nil, errors.New("api fallback budget exhausted")
	}

	text, err := f.client.GetBillText(ctx, docID)
	if err != nil {
		// Any failed API call opens the circuit breaker so later bills in
		// this run stop spending the fallback budget on a dead API.
		run.DegradeAPI()
		return nil, err
	}

	f.logger.Info("Fetched document via API fallback", "doc_id", docID, "remaining_budget", run.APIBudget)
	return text.Doc, nil
}
