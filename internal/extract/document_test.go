package extract

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/legisync/internal/domain"
	"github.com/jonesrussell/legisync/internal/ledger"
	"github.com/jonesrussell/legisync/internal/legiscan"
	"github.com/jonesrussell/legisync/internal/logger"
	"github.com/jonesrussell/legisync/internal/pipeline"
	"github.com/jonesrussell/legisync/testutils"
)

const originHTML = "<html><body><p>An act to levy a tax.</p></body></html>"

// originStub serves a canned payload and counts hits.
type originStub struct {
	payload []byte
	status  int
	hits    atomic.Int64
}

func (s *originStub) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.hits.Add(1)
		if s.status != 0 && s.status != http.StatusOK {
			w.WriteHeader(s.status)
			return
		}
		_, _ = w.Write(s.payload)
	}
}

type docFixture struct {
	store   *testutils.MemStore
	ledger  *ledger.Ledger
	origin  *originStub
	apiHits atomic.Int64
	apiDoc  []byte
	apiMsg  string
	fetcher *DocumentFetcher
	rev     domain.Revision
	bill    *domain.BillDetail
}

func newDocFixture(t *testing.T) *docFixture {
	t.Helper()

	db, err := ledger.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &docFixture{
		store:  testutils.NewMemStore(domain.BackendFile),
		ledger: ledger.New(db),
		origin: &originStub{payload: []byte(originHTML)},
		apiDoc: []byte(originHTML),
	}

	originSrv := httptest.NewServer(f.origin.handler())
	t.Cleanup(originSrv.Close)

	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.apiHits.Add(1)
		if f.apiMsg != "" {
			fmt.Fprintf(w, `{"status": "ERROR", "alert": {"message": %q}}`, f.apiMsg)
			return
		}
		fmt.Fprintf(w, `{"status": "OK", "text": {"doc_id": 555, "date": "2026-03-01", "mime": "text/html", "doc": %q}}`,
			base64.StdEncoding.EncodeToString(f.apiDoc))
	}))
	t.Cleanup(apiSrv.Close)

	client := legiscan.NewClient(apiSrv.URL, "test-key", apiSrv.Client(), logger.NewNoOp())
	f.fetcher = NewDocumentFetcher(f.store, f.ledger, client, nil, logger.NewNoOp())

	f.rev = domain.Revision{
		DocID:     555,
		Date:      "2026-03-01",
		Mime:      "text/html",
		URL:       "https://api.example/doc/555",
		StateLink: originSrv.URL + "/bills/hb123",
	}
	f.bill = &domain.BillDetail{
		BillID: 1462103, Number: "HB 123", SessionID: 1668, Hash: "hash-v1",
	}
	return f
}

func TestDocumentFetcher_OriginFetchPersistsRaw(t *testing.T) {
	f := newDocFixture(t)
	ctx := context.Background()
	run := pipeline.NewRun(true, 2)

	doc, err := f.fetcher.Fetch(ctx, run, "OHHB0123-1668-2026", f.bill, f.rev)
	require.NoError(t, err)
	assert.Equal(t, []byte(originHTML), doc.Data)
	assert.Equal(t, "html", doc.Ext)
	assert.Equal(t, f.rev.StateLink, doc.CiteURL)
	assert.EqualValues(t, 1, f.origin.hits.Load())

	entry, err := f.ledger.Find(ctx, "OHHB0123-1668-2026.html", domain.BackendFile)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "hash-v1", entry.Hash)
}

func TestDocumentFetcher_ReusesStoredWhenHashMatches(t *testing.T) {
	f := newDocFixture(t)
	ctx := context.Background()
	run := pipeline.NewRun(true, 2)

	_, err := f.fetcher.Fetch(ctx, run, "OHHB0123-1668-2026", f.bill, f.rev)
	require.NoError(t, err)

	doc, err := f.fetcher.Fetch(ctx, run, "OHHB0123-1668-2026", f.bill, f.rev)
	require.NoError(t, err)
	assert.Equal(t, []byte(originHTML), doc.Data)
	assert.EqualValues(t, 1, f.origin.hits.Load(), "stored artifact must be reused")
}

func TestDocumentFetcher_RefetchesWhenHashMoves(t *testing.T) {
	f := newDocFixture(t)
	ctx := context.Background()
	run := pipeline.NewRun(true, 2)

	_, err := f.fetcher.Fetch(ctx, run, "OHHB0123-1668-2026", f.bill, f.rev)
	require.NoError(t, err)

	f.bill.Hash = "hash-v2"
	_, err = f.fetcher.Fetch(ctx, run, "OHHB0123-1668-2026", f.bill, f.rev)
	require.NoError(t, err)
	assert.EqualValues(t, 2, f.origin.hits.Load())

	entry, err := f.ledger.Find(ctx, "OHHB0123-1668-2026.html", domain.BackendFile)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "hash-v2", entry.Hash)
}

func TestDocumentFetcher_UnsupportedMime(t *testing.T) {
	f := newDocFixture(t)
	run := pipeline.NewRun(true, 2)

	f.rev.Mime = "application/msword"
	_, err := f.fetcher.Fetch(context.Background(), run, "KEY", f.bill, f.rev)
	assert.ErrorIs(t, err, ErrUnsupportedMime)
}

func TestDocumentFetcher_RejectsHTMLPayloadForPDFRevision(t *testing.T) {
	f := newDocFixture(t)
	run := pipeline.NewRun(false, 0)

	// Origin serves an HTML error page where a PDF is expected; with the
	// API fallback unavailable the fetch must fail rather than store it.
	f.rev.Mime = "application/pdf"
	_, err := f.fetcher.Fetch(context.Background(), run, "KEY", f.bill, f.rev)
	require.Error(t, err)
	assert.Equal(t, 0, f.store.Len())
}

func TestDocumentFetcher_FallbackUsesAPIAndBudget(t *testing.T) {
	f := newDocFixture(t)
	ctx := context.Background()
	run := pipeline.NewRun(true, 2)

	f.origin.status = http.StatusInternalServerError
	doc, err := f.fetcher.Fetch(ctx, run, "OHHB0123-1668-2026", f.bill, f.rev)
	require.NoError(t, err)
	assert.Equal(t, []byte(originHTML), doc.Data)
	assert.Equal(t, f.rev.URL, doc.CiteURL, "fallback cite is the api url")
	assert.EqualValues(t, 1, f.apiHits.Load())
	assert.Equal(t, 1, run.APIBudget)
}

func TestDocumentFetcher_FallbackBlockedWithoutBudget(t *testing.T) {
	f := newDocFixture(t)
	run := pipeline.NewRun(true, 0)

	f.origin.status = http.StatusInternalServerError
	_, err := f.fetcher.Fetch(context.Background(), run, "KEY", f.bill, f.rev)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "budget exhausted")
	assert.EqualValues(t, 0, f.apiHits.Load())
}

func TestDocumentFetcher_AnyFallbackErrorDegradesAPI(t *testing.T) {
	f := newDocFixture(t)
	run := pipeline.NewRun(true, 5)

	f.origin.status = http.StatusInternalServerError
	f.apiMsg = "Unknown document id"
	_, err := f.fetcher.Fetch(context.Background(), run, "KEY", f.bill, f.rev)
	require.Error(t, err)
	assert.False(t, run.APIEnabled, "a failed fallback call must open the circuit breaker")
	assert.Equal(t, 4, run.APIBudget)
}

func TestDocumentFetcher_QuotaOnFallbackDegradesAPI(t *testing.T) {
	f := newDocFixture(t)
	run := pipeline.NewRun(true, 5)

	f.origin.status = http.StatusInternalServerError
	f.apiMsg = "Daily maximum query count exceeded"
	_, err := f.fetcher.Fetch(context.Background(), run, "KEY", f.bill, f.rev)
	require.Error(t, err)
	assert.False(t, run.APIEnabled, "quota exhaustion must degrade the run")
	assert.Equal(t, 4, run.APIBudget, "budget is consumed per attempt")
}
