package legiscan_test

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/legisync/internal/legiscan"
	"github.com/jonesrussell/legisync/internal/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *legiscan.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return legiscan.NewClient(srv.URL, "test-key", srv.Client(), logger.NewNoOp())
}

func TestClient_GetDatasetList(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "getDatasetList", r.URL.Query().Get("op"))
		assert.Equal(t, "OH", r.URL.Query().Get("state"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		fmt.Fprint(w, `{
			"status": "OK",
			"datasetlist": [
				{"state_id": 35, "session_id": 1668, "dataset_hash": "abc", "dataset_date": "2026-08-28", "access_key": "k1"}
			]
		}`)
	})

	sessions, err := client.GetDatasetList(context.Background(), "OH")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 1668, sessions[0].SessionID)
	assert.Equal(t, "abc", sessions[0].DatasetHash)
}

func TestClient_GetDatasetListEmptyIsMalformed(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"status": "OK", "datasetlist": []}`)
	})

	_, err := client.GetDatasetList(context.Background(), "")
	assert.ErrorIs(t, err, legiscan.ErrMalformedResponse)
}

func TestClient_QuotaExhaustionIsClassified(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"status": "ERROR", "alert": {"message": "Daily maximum query count exceeded"}}`)
	})

	_, err := client.GetDatasetList(context.Background(), "OH")
	assert.ErrorIs(t, err, legiscan.ErrQuotaExceeded)
}

func TestClient_APIErrorCarriesMessage(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"status": "ERROR", "alert": {"message": "Unknown session id"}}`)
	})

	_, err := client.GetDataset(context.Background(), 9999, "key")
	var apiErr *legiscan.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "getDataset", apiErr.Op)
	assert.Contains(t, apiErr.Message, "Unknown session id")
	assert.False(t, errors.Is(err, legiscan.ErrQuotaExceeded))
}

func TestClient_UnknownStatusIsMalformed(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"status": "WAT"}`)
	})

	_, err := client.GetDatasetList(context.Background(), "OH")
	assert.ErrorIs(t, err, legiscan.ErrMalformedResponse)
}

func TestClient_GetDatasetDecodesZip(t *testing.T) {
	t.Parallel()

	payload := []byte("PK\x03\x04fake-zip-bytes")
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "getDataset", r.URL.Query().Get("op"))
		assert.Equal(t, "1668", r.URL.Query().Get("id"))
		assert.Equal(t, "k1", r.URL.Query().Get("access_key"))
		fmt.Fprintf(w, `{"status": "OK", "dataset": {"session_id": 1668, "zip": %q}}`,
			base64.StdEncoding.EncodeToString(payload))
	})

	zip, err := client.GetDataset(context.Background(), 1668, "k1")
	require.NoError(t, err)
	assert.Equal(t, payload, zip)
}

func TestClient_GetDatasetRejectsBadBase64(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"status": "OK", "dataset": {"session_id": 1668, "zip": "!!!not-base64!!!"}}`)
	})

	_, err := client.GetDataset(context.Background(), 1668, "k1")
	assert.ErrorIs(t, err, legiscan.ErrMalformedResponse)
}

func TestClient_GetBillText(t *testing.T) {
	t.Parallel()

	doc := []byte("<html><body>A bill.</body></html>")
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "getBillText", r.URL.Query().Get("op"))
		assert.Equal(t, "2005512", r.URL.Query().Get("id"))
		fmt.Fprintf(w, `{"status": "OK", "text": {"doc_id": 2005512, "date": "2026-03-01", "mime": "text/html", "doc": %q}}`,
			base64.StdEncoding.EncodeToString(doc))
	})

	text, err := client.GetBillText(context.Background(), 2005512)
	require.NoError(t, err)
	assert.Equal(t, 2005512, text.DocID)
	assert.Equal(t, "text/html", text.Mime)
	assert.Equal(t, doc, text.Doc)
}

func TestClient_NonOKHTTPStatus(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.GetBillText(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 503")
}

func TestClient_GarbageBodyIsMalformed(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<html>not json</html>")
	})

	_, err := client.GetDatasetList(context.Background(), "OH")
	assert.ErrorIs(t, err, legiscan.ErrMalformedResponse)
}
