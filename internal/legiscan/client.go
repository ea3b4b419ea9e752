// Package legiscan implements the client for the upstream bulk-data API.
// Responses carry a status field; errors are classified into quota
// exhaustion, upstream API errors and malformed responses so callers can
// react to each distinctly.
package legiscan

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jonesrussell/legisync/internal/domain"
	"github.com/jonesrussell/legisync/internal/logger"
)

const (
	// DefaultBaseURL is the upstream API endpoint.
	DefaultBaseURL = "https://api.legiscan.com/"

	// quotaMessage is the substring in an upstream alert that signals
	// query quota exhaustion.
	quotaMessage = "maximum query count"

	statusOK    = "OK"
	statusError = "ERROR"
)

var (
	// ErrQuotaExceeded signals that the upstream query quota is exhausted.
	ErrQuotaExceeded = errors.New("api query quota exceeded")
	// ErrMalformedResponse signals an upstream payload that does not parse
	// as the expected shape.
	ErrMalformedResponse = errors.New("malformed api response")
)

// APIError is an upstream-reported error other than quota exhaustion.
type APIError struct {
	Op      string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error in %s: %s", e.Op, e.Message)
}

// Client talks to the upstream bulk-data API.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  logger.Interface
}

// NewClient creates an API client. A nil httpClient uses http.DefaultClient.
func NewClient(baseURL, apiKey string, httpClient *http.Client, log logger.Interface) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  httpClient,
		logger:  log.WithComponent("legiscan"),
	}
}

// GetDatasetList fetches the catalog of known sessions, optionally
// filtered to one jurisdiction code.
func (c *Client) GetDatasetList(ctx context.Context, state string) ([]domain.SessionEntry, error) {
	params := url.Values{"op": {"getDatasetList"}}
	if state != "" {
		params.Set("state", state)
	}

	var resp datasetListResponse
	if err := c.call(ctx, "getDatasetList", params, &resp); err != nil {
		return nil, err
	}
	if err := classify("getDatasetList", resp.Status, resp.Alert); err != nil {
		return nil, err
	}
	if len(resp.DatasetList) == 0 {
		return nil, fmt.Errorf("%w: getDatasetList returned no sessions", ErrMalformedResponse)
	}
	return resp.DatasetList, nil
}

// GetDataset fetches one session archive and decodes its embedded zip.
func (c *Client) GetDataset(ctx context.Context, sessionID int, accessKey string) ([]byte, error) {
	params := url.Values{
		"op":         {"getDataset"},
		"id":         {strconv.Itoa(sessionID)},
		"access_key": {accessKey},
	}

	var resp datasetResponse
	if err := c.call(ctx, "getDataset", params, &resp); err != nil {
		return nil, err
	}
	if err := classify("getDataset", resp.Status, resp.Alert); err != nil {
		return nil, err
	}

	zip, err := base64.StdEncoding.DecodeString(resp.Dataset.Zip)
	if err != nil || len(zip) == 0 {
		return nil, fmt.Errorf("%w: getDataset zip payload for session %d", ErrMalformedResponse, sessionID)
	}
	return zip, nil
}

// GetBillText fetches one document's payload and mime type.
func (c *Client) GetBillText(ctx context.Context, docID int) (*BillText, error) {
	params := url.Values{
		"op": {"getBillText"},
		"id": {strconv.Itoa(docID)},
	}

	var resp billTextResponse
	if err := c.call(ctx, "getBillText", params, &resp); err != nil {
		return nil, err
	}
	if err := classify("getBillText", resp.Status, resp.Alert); err != nil {
		return nil, err
	}

	doc, err := base64.StdEncoding.DecodeString(resp.Text.Doc)
	if err != nil || len(doc) == 0 {
		return nil, fmt.Errorf("%w: getBillText doc payload for doc %d", ErrMalformedResponse, docID)
	}
	return &BillText{
		DocID: resp.Text.DocID,
		Date:  resp.Text.Date,
		Mime:  resp.Text.Mime,
		Doc:   doc,
	}, nil
}

// call performs one parameterized GET and decodes the JSON body into out.
func (c *Client) call(ctx context.Context, op string, params url.Values, out any) error {
	params.Set("key", c.apiKey)
	endpoint := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("api %s: new request: %w", op, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("api %s: do request: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("api %s: unexpected status %d", op, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("api %s: read body: %w", op, err)
	}

	if jsonErr := json.Unmarshal(body, out); jsonErr != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedResponse, op, jsonErr)
	}

	c.logger.Debug("API call complete", "op", op, "bytes", len(body))
	return nil
}

// classify maps an upstream status/alert pair to the error taxonomy.
func classify(op, status string, a *alert) error {
	switch status {
	case statusOK:
		return nil
	case statusError:
		msg := ""
		if a != nil {
			msg = a.Message
		}
		if strings.Contains(strings.ToLower(msg), quotaMessage) {
			return fmt.Errorf("%w: %s", ErrQuotaExceeded, msg)
		}
		return &APIError{Op: op, Message: msg}
	default:
		return fmt.Errorf("%w: %s: unknown status %q", ErrMalformedResponse, op, status)
	}
}
