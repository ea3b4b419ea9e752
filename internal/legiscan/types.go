package legiscan

import "github.com/jonesrussell/legisync/internal/domain"

// datasetListResponse is the wire shape of a list-all-sessions call.
type datasetListResponse struct {
	Status      string                `json:"status"`
	Alert       *alert                `json:"alert"`
	DatasetList []domain.SessionEntry `json:"datasetlist"`
}

// datasetResponse is the wire shape of a fetch-one-session-archive call.
// The zip payload is embedded base64.
type datasetResponse struct {
	Status  string `json:"status"`
	Alert   *alert `json:"alert"`
	Dataset struct {
		StateID   int    `json:"state_id"`
		SessionID int    `json:"session_id"`
		Zip       string `json:"zip"`
	} `json:"dataset"`
}

// billTextResponse is the wire shape of a fetch-one-document-text call.
type billTextResponse struct {
	Status string `json:"status"`
	Alert  *alert `json:"alert"`
	Text   struct {
		DocID int    `json:"doc_id"`
		Date  string `json:"date"`
		Mime  string `json:"mime"`
		Doc   string `json:"doc"`
	} `json:"text"`
}

// alert carries the upstream error message on status "ERROR".
type alert struct {
	Message string `json:"message"`
}

// BillText is a decoded document payload with its mime type.
type BillText struct {
	DocID int
	Date  string
	Mime  string
	Doc   []byte
}
