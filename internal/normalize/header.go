// Package normalize converts raw HTML/PDF filings into normalized,
// provenance-tagged plain text: a structured header followed by a
// sentence-segmented body.
package normalize

import (
	"strings"
	"time"
)

// Header field labels, written in this fixed order. BodyMarker terminates
// the header and precedes the body.
const (
	labelFile    = "FILE:"
	labelHash    = "HASH:"
	labelDate    = "DOCDATE:"
	labelBill    = "BILLID:"
	labelCite    = "CITE:"
	labelTitle   = "TITLE:"
	labelSummary = "SUMMARY:"
	// BodyMarker separates the provenance header from the body text.
	BodyMarker = "TEXT:"
)

// headerLabels is the label sequence used by both Build and Parse.
var headerLabels = []string{
	labelFile, labelHash, labelDate, labelBill, labelCite, labelTitle, labelSummary,
}

// headerDateLayout is the document date format carried in the header.
const headerDateLayout = "2006-01-02"

// Header carries the provenance fields written ahead of a normalized body.
type Header struct {
	FileName string
	Hash     string
	Date     time.Time
	BillID   string
	CiteURL  string
	Title    string
	Summary  string
}

// fields returns the header values in label order.
func (h *Header) fields() []string {
	date := ""
	if !h.Date.IsZero() {
		date = h.Date.Format(headerDateLayout)
	}
	return []string{h.FileName, h.Hash, date, h.BillID, h.CiteURL, h.Title, h.Summary}
}

// BuildHeader concatenates the labeled fields terminated by the body
// marker. The result is a single line. Label tokens occurring inside a
// field value are stripped so the line stays parseable.
func BuildHeader(h *Header) string {
	var b strings.Builder
	for i, label := range headerLabels {
		b.WriteString(label)
		b.WriteString(" ")
		b.WriteString(sanitizeField(h.fields()[i]))
		b.WriteString(" ")
	}
	b.WriteString(BodyMarker)
	return b.String()
}

// sanitizeField removes label tokens from a field value and collapses
// the whitespace left behind.
func sanitizeField(v string) string {
	for _, label := range headerLabels {
		v = strings.ReplaceAll(v, label, " ")
	}
	v = strings.ReplaceAll(v, BodyMarker, " ")
	return strings.Join(strings.Fields(v), " ")
}

// ParseHeader inverts BuildHeader, recovering every field that was
// written. Labels are located in write order, each search anchored past
// the previous label, so field text never shadows a later label. Values
// are trimmed; fields that were empty stay empty.
func ParseHeader(line string) (*Header, bool) {
	markers := make([]string, 0, len(headerLabels)+1)
	markers = append(markers, headerLabels...)
	markers = append(markers, BodyMarker)

	starts := make([]int, len(markers))
	pos := 0
	for i, label := range markers {
		idx := strings.Index(line[pos:], label)
		if idx < 0 {
			return nil, false
		}
		starts[i] = pos + idx
		pos = starts[i] + len(label)
	}

	values := make([]string, len(headerLabels))
	for i, label := range headerLabels {
		values[i] = strings.TrimSpace(line[starts[i]+len(label) : starts[i+1]])
	}

	h := &Header{
		FileName: values[0],
		Hash:     values[1],
		BillID:   values[3],
		CiteURL:  values[4],
		Title:    values[5],
		Summary:  values[6],
	}
	if values[2] != "" {
		if t, err := time.Parse(headerDateLayout, values[2]); err == nil {
			h.Date = t
		}
	}
	return h, true
}
