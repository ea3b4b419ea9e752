package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	// TitleLimit is the maximum length of a persisted bill title.
	TitleLimit = 200
	// SummaryLimit is the maximum length of a persisted bill summary.
	SummaryLimit = 1000
	// keyBudget is the total-length budget for a bill key. The year suffix
	// degrades from 4 to 2 digits when the full form would exceed it.
	keyBudget = 20
	// billNumberDigits is the zero-padded width of the numeric part of a
	// normalized bill number.
	billNumberDigits = 4
)

// Revision is one dated version of a bill's document text.
type Revision struct {
	DocID     int    `json:"doc_id"`
	Date      string `json:"date"`
	Type      string `json:"type"`
	Mime      string `json:"mime"`
	Size      int64  `json:"text_size"`
	URL       string `json:"url"`
	StateLink string `json:"state_link"`
}

// ParsedDate returns the revision date, or the zero time when unset or
// malformed.
func (r Revision) ParsedDate() time.Time {
	t, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}

// BillDetail is the parsed per-bill descriptor from a session dataset.
type BillDetail struct {
	BillID    int        `json:"bill_id"`
	Number    string     `json:"bill_number"`
	State     string     `json:"state"`
	SessionID int        `json:"session_id"`
	Title     string     `json:"title"`
	Summary   string     `json:"description"`
	Hash      string     `json:"change_hash"`
	URL       string     `json:"url"`
	Texts     []Revision `json:"texts"`
}

// LatestText chooses the authoritative document revision: the one with
// the latest date, ties broken by the higher document id. It also reports
// the earliest year seen across all revisions, used for key disambiguation.
func (b *BillDetail) LatestText() (Revision, int, bool) {
	if len(b.Texts) == 0 {
		return Revision{}, 0, false
	}

	chosen := b.Texts[0]
	earliest := chosen.ParsedDate().Year()
	for _, t := range b.Texts[1:] {
		if y := t.ParsedDate().Year(); y != 0 && (earliest == 0 || y < earliest) {
			earliest = y
		}
		cd, td := chosen.ParsedDate(), t.ParsedDate()
		if td.After(cd) || (td.Equal(cd) && t.DocID > chosen.DocID) {
			chosen = t
		}
	}
	return chosen, earliest, true
}

// NormalizeBillNumber folds a raw bill number into body letters plus
// zero-padded digits: "HB 123" becomes "HB0123".
func NormalizeBillNumber(number string) string {
	var letters, digits strings.Builder
	for _, r := range number {
		switch {
		case unicode.IsLetter(r):
			letters.WriteRune(unicode.ToUpper(r))
		case unicode.IsDigit(r):
			digits.WriteRune(r)
		}
	}

	num := strings.TrimLeft(digits.String(), "0")
	if num == "" {
		num = "0"
	}
	for len(num) < billNumberDigits {
		num = "0" + num
	}
	return letters.String() + num
}

// BillKey derives the deterministic join key for a bill. The key is
// composed from the jurisdiction code, the normalized bill number, the
// session id and a year suffix; the 4-digit year is preferred, degrading
// to 2 digits when the full form would exceed the key budget.
func BillKey(state, number string, sessionID, year int) string {
	base := fmt.Sprintf("%s%s-%d-", strings.ToUpper(state), NormalizeBillNumber(number), sessionID)
	yearFull := strconv.Itoa(year)
	if len(base)+len(yearFull) <= keyBudget {
		return base + yearFull
	}
	if len(yearFull) == 4 {
		return base + yearFull[2:]
	}
	return base + yearFull
}

// ShrinkToSentence bounds s to max characters, ending on a full sentence
// and beginning with an uppercase letter.
func ShrinkToSentence(s string, max int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}

	if len(s) > max {
		cut := s[:max]
		// Back off a torn trailing rune before looking for a cut point.
		for len(cut) > 0 && !utf8.ValidString(cut) {
			cut = cut[:len(cut)-1]
		}
		if idx := strings.LastIndex(cut, ". "); idx > 0 {
			cut = cut[:idx+1]
		} else if idx := strings.LastIndex(cut, " "); idx > 0 {
			cut = cut[:idx] + "."
		} else {
			cut += "."
		}
		s = cut
	}

	if !strings.HasSuffix(s, ".") && !strings.HasSuffix(s, "?") && !strings.HasSuffix(s, "!") {
		s += "."
	}

	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// Summary is the minimal record handed to the downstream classification
// and search layer.
type Summary struct {
	Key          string    `db:"key" json:"key"`
	BillID       int       `db:"bill_id" json:"bill_id"`
	Date         time.Time `db:"date" json:"date"`
	Title        string    `db:"title" json:"title"`
	Summary      string    `db:"summary" json:"summary"`
	CiteURL      string    `db:"cite_url" json:"cite_url"`
	Jurisdiction string    `db:"jurisdiction" json:"jurisdiction"`
}
