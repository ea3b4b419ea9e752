package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	// listingPrefix and listingSuffix frame the dataset listing item name.
	listingPrefix = "DatasetList-"
	listingSuffix = ".json"
	// listingDateLayout is the date embedded in a listing item name.
	listingDateLayout = "2006-01-02"
)

// SessionEntry is one session in the upstream dataset catalog.
type SessionEntry struct {
	StateID     int    `json:"state_id"`
	SessionID   int    `json:"session_id"`
	Special     int    `json:"special"`
	YearStart   int    `json:"year_start"`
	YearEnd     int    `json:"year_end"`
	SessionName string `json:"session_name"`
	DatasetHash string `json:"dataset_hash"`
	DatasetDate string `json:"dataset_date"`
	DatasetSize int64  `json:"dataset_size"`
	AccessKey   string `json:"access_key"`
}

// ParsedDate returns the declared dataset date, or the zero time when
// unset or malformed.
func (s SessionEntry) ParsedDate() time.Time {
	t, err := time.Parse(listingDateLayout, s.DatasetDate)
	if err != nil {
		return time.Time{}
	}
	return t
}

// DatasetListing is the upstream catalog of known legislative sessions.
type DatasetListing struct {
	Date     time.Time
	Sessions []SessionEntry
}

// SessionsForState returns the listing entries for one jurisdiction,
// most recent session first (by session id).
func (l *DatasetListing) SessionsForState(stateID int) []SessionEntry {
	var out []SessionEntry
	for _, s := range l.Sessions {
		if s.StateID == stateID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SessionID > out[j].SessionID })
	return out
}

// ListingName returns the storage item name for a dataset listing fetched
// on the given date: DatasetList-YYYY-MM-DD.json.
func ListingName(date time.Time) string {
	return listingPrefix + date.Format(listingDateLayout) + listingSuffix
}

// ParseListingDate recovers the embedded date from a listing item name.
func ParseListingDate(name string) (time.Time, error) {
	if !strings.HasPrefix(name, listingPrefix) || !strings.HasSuffix(name, listingSuffix) {
		return time.Time{}, fmt.Errorf("not a dataset listing name: %q", name)
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(name, listingPrefix), listingSuffix)
	t, err := time.Parse(listingDateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed listing date in %q: %w", name, err)
	}
	return t, nil
}

// IsListingName reports whether name follows the dataset listing format.
func IsListingName(name string) bool {
	_, err := ParseListingDate(name)
	return err == nil
}

// DatasetName returns the storage item name for a per-session dataset
// artifact: CC-Dataset-NNNN.{json,zip}.
func DatasetName(code string, sessionID int, ext string) string {
	return fmt.Sprintf("%s-Dataset-%04d.%s", strings.ToUpper(code), sessionID, ext)
}
