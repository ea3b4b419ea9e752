package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/legisync/internal/domain"
)

func TestListingName_RoundTrip(t *testing.T) {
	t.Parallel()

	date := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	name := domain.ListingName(date)
	assert.Equal(t, "DatasetList-2026-08-30.json", name)

	parsed, err := domain.ParseListingDate(name)
	require.NoError(t, err)
	assert.Equal(t, "2026-08-30", parsed.Format("2006-01-02"))
}

func TestParseListingDate_Rejects(t *testing.T) {
	t.Parallel()

	for _, name := range []string{
		"DatasetList-notadate.json",
		"OH-Dataset-1668.zip",
		"DatasetList-2026-08-30.zip",
	} {
		_, err := domain.ParseListingDate(name)
		assert.Error(t, err, "name %q", name)
	}
}

func TestDatasetName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "OH-Dataset-1668.zip", domain.DatasetName("oh", 1668, "zip"))
	assert.Equal(t, "CA-Dataset-0042.json", domain.DatasetName("CA", 42, "json"))
}

func TestSessionsForState_MostRecentFirst(t *testing.T) {
	t.Parallel()

	listing := &domain.DatasetListing{Sessions: []domain.SessionEntry{
		{StateID: 35, SessionID: 100},
		{StateID: 5, SessionID: 900},
		{StateID: 35, SessionID: 300},
		{StateID: 35, SessionID: 200},
	}}

	sessions := listing.SessionsForState(35)
	require.Len(t, sessions, 3)
	assert.Equal(t, []int{300, 200, 100}, []int{
		sessions[0].SessionID, sessions[1].SessionID, sessions[2].SessionID,
	})
}
