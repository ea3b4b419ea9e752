package normalize_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/legisync/internal/logger"
	"github.com/jonesrussell/legisync/internal/normalize"
)

func newNormalizer(t *testing.T) *normalize.Normalizer {
	t.Helper()
	n, err := normalize.NewNormalizer(logger.NewNoOp())
	require.NoError(t, err)
	return n
}

func fullHeader() *normalize.Header {
	return &normalize.Header{
		FileName: "OHHB0123-1668-2019.txt",
		Hash:     "deadbeef",
		Date:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		BillID:   "1462103",
		CiteURL:  "https://legislature.example/HB123",
		Title:    "Regards municipal income tax",
		Summary:  "To amend sections of the Revised Code.",
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	t.Parallel()

	want := fullHeader()
	line := normalize.BuildHeader(want)

	got, ok := normalize.ParseHeader(line)
	require.True(t, ok)
	assert.Equal(t, want.FileName, got.FileName)
	assert.Equal(t, want.Hash, got.Hash)
	assert.True(t, want.Date.Equal(got.Date))
	assert.Equal(t, want.BillID, got.BillID)
	assert.Equal(t, want.CiteURL, got.CiteURL)
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.Summary, got.Summary)
}

func TestHeaderRoundTripEmptyFields(t *testing.T) {
	t.Parallel()

	want := &normalize.Header{FileName: "x.txt", Hash: "abc"}
	got, ok := normalize.ParseHeader(normalize.BuildHeader(want))
	require.True(t, ok)
	assert.Equal(t, "x.txt", got.FileName)
	assert.Empty(t, got.CiteURL)
	assert.Empty(t, got.Summary)
	assert.True(t, got.Date.IsZero())
}

func TestHeaderFieldsContainingLabelTokens(t *testing.T) {
	t.Parallel()

	// A label token inside a field value must neither shadow a later label
	// nor bleed text across field boundaries.
	want := &normalize.Header{
		FileName: "x.txt",
		Hash:     "abc",
		Title:    "An act SUMMARY: of sorts",
		Summary:  "Contains TEXT: and CITE: tokens.",
	}

	got, ok := normalize.ParseHeader(normalize.BuildHeader(want))
	require.True(t, ok)
	assert.Equal(t, "x.txt", got.FileName)
	assert.Equal(t, "abc", got.Hash)
	assert.Equal(t, "An act of sorts", got.Title)
	assert.Equal(t, "Contains and tokens.", got.Summary)
	assert.Empty(t, got.CiteURL)
}

func TestParseHeaderRejectsUnmarkedLine(t *testing.T) {
	t.Parallel()

	_, ok := normalize.ParseHeader("just some text without labels")
	assert.False(t, ok)

	_, ok = normalize.ParseHeader("FILE: x.txt HASH: abc")
	assert.False(t, ok, "header without body marker")
}

func TestNormalizeLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"fold em dash", "tax—exempt", "tax-exempt"},
		{"fold curly quotes", "the “act” is ‘law’", `the "act" is 'law'`},
		{"fold nbsp", "Sec.\u00A012", "Sec. 12"},
		{"fold zero-width bom", "levy\uFEFFa tax", "levy a tax"},
		{"fold en and em spaces", "one\u2002two\u2003three\u2009four", "one two three four"},
		{"collapse runs", "a  b\t\tc", "a b c"},
		{"trims", "  padded  ", "padded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, normalize.NormalizeLine(tt.in))
		})
	}
}

func TestSegmentProtectsAbbreviations(t *testing.T) {
	t.Parallel()

	n := newNormalizer(t)

	doc := n.Render(fullHeader(), []string{
		"Sub. H. B. No. 123 amends section 5747.02. of the Revised Code.",
		"The act takes effect immediately.",
	})
	lines := strings.Split(strings.TrimRight(doc, "\n"), "\n")

	// Header line plus exactly two sentences: the abbreviations and the
	// section citation must not split the first sentence.
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "HB No 123")
	assert.Contains(t, lines[1], "5747.02 of the Revised Code.")
	assert.Equal(t, "The act takes effect immediately.", lines[2])
}

func TestSegmentRenumbersListMarkers(t *testing.T) {
	t.Parallel()

	n := newNormalizer(t)

	doc := n.Render(&normalize.Header{FileName: "x.txt"}, []string{
		"The board shall do all of the following:",
		"1. Adopt rules.",
		"2. Keep records.",
	})

	assert.Contains(t, doc, "(1) Adopt rules.")
	assert.Contains(t, doc, "(2) Keep records.")
	assert.NotContains(t, doc, " 1. ")
}

func TestSegmentMergesLeadingFragment(t *testing.T) {
	t.Parallel()

	n := newNormalizer(t)

	got := n.Segment("135-HB123. An act to levy a tax. It is effective now.")
	require.Len(t, got, 2)
	assert.Equal(t, "135-HB123. An act to levy a tax.", got[0])
	assert.Equal(t, "It is effective now.", got[1])
}

func TestSegmentEmptyBody(t *testing.T) {
	t.Parallel()

	n := newNormalizer(t)
	assert.Nil(t, n.Segment(""))
}

func TestRenderDropsBlankLines(t *testing.T) {
	t.Parallel()

	n := newNormalizer(t)

	doc := n.Render(&normalize.Header{FileName: "x.txt"}, []string{
		"", "  ", "One sentence here.", "",
	})
	lines := strings.Split(strings.TrimRight(doc, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "One sentence here.", lines[1])
}

func TestParseStoredHeaderReadsFirstLine(t *testing.T) {
	t.Parallel()

	n := newNormalizer(t)
	doc := n.Render(fullHeader(), []string{"A bill for an act."})

	h, ok := normalize.ParseStoredHeader([]byte(doc))
	require.True(t, ok)
	assert.Equal(t, "https://legislature.example/HB123", h.CiteURL)
	assert.Equal(t, "deadbeef", h.Hash)
}
