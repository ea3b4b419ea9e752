package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/legisync/internal/normalize"
)

func TestHTMLToLines_BlockElements(t *testing.T) {
	t.Parallel()

	html := []byte(`<html><head><title>ignored</title></head><body>
		<h1>House Bill 123</h1>
		<p>An act to levy a tax.</p>
		<ul><li>First duty.</li><li>Second duty.</li></ul>
	</body></html>`)

	lines, err := normalize.HTMLToLines(html)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"House Bill 123",
		"An act to levy a tax.",
		"First duty.",
		"Second duty.",
	}, lines)
}

func TestHTMLToLines_SkipsScriptAndChrome(t *testing.T) {
	t.Parallel()

	html := []byte(`<html><body>
		<nav><p>Site menu</p></nav>
		<script>var tracked = true;</script>
		<style>p { color: red }</style>
		<p>The only real line.</p>
		<footer><p>Copyright</p></footer>
	</body></html>`)

	lines, err := normalize.HTMLToLines(html)
	require.NoError(t, err)
	assert.Equal(t, []string{"The only real line."}, lines)
}

func TestHTMLToLines_NestedBlocksNotDuplicated(t *testing.T) {
	t.Parallel()

	html := []byte(`<html><body>
		<div><div><p>Inner text.</p></div></div>
	</body></html>`)

	lines, err := normalize.HTMLToLines(html)
	require.NoError(t, err)
	assert.Equal(t, []string{"Inner text."}, lines)
}

func TestHTMLToLines_FlatDocumentFallsBack(t *testing.T) {
	t.Parallel()

	html := []byte("First line.\nSecond line.\n")

	lines, err := normalize.HTMLToLines(html)
	require.NoError(t, err)
	assert.Equal(t, []string{"First line.", "Second line."}, lines)
}

func TestIsPDF(t *testing.T) {
	t.Parallel()

	assert.True(t, normalize.IsPDF([]byte("%PDF-1.7 rest of file")))
	assert.False(t, normalize.IsPDF([]byte("<html>not a pdf</html>")))
	assert.False(t, normalize.IsPDF(nil))
}

func TestPDFToLines_RejectsNonPDF(t *testing.T) {
	t.Parallel()

	_, err := normalize.PDFToLines([]byte("<html>body</html>"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "magic bytes")
}

func TestPDFToLines_RejectsTruncatedPDF(t *testing.T) {
	t.Parallel()

	_, err := normalize.PDFToLines([]byte("%PDF-1.7 truncated garbage"))
	require.Error(t, err)
}
