package normalize

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFMagic is the byte signature every valid PDF payload starts with.
var PDFMagic = []byte("%PDF")

// IsPDF reports whether data begins with the PDF magic bytes.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, PDFMagic)
}

// PDFToLines extracts text lines from a PDF document, page by page.
func PDFToLines(data []byte) ([]string, error) {
	if !IsPDF(data) {
		return nil, fmt.Errorf("payload missing %q magic bytes", PDFMagic)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	var lines []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, pageErr := page.GetPlainText(nil)
		if pageErr != nil {
			// A single unreadable page does not fail the document.
			continue
		}
		for _, line := range strings.Split(text, "\n") {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				lines = append(lines, trimmed)
			}
		}
	}

	if len(lines) == 0 {
		return nil, fmt.Errorf("no extractable text in pdf")
	}
	return lines, nil
}
