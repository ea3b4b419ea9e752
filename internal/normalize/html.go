package normalize

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// htmlSkipSelector names elements stripped before text extraction.
const htmlSkipSelector = "script, style, noscript, head, nav, header, footer"

// HTMLToLines extracts visible text lines from an HTML document.
func HTMLToLines(data []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc.Find(htmlSkipSelector).Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	// Block elements carry one line each; elements that still contain
	// block children are skipped so nested text is not emitted twice.
	var lines []string
	root.Find("p, li, h1, h2, h3, h4, h5, h6, td, th, pre, blockquote, div").Each(func(_ int, sel *goquery.Selection) {
		if sel.ChildrenFiltered("p, li, div, table, ul, ol, blockquote").Length() > 0 {
			return
		}
		if text := strings.TrimSpace(sel.Text()); text != "" {
			lines = append(lines, text)
		}
	})

	// Flat documents without block markup fall back to the raw text split
	// on source newlines.
	if len(lines) == 0 {
		for _, line := range strings.Split(root.Text(), "\n") {
			if text := strings.TrimSpace(line); text != "" {
				lines = append(lines, text)
			}
		}
	}
	return lines, nil
}
