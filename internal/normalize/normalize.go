package normalize

import (
	"fmt"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"

	"github.com/jonesrussell/legisync/internal/logger"
)

// Normalizer assembles normalized text documents: a provenance header on
// the first line, then one sentence per line.
type Normalizer struct {
	tokenizer *sentences.DefaultSentenceTokenizer
	logger    logger.Interface
}

// NewNormalizer creates a normalizer with the English sentence tokenizer.
func NewNormalizer(log logger.Interface) (*Normalizer, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("create sentence tokenizer: %w", err)
	}
	return &Normalizer{tokenizer: tokenizer, logger: log.WithComponent("normalize")}, nil
}

// Render produces the stored document for a header and raw body lines.
// Lines are punctuation-normalized and joined into one logical line, the
// boundary rules are applied, and the result is re-segmented into one
// sentence per line under the header.
func (n *Normalizer) Render(header *Header, lines []string) string {
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		if norm := NormalizeLine(line); norm != "" {
			parts = append(parts, norm)
		}
	}
	body := prepareBody(strings.Join(parts, " "))

	var b strings.Builder
	b.WriteString(BuildHeader(header))
	b.WriteString("\n")
	for _, sentence := range n.Segment(body) {
		b.WriteString(sentence)
		b.WriteString("\n")
	}
	return b.String()
}

// Segment splits a single-line body into sentences. A stray leading
// fragment lacking a space is merged into the following sentence.
func (n *Normalizer) Segment(body string) []string {
	if body == "" {
		return nil
	}

	var out []string
	for _, s := range n.tokenizer.Tokenize(body) {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		out = append(out, text)
	}

	if len(out) >= 2 && !strings.Contains(out[0], " ") {
		out[1] = strings.TrimSpace(out[0] + " " + out[1])
		out = out[1:]
	}
	return out
}

// ParseStoredHeader recovers the header from a previously stored
// document, used to re-read provenance (e.g. a resolved citation URL)
// without re-extracting.
func ParseStoredHeader(document []byte) (*Header, bool) {
	text := string(document)
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	return ParseHeader(text)
}
