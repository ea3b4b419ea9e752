package normalize

import (
	"regexp"
	"strings"
)

// RewriteRule is one pattern→replacement step in the normalization
// sequence. Rules are applied in table order; keeping them data-driven
// lets each rule be tested in isolation.
type RewriteRule struct {
	Name    string
	Pattern *regexp.Regexp
	Replace string
}

// punctuationRules fold special Unicode punctuation to ASCII equivalents
// and collapse whitespace. Applied to every body line on assembly.
var punctuationRules = []RewriteRule{
	{"fold-dashes", regexp.MustCompile("[‐‑‒–—―]"), "-"},
	{"fold-single-quotes", regexp.MustCompile("[‘’‚ʼ]"), "'"},
	{"fold-double-quotes", regexp.MustCompile("[“”„«»]"), `"`},
	{"fold-spaces", regexp.MustCompile("[\u00A0\u2002\u2003\u2009\uFEFF]"), " "},
	{"collapse-whitespace", regexp.MustCompile(`\s+`), " "},
}

// boundaryRules collapse legislative abbreviations whose trailing periods
// would otherwise read as sentence boundaries, and renumber "N." ordered
// list markers to "(N)". Applied once to the assembled body before
// sentence segmentation.
var boundaryRules = []RewriteRule{
	// Bill-type prefixes: "H. B. 123", "S.B. 45" and the like.
	{"bill-prefix", regexp.MustCompile(`\b([HSA])\.\s?([BRJC])\.\s?`), "$1$2 "},
	// "Sec. 12" / "Sub. 3" section markers.
	{"sec-marker", regexp.MustCompile(`\b(Sec|Subsec|Sub|Secs)\.\s`), "$1 "},
	// "No." in citations ("Am. Sub. No. 123").
	{"no-marker", regexp.MustCompile(`\b(No|Nos)\.\s`), "$1 "},
	// Section-number citations: "123.45." loses only the trailing period.
	{"section-citation", regexp.MustCompile(`\b(\d+\.\d+)\.\s`), "$1 "},
	// Ordered-list markers "1. " become "(1) " so list numbering is not
	// mistaken for a sentence-final period.
	{"list-marker", regexp.MustCompile(`(^|\s)(\d{1,2})\.\s`), "$1($2) "},
}

// applyRules runs the rule table over s in order.
func applyRules(rules []RewriteRule, s string) string {
	for _, r := range rules {
		s = r.Pattern.ReplaceAllString(s, r.Replace)
	}
	return s
}

// NormalizeLine folds punctuation and collapses whitespace in one body
// line.
func NormalizeLine(line string) string {
	return strings.TrimSpace(applyRules(punctuationRules, line))
}

// prepareBody applies the boundary rules to the assembled single-line body.
func prepareBody(body string) string {
	return strings.TrimSpace(applyRules(boundaryRules, body))
}
