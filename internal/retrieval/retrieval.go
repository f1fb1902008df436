// Package retrieval turns a user query into an answer excerpt by literal
// substring search over the knowledge base. The policy is deliberately
// simple: the first entry in store order whose text contains the query
// substring wins. No ranking, no scoring, no tokenization.
package retrieval

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aisupport/faq-service/internal/model"
)

// Excerpt window bounds, in bytes relative to the match start.
const (
	excerptBefore = 120
	excerptAfter  = 240
)

// FindAnswer scans entries in the order given and returns an excerpt from
// the first entry whose text contains query as a case-insensitive
// substring. Entries with empty text are skipped. Returns ("", false) when
// no entry matches.
func FindAnswer(query string, entries []model.KnowledgeEntry) (string, bool) {
	q := strings.ToLower(query)
	for _, e := range entries {
		if e.Text == "" {
			continue
		}
		idx := strings.Index(strings.ToLower(e.Text), q)
		if idx < 0 {
			continue
		}
		return excerpt(e.Text, originalIndex(e.Text, idx)), true
	}
	return "", false
}

// originalIndex maps a byte offset in the lowercased text back to the
// offset of the corresponding rune in the original text. Lowercasing can
// change a rune's UTF-8 length, so the two offsets drift apart and the
// lowered offset may even exceed len(text).
func originalIndex(text string, lowerIdx int) int {
	lowered := 0
	for i, r := range text {
		if lowered >= lowerIdx {
			return i
		}
		lowered += utf8.RuneLen(unicode.ToLower(r))
	}
	return len(text)
}

// excerpt slices the original-case text around the match index so case is
// preserved in the output. Bounds clamp to the text edges and widen to
// rune boundaries so a multi-byte rune is never split.
func excerpt(text string, idx int) string {
	start := idx - excerptBefore
	if start < 0 {
		start = 0
	}
	end := idx + excerptAfter
	if end > len(text) {
		end = len(text)
	}
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}
	return text[start:end]
}
