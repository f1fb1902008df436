package retrieval_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/aisupport/faq-service/internal/model"
	"github.com/aisupport/faq-service/internal/retrieval"
	"github.com/stretchr/testify/require"
)

func entries(texts ...string) []model.KnowledgeEntry {
	result := make([]model.KnowledgeEntry, len(texts))
	for i, t := range texts {
		result[i] = model.KnowledgeEntry{Filename: "faq.txt", Text: t}
	}
	return result
}

func TestFindAnswer_MatchesRefundExample(t *testing.T) {
	excerpt, ok := retrieval.FindAnswer("refund", entries("Our refund policy allows returns within 30 days."))
	require.True(t, ok)
	require.Equal(t, "Our refund policy allows returns within 30 days.", excerpt)
}

func TestFindAnswer_IsCaseInsensitiveButPreservesCase(t *testing.T) {
	excerpt, ok := retrieval.FindAnswer("REFUND", entries("Our Refund Policy is simple."))
	require.True(t, ok)
	require.Equal(t, "Our Refund Policy is simple.", excerpt)
}

func TestFindAnswer_FirstMatchingEntryWins(t *testing.T) {
	excerpt, ok := retrieval.FindAnswer("shipping", entries(
		"Nothing relevant here.",
		"First: shipping takes 3 days.",
		"Second: shipping takes 5 days.",
	))
	require.True(t, ok)
	require.Contains(t, excerpt, "First: shipping takes 3 days.")
	require.NotContains(t, excerpt, "Second")
}

func TestFindAnswer_SkipsEntriesWithEmptyText(t *testing.T) {
	excerpt, ok := retrieval.FindAnswer("shipping", entries(
		"",
		"shipping takes 3 days.",
	))
	require.True(t, ok)
	require.Contains(t, excerpt, "shipping takes 3 days.")
}

func TestFindAnswer_NoMatch(t *testing.T) {
	_, ok := retrieval.FindAnswer("warranty", entries("Our refund policy allows returns."))
	require.False(t, ok)
}

func TestFindAnswer_NoEntries(t *testing.T) {
	_, ok := retrieval.FindAnswer("anything", nil)
	require.False(t, ok)
}

func TestFindAnswer_ExcerptWindowMidText(t *testing.T) {
	// Match far from both edges: window is exactly [i-120, i+240).
	text := strings.Repeat("a", 500) + "NEEDLE" + strings.Repeat("b", 500)
	i := 500

	excerpt, ok := retrieval.FindAnswer("needle", entries(text))
	require.True(t, ok)
	require.Equal(t, text[i-120:i+240], excerpt)
	require.Len(t, excerpt, 360)
}

func TestFindAnswer_ExcerptClampsAtStart(t *testing.T) {
	// Match at index 10 < 120: window start clamps to 0.
	text := strings.Repeat("a", 10) + "NEEDLE" + strings.Repeat("b", 500)

	excerpt, ok := retrieval.FindAnswer("needle", entries(text))
	require.True(t, ok)
	require.Equal(t, text[0:10+240], excerpt)
}

func TestFindAnswer_ExcerptClampsAtEnd(t *testing.T) {
	// Match near the end: window end clamps to len(text).
	text := strings.Repeat("a", 300) + "NEEDLE"
	i := 300

	excerpt, ok := retrieval.FindAnswer("needle", entries(text))
	require.True(t, ok)
	require.Equal(t, text[i-120:], excerpt)
}

func TestFindAnswer_ShortTextClampsBothEnds(t *testing.T) {
	excerpt, ok := retrieval.FindAnswer("hi", entries("hi"))
	require.True(t, ok)
	require.Equal(t, "hi", excerpt)
}

func TestFindAnswer_LowercasingThatGrowsTextDoesNotPanic(t *testing.T) {
	// U+023A is 2 bytes but lowercases to U+2C65, which is 3 bytes, so the
	// match index in the lowercased text runs past the end of the original.
	text := strings.Repeat("Ⱥ", 400) + "NEEDLE"

	excerpt, ok := retrieval.FindAnswer("needle", entries(text))
	require.True(t, ok)
	require.Contains(t, excerpt, "NEEDLE")
	require.Equal(t, strings.Repeat("Ⱥ", 60)+"NEEDLE", excerpt)
	require.True(t, utf8.ValidString(excerpt))
}

func TestFindAnswer_ExcerptDoesNotSplitRuneAtStart(t *testing.T) {
	// The window start lands inside the first 3-byte rune and must widen
	// back to its boundary.
	text := strings.Repeat("あ", 40) + "é" + "NEEDLE"

	excerpt, ok := retrieval.FindAnswer("needle", entries(text))
	require.True(t, ok)
	require.Equal(t, text, excerpt)
	require.True(t, utf8.ValidString(excerpt))
}

func TestFindAnswer_ExcerptDoesNotSplitRuneAtEnd(t *testing.T) {
	// The window end lands inside a 3-byte rune and must widen forward to
	// the next boundary.
	text := "NEEDLE" + "a" + strings.Repeat("あ", 100)

	excerpt, ok := retrieval.FindAnswer("needle", entries(text))
	require.True(t, ok)
	require.Len(t, excerpt, 241)
	require.True(t, utf8.ValidString(excerpt))
}
