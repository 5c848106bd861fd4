package agent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSentences(t *testing.T) {
	sentences := splitSentences("First sentence. Second one! Third? Trailing fragment")
	require.Len(t, sentences, 4)
	assert.Equal(t, "First sentence.", sentences[0])
	assert.Equal(t, "Second one!", sentences[1])
	assert.Equal(t, "Third?", sentences[2])
	assert.Equal(t, "Trailing fragment", sentences[3])
}

func TestExtractSummary(t *testing.T) {
	context := "Safety stock buffers demand variability. Freight rates rose last year. " +
		"Reorder points trigger replenishment. The cafeteria serves lunch at noon."

	t.Run("picks query-relevant sentences first", func(t *testing.T) {
		summary := extractSummary(context, "safety stock and reorder points", 2)
		assert.Contains(t, summary, "Safety stock")
		assert.Contains(t, summary, "Reorder points")
		assert.NotContains(t, summary, "cafeteria")
	})

	t.Run("falls back to leading sentences when nothing matches", func(t *testing.T) {
		summary := extractSummary(context, "zzz qqq", 2)
		assert.Equal(t, "Safety stock buffers demand variability. Freight rates rose last year.", summary)
	})

	t.Run("collapses whitespace", func(t *testing.T) {
		summary := extractSummary("Spaced   out\n\ntext. More.", "text", 1)
		assert.Equal(t, "Spaced out text.", summary)
	})

	t.Run("empty context", func(t *testing.T) {
		assert.Empty(t, extractSummary("   ", "query", 3))
	})

	t.Run("fewer sentences than requested", func(t *testing.T) {
		summary := extractSummary("Only one sentence here.", "sentence", 5)
		assert.Equal(t, "Only one sentence here.", summary)
	})
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abcdef", 3))
	assert.Equal(t, "abc", truncateRunes("abc", 10))
	assert.Equal(t, "재고", truncateRunes("재고관리", 2))
	assert.Equal(t, strings.Repeat("x", 4), truncateRunes(strings.Repeat("x", 4), 0))
}
