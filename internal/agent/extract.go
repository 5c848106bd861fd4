package agent

import (
	"regexp"
	"sort"
	"strings"

	"github.com/supplyhub/scm-assistant/internal/retrieval"
)

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	wordPattern       = regexp.MustCompile(`[\p{L}\p{N}][\p{L}\p{N}]+`)
)

// splitSentences breaks collapsed text at sentence-ending punctuation
// followed by a space.
func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '!', '?':
			if i+1 < len(runes) && runes[i+1] == ' ' {
				sentences = append(sentences, string(runes[start:i+1]))
				start = i + 2
				i++
			}
		}
	}
	if start < len(runes) {
		if s := strings.TrimSpace(string(runes[start:])); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

func contentTokens(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, tok := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if retrieval.IsStopword(tok) {
			continue
		}
		tokens[tok] = struct{}{}
	}
	return tokens
}

// extractSummary picks the maxSentences sentences of the context most
// relevant to the query, scored by shared non-stopword tokens, ordered by
// descending relevance with ties in original order. When no sentence shares
// a token with the query, the first maxSentences sentences are returned
// instead.
func extractSummary(context, query string, maxSentences int) string {
	clean := strings.TrimSpace(whitespacePattern.ReplaceAllString(context, " "))
	if clean == "" {
		return ""
	}
	if maxSentences <= 0 {
		maxSentences = 3
	}

	sentences := splitSentences(clean)
	if len(sentences) == 0 {
		return ""
	}

	queryTokens := contentTokens(query)
	scores := make([]int, len(sentences))
	anyHit := false
	for i, sentence := range sentences {
		for tok := range contentTokens(sentence) {
			if _, ok := queryTokens[tok]; ok {
				scores[i]++
			}
		}
		if scores[i] > 0 {
			anyHit = true
		}
	}

	if !anyHit {
		if maxSentences > len(sentences) {
			maxSentences = len(sentences)
		}
		return strings.TrimSpace(strings.Join(sentences[:maxSentences], " "))
	}

	order := make([]int, len(sentences))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})
	if maxSentences > len(order) {
		maxSentences = len(order)
	}

	picked := make([]string, 0, maxSentences)
	for _, idx := range order[:maxSentences] {
		picked = append(picked, sentences[idx])
	}
	return strings.TrimSpace(strings.Join(picked, " "))
}

// truncateRunes bounds text to at most limit runes.
func truncateRunes(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
