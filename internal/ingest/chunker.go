// Package ingest turns raw document text into indexed retrieval collections.
package ingest

import "strings"

// Chunking bounds, in whitespace words. The chunker aims for the midpoint
// and only stretches toward the max to avoid leaving a short tail.
const (
	MinChunkWords = 600
	MaxChunkWords = 900
)

// ChunkText splits a document into word-window chunks between MinChunkWords
// and MaxChunkWords long, except possibly the final chunk. Empty or
// whitespace-only input yields no chunks.
func ChunkText(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	target := (MinChunkWords + MaxChunkWords) / 2
	var chunks []string
	start := 0
	for start < len(words) {
		end := start + target
		if end > len(words) {
			end = len(words)
		}
		if end-start < MinChunkWords && end < len(words) {
			end = start + MaxChunkWords
			if end > len(words) {
				end = len(words)
			}
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		start = end
	}
	return chunks
}
