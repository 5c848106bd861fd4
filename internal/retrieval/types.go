// Package retrieval provides the sparse lexical index over document chunks
// and top-k similarity search across domain-partitioned collections.
package retrieval

import "errors"

// Common retrieval errors.
var (
	// ErrEmptyCorpus indicates a collection build was requested with zero
	// chunks. Fatal to the build call, not to the process.
	ErrEmptyCorpus = errors.New("empty corpus")

	// ErrNoIndexAvailable indicates the requested (or default) collection is
	// missing. The orchestrator recovers this as "no relevant information".
	ErrNoIndexAvailable = errors.New("no index available")
)

// Chunk is a bounded span of source-document text, the unit indexed and
// retrieved. Produced by offline ingestion; immutable at query time.
type Chunk struct {
	ID         string
	Source     string
	Text       string
	Supplement string
}

// Citation is one retrieval hit with its exact cosine score.
type Citation struct {
	ChunkID    string  `json:"chunk_id"`
	Source     string  `json:"source"`
	Score      float64 `json:"score"`
	Text       string  `json:"text"`
	Supplement string  `json:"supplementary_text,omitempty"`
}
