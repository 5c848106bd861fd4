package retrieval

import (
	"math"
	"sort"

	"github.com/supplyhub/scm-assistant/internal/observability"
)

// Ranker scores a collection's chunks against a query. Both variants expose
// the same contract so callers never care which one is configured.
type Ranker interface {
	Rank(query string, c *Collection, topK int) ([]Citation, error)
}

// Embedder produces a dense vector for a text. Implemented by
// internal/embedding; defined here so the ranker accepts any provider.
type Embedder interface {
	Embed(text string) ([]float64, error)
}

// LexicalRanker ranks by TF-IDF cosine similarity.
type LexicalRanker struct{}

// NewLexicalRanker creates the default lexical ranker.
func NewLexicalRanker() *LexicalRanker {
	return &LexicalRanker{}
}

// Rank implements Ranker.
func (r *LexicalRanker) Rank(query string, c *Collection, topK int) ([]Citation, error) {
	return c.SearchLexical(query, topK), nil
}

// EmbeddingRanker ranks by cosine similarity over precomputed chunk
// embeddings. When a collection carries no embeddings, or the embedder
// fails, it falls back to lexical ranking and says so in the log; the
// fallback is a visible decision, not a silent probe.
type EmbeddingRanker struct {
	logger   *observability.Logger
	embedder Embedder
	lexical  *LexicalRanker
}

// NewEmbeddingRanker creates an embedding ranker with a lexical fallback.
func NewEmbeddingRanker(logger *observability.Logger, embedder Embedder) *EmbeddingRanker {
	if logger == nil {
		logger = observability.Nop()
	}
	return &EmbeddingRanker{
		logger:   logger,
		embedder: embedder,
		lexical:  NewLexicalRanker(),
	}
}

// Rank implements Ranker.
func (r *EmbeddingRanker) Rank(query string, c *Collection, topK int) ([]Citation, error) {
	if len(c.Embeddings) != len(c.Chunks) || r.embedder == nil {
		r.logger.Debug().Msg("Collection has no embedding artifacts, using lexical ranking")
		return r.lexical.Rank(query, c, topK)
	}

	qv, err := r.embedder.Embed(query)
	if err != nil {
		r.logger.Warn().Err(err).Msg("Query embedding failed, using lexical ranking")
		return r.lexical.Rank(query, c, topK)
	}

	order := make([]int, len(c.Chunks))
	scores := make([]float64, len(c.Chunks))
	for i := range c.Chunks {
		order[i] = i
		scores[i] = cosine(qv, c.Embeddings[i])
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})

	if topK > len(order) {
		topK = len(order)
	}
	results := make([]Citation, 0, topK)
	for _, idx := range order[:topK] {
		chunk := c.Chunks[idx]
		results = append(results, Citation{
			ChunkID:    chunk.ID,
			Source:     chunk.Source,
			Score:      scores[idx],
			Text:       chunk.Text,
			Supplement: chunk.Supplement,
		})
	}
	return results, nil
}

func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}
	dot, na, nb := 0.0, 0.0, 0.0
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
