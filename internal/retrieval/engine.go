package retrieval

import (
	"fmt"
	"sort"

	"github.com/supplyhub/scm-assistant/internal/observability"
)

// Collection is an independently built lexical index: fitted vectorizer,
// one L2-normalized row per chunk, and the chunks aligned by row index.
// Read-only after build; safe for unlimited concurrent readers.
type Collection struct {
	Vectorizer *Vectorizer
	Rows       []SparseVec
	Chunks     []Chunk

	// Embeddings optionally holds one dense vector per chunk for the
	// embedding ranker. Absent for purely lexical collections.
	Embeddings [][]float64
}

// BuildOptions configures a collection build.
type BuildOptions struct {
	MaxFeatures int
}

// BuildCollection fits a TF-IDF space over the chunk texts and materializes
// the document-term rows. Zero chunks is a hard error.
func BuildCollection(chunks []Chunk, opts BuildOptions) (*Collection, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: cannot build a collection from zero chunks", ErrEmptyCorpus)
	}

	corpus := make([]string, len(chunks))
	for i, c := range chunks {
		corpus[i] = c.Text
	}

	vec, err := FitVectorizer(corpus, opts.MaxFeatures)
	if err != nil {
		return nil, err
	}

	rows := make([]SparseVec, len(chunks))
	for i, text := range corpus {
		rows[i] = vec.Transform(text)
	}

	return &Collection{Vectorizer: vec, Rows: rows, Chunks: chunks}, nil
}

// SearchLexical ranks the collection's chunks by cosine similarity to the
// query, descending, ties broken by chunk insertion order. At most topK
// citations are returned, carrying the exact cosine scores.
func (c *Collection) SearchLexical(query string, topK int) []Citation {
	qv := c.Vectorizer.Transform(query)

	order := make([]int, len(c.Rows))
	scores := make([]float64, len(c.Rows))
	for i, row := range c.Rows {
		order[i] = i
		scores[i] = qv.Dot(row)
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
	return results
}

// Engine holds the named retrieval collections and answers top-k queries.
// Collections are registered once at load time and only read afterwards.
type Engine struct {
	logger      *observability.Logger
	ranker      Ranker
	collections map[string]*Collection
}

// NewEngine creates an engine with the given ranker. A nil ranker defaults
// to lexical ranking.
func NewEngine(logger *observability.Logger, ranker Ranker) *Engine {
	if logger == nil {
		logger = observability.Nop()
	}
	if ranker == nil {
		ranker = NewLexicalRanker()
	}
	return &Engine{
		logger:      logger,
		ranker:      ranker,
		collections: make(map[string]*Collection),
	}
}

// AddCollection registers a collection under a domain label. The empty label
// is the default collection.
func (e *Engine) AddCollection(domain string, c *Collection) {
	e.collections[domain] = c
}

// HasCollection reports whether a domain label has a registered collection.
func (e *Engine) HasCollection(domain string) bool {
	_, ok := e.collections[domain]
	return ok
}

// Domains returns the registered domain labels, default first.
func (e *Engine) Domains() []string {
	out := make([]string, 0, len(e.collections))
	for _, d := range []string{"", "supply", "demand"} {
		if _, ok := e.collections[d]; ok {
			out = append(out, d)
		}
	}
	for d := range e.collections {
		if d != "" && d != "supply" && d != "demand" {
			out = append(out, d)
		}
	}
	return out
}

// Search runs a top-k query against one collection. An empty domain walks
// the fallback chain default, then "supply", then "demand". An explicit
// domain never falls back: a domain-scoped answer must not silently leak
// content from the wrong domain.
func (e *Engine) Search(query string, topK int, domain string) ([]Citation, error) {
	coll, label, err := e.resolve(domain)
	if err != nil {
		return nil, err
	}

	results, err := e.ranker.Rank(query, coll, topK)
	if err != nil {
		return nil, err
	}

	e.logger.Debug().
		Str("domain", label).
		Int("results", len(results)).
		Msg("Retrieval search complete")
	return results, nil
}

func (e *Engine) resolve(domain string) (*Collection, string, error) {
	if domain != "" {
		if c, ok := e.collections[domain]; ok {
			return c, domain, nil
		}
		return nil, "", fmt.Errorf("%w: domain %q", ErrNoIndexAvailable, domain)
	}

	for _, label := range []string{"", "supply", "demand"} {
		if c, ok := e.collections[label]; ok {
			return c, label, nil
		}
	}
	return nil, "", fmt.Errorf("%w: no collections loaded", ErrNoIndexAvailable)
}
