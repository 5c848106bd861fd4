package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/supplyhub/scm-assistant/internal/observability"
	"github.com/supplyhub/scm-assistant/internal/retrieval"
)

// Builder reads a directory of plain-text documents and produces a built
// retrieval collection.
type Builder struct {
	logger      *observability.Logger
	maxFeatures int
	progress    io.Writer
}

// NewBuilder creates a collection builder. When progress is non-nil a
// progress bar is rendered to it during chunking.
func NewBuilder(logger *observability.Logger, maxFeatures int, progress io.Writer) *Builder {
	if logger == nil {
		logger = observability.Nop()
	}
	return &Builder{logger: logger, maxFeatures: maxFeatures, progress: progress}
}

// CollectChunks reads every .txt file under dir (sorted by name, so chunk
// order is stable across builds) and splits each into word-window chunks.
// Chunk IDs are "<file>#<n>" with n counting per file from zero.
func (b *Builder) CollectChunks(dir string) ([]retrieval.Chunk, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read document directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".txt") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var bar *progressbar.ProgressBar
	if b.progress != nil {
		bar = progressbar.NewOptions(len(names),
			progressbar.OptionSetWriter(b.progress),
			progressbar.OptionSetDescription("Chunking documents"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	var chunks []retrieval.Chunk
	for _, name := range names {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read document %s: %w", name, err)
		}
		for i, text := range ChunkText(string(raw)) {
			chunks = append(chunks, retrieval.Chunk{
				ID:     fmt.Sprintf("%s#%d", name, i),
				Source: name,
				Text:   text,
			})
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	b.logger.Info().
		Int("documents", len(names)).
		Int("chunks", len(chunks)).
		Str("dir", dir).
		Msg("Document corpus collected")
	return chunks, nil
}

// Build collects the corpus under dir, fits the index, and writes the
// collection blob to outPath.
func (b *Builder) Build(dir, outPath string) (*retrieval.Collection, error) {
	chunks, err := b.CollectChunks(dir)
	if err != nil {
		return nil, err
	}

	coll, err := retrieval.BuildCollection(chunks, retrieval.BuildOptions{MaxFeatures: b.maxFeatures})
	if err != nil {
		return nil, err
	}

	if outPath != "" {
		if err := retrieval.SaveCollection(coll, outPath); err != nil {
			return nil, err
		}
		b.logger.Info().Str("path", outPath).Msg("Index written")
	}
	return coll, nil
}
