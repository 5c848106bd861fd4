package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supplyhub/scm-assistant/internal/observability"
	"github.com/supplyhub/scm-assistant/internal/retrieval"
)

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestBuilderCollectChunks(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "beta.txt", "Warehouse operations receive and store goods.")
	writeDoc(t, dir, "alpha.txt", "Demand forecasting predicts future sales.")
	writeDoc(t, dir, "notes.md", "ignored, wrong extension")

	builder := NewBuilder(observability.Nop(), 0, nil)
	chunks, err := builder.CollectChunks(dir)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	// Files are walked in sorted order for stable chunk IDs.
	assert.Equal(t, "alpha.txt#0", chunks[0].ID)
	assert.Equal(t, "alpha.txt", chunks[0].Source)
	assert.Equal(t, "beta.txt#0", chunks[1].ID)
}

func TestBuilderBuild(t *testing.T) {
	docs := t.TempDir()
	writeDoc(t, docs, "kb.txt", "Safety stock buffers demand variability. Reorder points trigger replenishment.")

	outPath := filepath.Join(t.TempDir(), "default.index")
	builder := NewBuilder(observability.Nop(), 0, nil)

	coll, err := builder.Build(docs, outPath)
	require.NoError(t, err)
	assert.NotEmpty(t, coll.Chunks)

	loaded, err := retrieval.LoadCollection(outPath)
	require.NoError(t, err)
	assert.Equal(t, coll.Chunks, loaded.Chunks)
}

func TestBuilderBuildEmptyDir(t *testing.T) {
	builder := NewBuilder(observability.Nop(), 0, nil)
	_, err := builder.Build(t.TempDir(), "")
	assert.ErrorIs(t, err, retrieval.ErrEmptyCorpus)
}

func TestBuilderMissingDir(t *testing.T) {
	builder := NewBuilder(observability.Nop(), 0, nil)
	_, err := builder.CollectChunks(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
