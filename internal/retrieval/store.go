package retrieval

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
)

// collectionBlob is the on-disk shape of a collection. Kept separate from
// Collection so the persisted format can evolve without touching the
// in-memory type.
type collectionBlob struct {
	Vocabulary map[string]int
	IDF        []float64
	Rows       []SparseVec
	Chunks     []Chunk
	Embeddings [][]float64
}

// SaveCollection writes a built collection to path, creating parent
// directories as needed. The write goes through a temp file and rename so a
// crashed save never leaves a truncated index behind.
func SaveCollection(c *Collection, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".index-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp index file: %w", err)
	}
	defer os.Remove(tmp.Name())

	blob := collectionBlob{
		Vocabulary: c.Vectorizer.Vocabulary,
		IDF:        c.Vectorizer.IDF,
		Rows:       c.Rows,
		Chunks:     c.Chunks,
		Embeddings: c.Embeddings,
	}
	if err := gob.NewEncoder(tmp).Encode(blob); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp index file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move index into place: %w", err)
	}
	return nil
}

// LoadCollection reads a collection previously written by SaveCollection.
func LoadCollection(path string) (*Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index file: %w", err)
	}
	defer f.Close()

	var blob collectionBlob
	if err := gob.NewDecoder(f).Decode(&blob); err != nil {
		return nil, fmt.Errorf("failed to decode index file %s: %w", path, err)
	}

	return &Collection{
		Vectorizer: &Vectorizer{Vocabulary: blob.Vocabulary, IDF: blob.IDF},
		Rows:       blob.Rows,
		Chunks:     blob.Chunks,
		Embeddings: blob.Embeddings,
	}, nil
}
