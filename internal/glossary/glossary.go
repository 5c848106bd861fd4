// Package glossary provides the SCM term dictionary: a read-only set of
// entries plus a normalized lookup index with exact and fuzzy matching.
package glossary

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrMalformedGlossaryData indicates the glossary feed is not a JSON array of
// entries. Callers recover by falling back to an empty glossary.
var ErrMalformedGlossaryData = errors.New("malformed glossary data")

// Entry is a single glossary record. Entries are immutable once loaded.
type Entry struct {
	Term            string   `json:"term"`
	Definition      string   `json:"definition"`
	BusinessMeaning string   `json:"business_meaning"`
	Formula         string   `json:"formula,omitempty"`
	Synonyms        []string `json:"synonyms,omitempty"`
	ExampleQueries  []string `json:"example_queries,omitempty"`
}

// Parse reads a glossary feed. The feed must be a JSON array of entry
// objects; on a malformed tail the well-formed prefix is returned, so a
// partially corrupt feed still yields whatever entries decode cleanly.
func Parse(r io.Reader) ([]Entry, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedGlossaryData, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, fmt.Errorf("%w: expected array, got %v", ErrMalformedGlossaryData, tok)
	}

	var entries []Entry
	for dec.More() {
		var e Entry
		if err := dec.Decode(&e); err != nil {
			// Malformed tail: keep the prefix that decoded.
			return entries, nil
		}
		entries = append(entries, e)
	}

	return entries, nil
}

// LoadFile reads and parses a glossary feed from disk.
func LoadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open glossary: %w", err)
	}
	defer f.Close()

	return Parse(f)
}
