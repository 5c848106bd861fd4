package glossary

import (
	"sort"
	"strings"
)

// DefaultCutoff is the minimum similarity ratio for a fuzzy match.
const DefaultCutoff = 0.6

// substringFloor is the minimum score when one side contains the other.
// Ratio alone cannot resolve a short term embedded in question phrasing
// ("what is otif?" vs "otif" scores well under the cutoff).
const substringFloor = 0.75

// Index maps normalized terms and synonyms to canonical glossary terms.
// Collisions between a synonym and another entry's term or synonym resolve
// last-loaded-wins, in feed order. Immutable after construction; safe for
// unlimited concurrent readers.
type Index struct {
	keys      []string          // normalized keys in first-seen order
	canonical map[string]string // normalized key -> canonical term
	entries   map[string]Entry  // canonical term -> entry
	cutoff    float64
}

// NewIndex builds a lookup index over the given entries.
func NewIndex(entries []Entry) *Index {
	idx := &Index{
		canonical: make(map[string]string),
		entries:   make(map[string]Entry),
		cutoff:    DefaultCutoff,
	}

	for _, e := range entries {
		term := normalize(e.Term)
		if term == "" {
			continue
		}
		idx.entries[e.Term] = e
		idx.addKey(term, e.Term)
		for _, syn := range e.Synonyms {
			if key := normalize(syn); key != "" {
				idx.addKey(key, e.Term)
			}
		}
	}

	return idx
}

func (idx *Index) addKey(key, term string) {
	if _, seen := idx.canonical[key]; !seen {
		idx.keys = append(idx.keys, key)
	}
	idx.canonical[key] = term
}

// Len returns the number of distinct entries in the index.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Entry returns the entry for a canonical term.
func (idx *Index) Entry(term string) (Entry, bool) {
	e, ok := idx.entries[term]
	return e, ok
}

// Lookup resolves a query against the glossary. It returns matching entries
// and the deduplicated canonical terms they belong to, in match order: an
// exact normalized match first, then up to topK scored matches at or above
// the cutoff, descending by score with ties kept in first-seen key order.
// A key contained in the query (or vice versa) scores at least the
// substring floor, so terms embedded in question phrasing still resolve.
func (idx *Index) Lookup(query string, topK int) ([]Entry, []string) {
	if topK <= 0 {
		topK = 5
	}
	norm := normalize(query)

	var related []string
	if term, ok := idx.canonical[norm]; ok {
		related = append(related, term)
	}

	type scored struct {
		key   string
		ratio float64
	}
	candidates := make([]scored, 0, len(idx.keys))
	for _, key := range idx.keys {
		if ratio := matchScore(norm, key); ratio >= idx.cutoff {
			candidates = append(candidates, scored{key: key, ratio: ratio})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ratio > candidates[j].ratio
	})
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	for _, c := range candidates {
		related = append(related, idx.canonical[c.key])
	}

	related = dedupe(related)

	matches := make([]Entry, 0, len(related))
	for _, term := range related {
		if e, ok := idx.entries[term]; ok {
			matches = append(matches, e)
		}
	}
	return matches, related
}

// BestRatio returns the highest match score between the query and any
// normalized key of the given canonical term. Used to lift DEFINITION
// confidence to the match's own score.
func (idx *Index) BestRatio(query, term string) float64 {
	norm := normalize(query)
	best := 0.0
	for _, key := range idx.keys {
		if idx.canonical[key] != term {
			continue
		}
		if r := matchScore(norm, key); r > best {
			best = r
		}
	}
	return best
}

// matchScore is the similarity ratio lifted to the substring floor when one
// side contains the other. Both sides must be non-empty; a bare Contains
// check would match every key against an empty query.
func matchScore(norm, key string) float64 {
	r := Ratio(norm, key)
	if norm == "" || key == "" {
		return r
	}
	if r < substringFloor && (strings.Contains(norm, key) || strings.Contains(key, norm)) {
		r = substringFloor
	}
	return r
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func dedupe(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := terms[:0]
	for _, t := range terms {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
