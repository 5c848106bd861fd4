package retrieval

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}][\p{L}\p{N}]+`)

// SparseVec is an L2-normalized sparse vector, indices strictly ascending.
type SparseVec struct {
	Idx []int
	Val []float64
}

// Dot computes the dot product of two sparse vectors.
func (a SparseVec) Dot(b SparseVec) float64 {
	sum := 0.0
	i, j := 0, 0
	for i < len(a.Idx) && j < len(b.Idx) {
		switch {
		case a.Idx[i] == b.Idx[j]:
			sum += a.Val[i] * b.Val[j]
			i++
			j++
		case a.Idx[i] < b.Idx[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// Vectorizer is a fitted TF-IDF term space: vocabulary plus smoothed IDF
// weights. English stop words are removed and the vocabulary may be capped.
type Vectorizer struct {
	Vocabulary map[string]int
	IDF        []float64
}

// FitVectorizer builds the term space from the corpus. Terms are lowercased
// word tokens of at least two characters; IDF is the smoothed
// ln((1+n)/(1+df))+1. When maxFeatures > 0 the vocabulary keeps the
// maxFeatures terms with the highest corpus frequency, ties alphabetical.
func FitVectorizer(corpus []string, maxFeatures int) (*Vectorizer, error) {
	if len(corpus) == 0 {
		return nil, ErrEmptyCorpus
	}

	df := make(map[string]int)
	total := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range tokenize(text) {
			total[tok]++
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	if maxFeatures > 0 && len(terms) > maxFeatures {
		sort.SliceStable(terms, func(i, j int) bool {
			return total[terms[i]] > total[terms[j]]
		})
		terms = terms[:maxFeatures]
		sort.Strings(terms)
	}

	v := &Vectorizer{
		Vocabulary: make(map[string]int, len(terms)),
		IDF:        make([]float64, len(terms)),
	}
	n := float64(len(corpus))
	for i, term := range terms {
		v.Vocabulary[term] = i
		v.IDF[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	return v, nil
}

// Transform projects a text into the fitted space. Out-of-vocabulary terms
// contribute zero weight; the result is L2-normalized.
func (v *Vectorizer) Transform(text string) SparseVec {
	counts := make(map[int]int)
	for _, tok := range tokenize(text) {
		if idx, ok := v.Vocabulary[tok]; ok {
			counts[idx]++
		}
	}
	if len(counts) == 0 {
		return SparseVec{}
	}

	indices := make([]int, 0, len(counts))
	for idx := range counts {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	vec := SparseVec{
		Idx: indices,
		Val: make([]float64, len(indices)),
	}
	norm := 0.0
	for i, idx := range indices {
		w := float64(counts[idx]) * v.IDF[idx]
		vec.Val[i] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec.Val {
			vec.Val[i] /= norm
		}
	}
	return vec
}

func tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, tok := range raw {
		if _, stop := englishStopwords[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// IsStopword reports whether a lowercased token is an English stop word.
func IsStopword(tok string) bool {
	_, ok := englishStopwords[tok]
	return ok
}

var englishStopwords = func() map[string]struct{} {
	words := []string{
		"a", "about", "above", "after", "again", "against", "all", "am", "an",
		"and", "any", "are", "as", "at", "be", "because", "been", "before",
		"being", "below", "between", "both", "but", "by", "can", "did", "do",
		"does", "doing", "down", "during", "each", "few", "for", "from",
		"further", "had", "has", "have", "having", "he", "her", "here", "hers",
		"him", "his", "how", "if", "in", "into", "is", "it", "its", "itself",
		"just", "me", "more", "most", "my", "no", "nor", "not", "now", "of",
		"off", "on", "once", "only", "or", "other", "our", "ours", "out",
		"over", "own", "same", "she", "should", "so", "some", "such", "than",
		"that", "the", "their", "theirs", "them", "then", "there", "these",
		"they", "this", "those", "through", "to", "too", "under", "until",
		"up", "very", "was", "we", "were", "what", "when", "where", "which",
		"while", "who", "whom", "why", "will", "with", "you", "your", "yours",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()
