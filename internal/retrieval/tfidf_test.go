package retrieval

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitVectorizer(t *testing.T) {
	t.Run("empty corpus fails", func(t *testing.T) {
		_, err := FitVectorizer(nil, 0)
		assert.ErrorIs(t, err, ErrEmptyCorpus)
	})

	t.Run("stop words and short tokens excluded", func(t *testing.T) {
		v, err := FitVectorizer([]string{"the inventory is a buffer"}, 0)
		require.NoError(t, err)
		assert.Contains(t, v.Vocabulary, "inventory")
		assert.Contains(t, v.Vocabulary, "buffer")
		assert.NotContains(t, v.Vocabulary, "the")
		assert.NotContains(t, v.Vocabulary, "is")
		assert.NotContains(t, v.Vocabulary, "a")
	})

	t.Run("idf favors rare terms", func(t *testing.T) {
		corpus := []string{
			"inventory planning inventory",
			"inventory logistics",
			"inventory warehouse",
		}
		v, err := FitVectorizer(corpus, 0)
		require.NoError(t, err)

		common := v.IDF[v.Vocabulary["inventory"]]
		rare := v.IDF[v.Vocabulary["warehouse"]]
		assert.Greater(t, rare, common)

		// Smoothed IDF: ln((1+n)/(1+df)) + 1.
		assert.InDelta(t, math.Log(4.0/4.0)+1, common, 1e-9)
		assert.InDelta(t, math.Log(4.0/2.0)+1, rare, 1e-9)
	})

	t.Run("max features keeps highest corpus frequency", func(t *testing.T) {
		corpus := []string{
			"alpha alpha alpha beta beta gamma",
		}
		v, err := FitVectorizer(corpus, 2)
		require.NoError(t, err)
		assert.Len(t, v.Vocabulary, 2)
		assert.Contains(t, v.Vocabulary, "alpha")
		assert.Contains(t, v.Vocabulary, "beta")
		assert.NotContains(t, v.Vocabulary, "gamma")
	})

	t.Run("max features ties broken alphabetically", func(t *testing.T) {
		v, err := FitVectorizer([]string{"zulu alpha"}, 1)
		require.NoError(t, err)
		assert.Contains(t, v.Vocabulary, "alpha")
	})
}

func TestTransform(t *testing.T) {
	v, err := FitVectorizer([]string{
		"inventory planning",
		"logistics warehouse",
	}, 0)
	require.NoError(t, err)

	t.Run("vectors are unit length", func(t *testing.T) {
		vec := v.Transform("inventory planning extra")
		norm := 0.0
		for _, val := range vec.Val {
			norm += val * val
		}
		assert.InDelta(t, 1.0, norm, 1e-9)
	})

	t.Run("out-of-vocabulary terms contribute nothing", func(t *testing.T) {
		vec := v.Transform("unknown words only here")
		assert.Empty(t, vec.Idx)
		assert.Empty(t, vec.Val)
	})

	t.Run("indices strictly ascending", func(t *testing.T) {
		vec := v.Transform("warehouse inventory logistics planning")
		for i := 1; i < len(vec.Idx); i++ {
			assert.Greater(t, vec.Idx[i], vec.Idx[i-1])
		}
	})
}

func TestSparseVecDot(t *testing.T) {
	a := SparseVec{Idx: []int{0, 2, 5}, Val: []float64{1, 2, 3}}
	b := SparseVec{Idx: []int{2, 5, 7}, Val: []float64{4, 5, 6}}

	assert.InDelta(t, 2*4+3*5.0, a.Dot(b), 1e-9)
	assert.InDelta(t, a.Dot(b), b.Dot(a), 1e-9)
	assert.Zero(t, a.Dot(SparseVec{}))
}

func TestIsStopword(t *testing.T) {
	assert.True(t, IsStopword("the"))
	assert.False(t, IsStopword("inventory"))
}
