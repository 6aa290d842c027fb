package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curationd/taxora/internal/model"
)

func leaf(path model.Path, embedding []float64) model.TaxonomyLeaf {
	return model.TaxonomyLeaf{Path: path, Embedding: embedding, Version: "v1"}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    []float64
		b    []float64
		want float64
	}{
		{
			name: "identical vectors",
			a:    []float64{1, 2, 3},
			b:    []float64{1, 2, 3},
			want: 1.0,
		},
		{
			name: "orthogonal vectors",
			a:    []float64{1, 0},
			b:    []float64{0, 1},
			want: 0.0,
		},
		{
			name: "opposite vectors",
			a:    []float64{1, 0},
			b:    []float64{-1, 0},
			want: -1.0,
		},
		{
			name: "zero vector",
			a:    []float64{0, 0},
			b:    []float64{1, 1},
			want: 0.0,
		},
		{
			name: "empty vectors",
			a:    nil,
			b:    nil,
			want: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestRanker_Rank(t *testing.T) {
	ranker := NewRanker(0)
	query := []float64{1, 0, 0}

	leaves := []model.TaxonomyLeaf{
		leaf(model.Path{"A"}, []float64{0, 1, 0}),
		leaf(model.Path{"B"}, []float64{1, 0, 0}),
		leaf(model.Path{"C"}, []float64{0.5, 0.5, 0}),
	}

	ranked := ranker.Rank(query, leaves)
	require.Len(t, ranked, 3)

	assert.Equal(t, model.Path{"B"}, ranked[0].Path)
	assert.InDelta(t, 1.0, ranked[0].Score, 1e-9)
	assert.Equal(t, model.Path{"C"}, ranked[1].Path)
	assert.Equal(t, model.Path{"A"}, ranked[2].Path)
}

func TestRanker_MissingEmbeddingScoresZero(t *testing.T) {
	ranker := NewRanker(0)

	leaves := []model.TaxonomyLeaf{
		leaf(model.Path{"NoEmbedding"}, nil),
		leaf(model.Path{"WithEmbedding"}, []float64{1, 0}),
	}

	ranked := ranker.Rank([]float64{1, 0}, leaves)
	require.Len(t, ranked, 2)

	assert.Equal(t, model.Path{"WithEmbedding"}, ranked[0].Path)
	assert.Equal(t, model.Path{"NoEmbedding"}, ranked[1].Path)
	assert.Zero(t, ranked[1].Score)
}

func TestRanker_TiesKeepInputOrder(t *testing.T) {
	ranker := NewRanker(0)

	// All leaves lack embeddings, so every score is 0 and the ordering must
	// follow the input.
	leaves := []model.TaxonomyLeaf{
		leaf(model.Path{"First"}, nil),
		leaf(model.Path{"Second"}, nil),
		leaf(model.Path{"Third"}, nil),
	}

	ranked := ranker.Rank([]float64{1}, leaves)
	require.Len(t, ranked, 3)
	assert.Equal(t, model.Path{"First"}, ranked[0].Path)
	assert.Equal(t, model.Path{"Second"}, ranked[1].Path)
	assert.Equal(t, model.Path{"Third"}, ranked[2].Path)
}

func TestRanker_TopKLimit(t *testing.T) {
	ranker := NewRanker(2)

	leaves := []model.TaxonomyLeaf{
		leaf(model.Path{"A"}, []float64{1, 0}),
		leaf(model.Path{"B"}, []float64{0.9, 0.1}),
		leaf(model.Path{"C"}, []float64{0.8, 0.2}),
	}

	ranked := ranker.Rank([]float64{1, 0}, leaves)
	assert.Len(t, ranked, 2)
}

func TestRanker_EmptyLeaves(t *testing.T) {
	ranker := NewRanker(0)
	assert.Empty(t, ranker.Rank([]float64{1, 0}, nil))
}

func TestRanker_DefaultTopK(t *testing.T) {
	ranker := NewRanker(0)

	leaves := make([]model.TaxonomyLeaf, 8)
	for i := range leaves {
		leaves[i] = leaf(model.Path{"L", string(rune('a' + i))}, []float64{1})
	}

	ranked := ranker.Rank([]float64{1}, leaves)
	assert.Len(t, ranked, DefaultTopK)
}
