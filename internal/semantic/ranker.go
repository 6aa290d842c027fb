// Package semantic ranks taxonomy leaves by embedding similarity.
package semantic

import (
	"math"
	"sort"

	"github.com/curationd/taxora/internal/model"
)

// DefaultTopK is the number of candidates returned when the caller does not
// ask for a specific count.
const DefaultTopK = 5

// Ranker scores taxonomy leaves against a query embedding.
type Ranker struct {
	topK int
}

// NewRanker creates a ranker returning at most topK results. A non-positive
// topK selects DefaultTopK.
func NewRanker(topK int) *Ranker {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Ranker{topK: topK}
}

// Rank orders leaves by cosine similarity to the query embedding, descending.
// Leaves without an embedding score 0.0 rather than erroring. Ties keep the
// original leaf order. An empty leaf set yields an empty result; callers are
// expected to substitute the uncategorized fallback.
func (r *Ranker) Rank(queryEmbedding []float64, leaves []model.TaxonomyLeaf) []model.ScoredPath {
	if len(leaves) == 0 {
		return nil
	}

	scored := make([]model.ScoredPath, 0, len(leaves))
	for _, leaf := range leaves {
		score := 0.0
		if leaf.HasEmbedding() {
			score = CosineSimilarity(queryEmbedding, leaf.Embedding)
		}
		scored = append(scored, model.ScoredPath{
			Path:  leaf.Path.Clone(),
			Score: score,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > r.topK {
		scored = scored[:r.topK]
	}

	return scored
}

// CosineSimilarity computes dot(a,b) / (|a| * |b|). Mismatched lengths are
// compared over the shorter prefix; zero vectors score 0.
func CosineSimilarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
