package model

// TaxonomyLeaf is a leaf node of the taxonomy as seen by the classifier:
// a full path plus an optional embedding vector for semantic ranking.
type TaxonomyLeaf struct {
	Path      Path      `json:"path"`
	Embedding []float64 `json:"embedding,omitempty"`
	Version   string    `json:"version"`
}

// HasEmbedding reports whether the leaf carries a usable embedding.
// Leaves without one still participate in rule and LLM classification;
// the similarity ranker scores them 0.
func (l TaxonomyLeaf) HasEmbedding() bool {
	return len(l.Embedding) > 0
}

// ScoredPath is a taxonomy path with a similarity score attached.
type ScoredPath struct {
	Path  Path
	Score float64
}
