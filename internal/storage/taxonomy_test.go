package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curationd/taxora/internal/model"
	"github.com/curationd/taxora/internal/testutil"
)

func TestSaveAndGetTaxonomyLeaves(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	leaves := []model.TaxonomyLeaf{
		{Path: model.Path{"Technology", "AI"}, Embedding: []float64{0.1, 0.2}, Version: "v1"},
		{Path: model.Path{"Legal"}, Version: "v1"},
	}
	require.NoError(t, db.Storage.SaveTaxonomyLeaves(ctx, leaves))

	got, err := db.Storage.GetLeafPaths(ctx, "v1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	byPath := make(map[string]model.TaxonomyLeaf, len(got))
	for _, leaf := range got {
		byPath[leaf.Path.String()] = leaf
	}

	withEmbedding := byPath["Technology/AI"]
	assert.Equal(t, []float64{0.1, 0.2}, withEmbedding.Embedding)
	assert.True(t, withEmbedding.HasEmbedding())

	withoutEmbedding := byPath["Legal"]
	assert.Nil(t, withoutEmbedding.Embedding)
	assert.False(t, withoutEmbedding.HasEmbedding())
}

func TestSaveTaxonomyLeaves_UpsertReplacesEmbedding(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	leaf := model.TaxonomyLeaf{Path: model.Path{"Legal"}, Embedding: []float64{1, 0}, Version: "v1"}
	require.NoError(t, db.Storage.SaveTaxonomyLeaves(ctx, []model.TaxonomyLeaf{leaf}))

	leaf.Embedding = []float64{0, 1}
	require.NoError(t, db.Storage.SaveTaxonomyLeaves(ctx, []model.TaxonomyLeaf{leaf}))

	got, err := db.Storage.GetLeafPaths(ctx, "v1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []float64{0, 1}, got[0].Embedding)
}

func TestGetLeafPaths_VersionsAreIsolated(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Storage.SaveTaxonomyLeaves(ctx, []model.TaxonomyLeaf{
		{Path: model.Path{"Legal"}, Version: "v1"},
		{Path: model.Path{"Legal"}, Version: "v2"},
		{Path: model.Path{"Business"}, Version: "v2"},
	}))

	v1, err := db.Storage.GetLeafPaths(ctx, "v1")
	require.NoError(t, err)
	assert.Len(t, v1, 1)

	v2, err := db.Storage.GetLeafPaths(ctx, "v2")
	require.NoError(t, err)
	assert.Len(t, v2, 2)
}

func TestGetLeafPaths_EmptyVersionIsValid(t *testing.T) {
	db := testutil.SetupTestDB(t)

	leaves, err := db.Storage.GetLeafPaths(context.Background(), "no-such-version")
	require.NoError(t, err)
	assert.Empty(t, leaves)
}

func TestSaveTaxonomyLeaves_RejectsEmptyBatch(t *testing.T) {
	db := testutil.SetupTestDB(t)

	err := db.Storage.SaveTaxonomyLeaves(context.Background(), nil)
	assert.Error(t, err)
}
