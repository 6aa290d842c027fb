package storage

import (
	"context"
	"fmt"

	"github.com/curationd/taxora/internal/model"
)

// SaveTaxonomyLeaves upserts a batch of taxonomy leaves for their version tag.
func (s *SQLiteStorage) SaveTaxonomyLeaves(ctx context.Context, leaves []model.TaxonomyLeaf) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(leaves) == 0 {
		return fmt.Errorf("%w: leaves", ErrNilParameter)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, leaf := range leaves {
		if len(leaf.Path) == 0 {
			return fmt.Errorf("%w: leaf path", ErrNilParameter)
		}
		if err := validateString(leaf.Version, "leaf version"); err != nil {
			return err
		}

		pathJSON, err := marshalPath(leaf.Path)
		if err != nil {
			return err
		}
		embeddingJSON, err := marshalEmbedding(leaf.Embedding)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO taxonomy_leaves (version, path, embedding) VALUES (?, ?, ?)
			ON CONFLICT(version, path) DO UPDATE SET embedding = excluded.embedding
		`, leaf.Version, pathJSON, nullableString(embeddingJSON))
		if err != nil {
			return fmt.Errorf("failed to save taxonomy leaf: %w", err)
		}
	}

	return tx.Commit()
}

// GetLeafPaths returns every leaf recorded for a taxonomy version. Zero leaves
// is a valid result; callers must not assume a non-empty taxonomy.
func (s *SQLiteStorage) GetLeafPaths(ctx context.Context, version string) ([]model.TaxonomyLeaf, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(version, "version"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT path, embedding FROM taxonomy_leaves
		WHERE version = ? ORDER BY path ASC
	`, version)
	if err != nil {
		return nil, fmt.Errorf("failed to list taxonomy leaves: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var leaves []model.TaxonomyLeaf
	for rows.Next() {
		var (
			pathJSON      string
			embeddingJSON *string
			leaf          model.TaxonomyLeaf
		)
		if err := rows.Scan(&pathJSON, &embeddingJSON); err != nil {
			return nil, fmt.Errorf("failed to scan taxonomy leaf: %w", err)
		}

		if leaf.Path, err = unmarshalPath(pathJSON); err != nil {
			return nil, err
		}
		if embeddingJSON != nil {
			if leaf.Embedding, err = unmarshalEmbedding(*embeddingJSON); err != nil {
				return nil, err
			}
		}
		leaf.Version = version
		leaves = append(leaves, leaf)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate taxonomy leaves: %w", err)
	}

	return leaves, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
