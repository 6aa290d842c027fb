package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/curationd/taxora/internal/common"
)

// SaveFragment upserts a fragment's text by id.
func (s *SQLiteStorage) SaveFragment(ctx context.Context, fragmentID, text string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(fragmentID, "fragmentID"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fragments (id, text) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET text = excluded.text
	`, fragmentID, text)
	if err != nil {
		return fmt.Errorf("failed to save fragment: %w", err)
	}

	return nil
}

// GetFragmentText returns the stored text for a fragment.
func (s *SQLiteStorage) GetFragmentText(ctx context.Context, fragmentID string) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if err := validateString(fragmentID, "fragmentID"); err != nil {
		return "", err
	}

	var text string
	err := s.db.QueryRowContext(ctx, `SELECT text FROM fragments WHERE id = ?`, fragmentID).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: fragment %s", common.ErrNotFound, fragmentID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get fragment: %w", err)
	}

	return text, nil
}
