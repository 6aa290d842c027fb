package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/curationd/taxora/internal/common"
	"github.com/curationd/taxora/internal/model"
)

// SaveOutcome upserts the committed classification for a fragment and appends
// to the classification history for auditing.
func (s *SQLiteStorage) SaveOutcome(ctx context.Context, outcome *model.ClassificationOutcome) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateOutcome(outcome); err != nil {
		return err
	}

	if outcome.ClassifiedAt.IsZero() {
		outcome.ClassifiedAt = time.Now().UTC()
	}

	canonicalJSON, err := marshalPath(outcome.CanonicalPath)
	if err != nil {
		return err
	}
	candidatesJSON, err := marshalPaths(outcome.CandidatePaths)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO classifications (
			fragment_id, canonical_path, candidate_paths, confidence,
			method, requires_review, drift_detected, classified_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(fragment_id) DO UPDATE SET
			canonical_path = excluded.canonical_path,
			candidate_paths = excluded.candidate_paths,
			confidence = excluded.confidence,
			method = excluded.method,
			requires_review = excluded.requires_review,
			drift_detected = excluded.drift_detected,
			classified_at = excluded.classified_at
	`,
		outcome.FragmentID,
		canonicalJSON,
		candidatesJSON,
		outcome.Confidence,
		string(outcome.Method),
		boolToInt(outcome.RequiresReview),
		boolToInt(outcome.DriftDetected),
		outcome.ClassifiedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save classification: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO classification_history (fragment_id, canonical_path, confidence, method)
		VALUES (?, ?, ?, ?)
	`, outcome.FragmentID, canonicalJSON, outcome.Confidence, string(outcome.Method))
	if err != nil {
		return fmt.Errorf("failed to save classification history: %w", err)
	}

	return tx.Commit()
}

// GetOutcome returns the committed classification for a fragment.
func (s *SQLiteStorage) GetOutcome(ctx context.Context, fragmentID string) (*model.ClassificationOutcome, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(fragmentID, "fragmentID"); err != nil {
		return nil, err
	}

	var (
		canonicalJSON  string
		candidatesJSON sql.NullString
		method         string
		requiresReview int
		driftDetected  int
		outcome        model.ClassificationOutcome
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT canonical_path, candidate_paths, confidence, method,
			requires_review, drift_detected, classified_at
		FROM classifications WHERE fragment_id = ?
	`, fragmentID).Scan(
		&canonicalJSON,
		&candidatesJSON,
		&outcome.Confidence,
		&method,
		&requiresReview,
		&driftDetected,
		&outcome.ClassifiedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: classification for fragment %s", common.ErrNotFound, fragmentID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get classification: %w", err)
	}

	outcome.FragmentID = fragmentID
	outcome.Method = model.Method(method)
	outcome.RequiresReview = requiresReview != 0
	outcome.DriftDetected = driftDetected != 0

	if outcome.CanonicalPath, err = unmarshalPath(canonicalJSON); err != nil {
		return nil, err
	}
	if candidatesJSON.Valid {
		if outcome.CandidatePaths, err = unmarshalPaths(candidatesJSON.String); err != nil {
			return nil, err
		}
	}

	return &outcome, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
