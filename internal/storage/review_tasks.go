package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/curationd/taxora/internal/common"
	"github.com/curationd/taxora/internal/model"
	"github.com/curationd/taxora/internal/service"
)

// CreateReviewTask inserts a new pending review task. Each task lives in its
// own row keyed by a caller-generated unique id, so concurrent creates never
// contend with each other.
func (s *SQLiteStorage) CreateReviewTask(ctx context.Context, task *model.ReviewTask) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateReviewTask(task); err != nil {
		return err
	}

	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	if task.Status == "" {
		task.Status = model.TaskPending
	}

	// Enqueue requires the fragment to exist.
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM fragments WHERE id = ?)`, task.FragmentID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check fragment existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: fragment %s", common.ErrNotFound, task.FragmentID)
	}

	suggestedJSON, err := marshalPath(task.SuggestedPath)
	if err != nil {
		return err
	}
	alternativesJSON, err := marshalPaths(task.AlternativePaths)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO review_tasks (
			id, fragment_id, suggested_path, alternative_paths,
			confidence, priority, status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		task.ID,
		task.FragmentID,
		suggestedJSON,
		alternativesJSON,
		task.Confidence,
		string(task.Priority),
		string(task.Status),
		task.CreatedAt,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return fmt.Errorf("%w: review task %s", common.ErrDuplicateEntry, task.ID)
		}
		return fmt.Errorf("failed to create review task: %w", err)
	}

	return nil
}

// GetReviewTask returns a review task by id.
func (s *SQLiteStorage) GetReviewTask(ctx context.Context, taskID string) (*model.ReviewTask, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(taskID, "taskID"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, fragment_id, suggested_path, alternative_paths, confidence,
			priority, status, approved_path, confidence_override, created_at, completed_at
		FROM review_tasks WHERE id = ?
	`, taskID)

	task, err := scanReviewTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: review task %s", common.ErrNotFound, taskID)
	}
	if err != nil {
		return nil, err
	}

	return task, nil
}

// ListPendingTasks returns pending tasks ordered by confidence ascending, then
// created_at ascending. The dual sort is a fairness guarantee: the most
// uncertain items surface first, and FIFO applies within equal confidence.
func (s *SQLiteStorage) ListPendingTasks(ctx context.Context, filter service.TaskFilter) ([]model.ReviewTask, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, fragment_id, suggested_path, alternative_paths, confidence,
			priority, status, approved_path, confidence_override, created_at, completed_at
		FROM review_tasks WHERE status = ?`
	args := []any{string(model.TaskPending)}

	if filter.Priority != nil {
		query += ` AND priority = ?`
		args = append(args, string(*filter.Priority))
	}
	if filter.MinConfidence != nil {
		query += ` AND confidence >= ?`
		args = append(args, *filter.MinConfidence)
	}
	if filter.MaxConfidence != nil {
		query += ` AND confidence <= ?`
		args = append(args, *filter.MaxConfidence)
	}

	query += ` ORDER BY confidence ASC, created_at ASC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []model.ReviewTask
	for rows.Next() {
		task, err := scanReviewTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending tasks: %w", err)
	}

	return tasks, nil
}

// CompleteReviewTask transitions a task pending -> completed exactly once.
// The conditional UPDATE acts as a compare-and-swap on status: of two racing
// completions only one matches the pending row, the other sees zero rows and
// fails with ErrTaskCompleted.
func (s *SQLiteStorage) CompleteReviewTask(ctx context.Context, taskID string, approvedPath model.Path, confidenceOverride *float64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(taskID, "taskID"); err != nil {
		return err
	}
	if len(approvedPath) == 0 {
		return fmt.Errorf("%w: missing approved path", ErrInvalidTask)
	}

	// Human approval is maximal trust unless the reviewer says otherwise.
	confidence := 1.0
	if confidenceOverride != nil {
		if *confidenceOverride < 0 || *confidenceOverride > 1 {
			return fmt.Errorf("%w: confidence override %.3f outside [0,1]", ErrInvalidTask, *confidenceOverride)
		}
		confidence = *confidenceOverride
	}

	approvedJSON, err := marshalPath(approvedPath)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE review_tasks
		SET status = ?, approved_path = ?, confidence = ?, confidence_override = ?, completed_at = ?
		WHERE id = ? AND status = ?
	`,
		string(model.TaskCompleted),
		approvedJSON,
		confidence,
		confidenceOverride,
		time.Now().UTC(),
		taskID,
		string(model.TaskPending),
	)
	if err != nil {
		return fmt.Errorf("failed to complete review task: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 1 {
		return nil
	}

	// Distinguish a missing task from a lost completion race.
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM review_tasks WHERE id = ?)`, taskID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check task existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: review task %s", common.ErrNotFound, taskID)
	}
	return fmt.Errorf("%w: review task %s", common.ErrTaskCompleted, taskID)
}

// PendingTaskStats aggregates confidence over the pending queue in one query.
func (s *SQLiteStorage) PendingTaskStats(ctx context.Context) (*model.QueueStats, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var stats model.QueueStats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(AVG(confidence), 0),
			COALESCE(MIN(confidence), 0),
			COALESCE(MAX(confidence), 0)
		FROM review_tasks WHERE status = ?
	`, string(model.TaskPending)).Scan(
		&stats.PendingCount,
		&stats.AvgConfidence,
		&stats.MinConfidence,
		&stats.MaxConfidence,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read queue stats: %w", err)
	}

	return &stats, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanReviewTask(row rowScanner) (*model.ReviewTask, error) {
	var (
		task             model.ReviewTask
		suggestedJSON    string
		alternativesJSON sql.NullString
		approvedJSON     sql.NullString
		override         sql.NullFloat64
		priority         string
		status           string
		completedAt      sql.NullTime
	)

	err := row.Scan(
		&task.ID,
		&task.FragmentID,
		&suggestedJSON,
		&alternativesJSON,
		&task.Confidence,
		&priority,
		&status,
		&approvedJSON,
		&override,
		&task.CreatedAt,
		&completedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan review task: %w", err)
	}

	task.Priority = model.Priority(priority)
	task.Status = model.TaskStatus(status)

	if task.SuggestedPath, err = unmarshalPath(suggestedJSON); err != nil {
		return nil, err
	}
	if alternativesJSON.Valid {
		if task.AlternativePaths, err = unmarshalPaths(alternativesJSON.String); err != nil {
			return nil, err
		}
	}
	if approvedJSON.Valid {
		if task.ApprovedPath, err = unmarshalPath(approvedJSON.String); err != nil {
			return nil, err
		}
	}
	if override.Valid {
		v := override.Float64
		task.ConfidenceOverride = &v
	}
	if completedAt.Valid {
		t := completedAt.Time
		task.CompletedAt = &t
	}

	return &task, nil
}
