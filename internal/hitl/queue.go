// Package hitl implements the human-in-the-loop review queue over the
// persistence layer. The queue exclusively owns task state: producers can only
// create tasks, and only a reviewer decision moves a task to completed.
package hitl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/curationd/taxora/internal/model"
	"github.com/curationd/taxora/internal/service"
)

// Queue exposes the review-queue operations.
type Queue struct {
	storage service.Storage
	logger  *slog.Logger
}

// NewQueue creates a review queue over the given storage.
func NewQueue(storage service.Storage, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{storage: storage, logger: logger}
}

// EnqueueParams describes a classification escalated for review.
type EnqueueParams struct {
	FragmentID       string
	SuggestedPath    model.Path
	AlternativePaths []model.Path
	Confidence       float64
	Priority         model.Priority
}

// Enqueue creates a new pending review task and returns its id. The id is
// generated here, once, and never changes; concurrent enqueues target distinct
// rows and need no coordination.
func (q *Queue) Enqueue(ctx context.Context, params EnqueueParams) (string, error) {
	if params.Priority == "" {
		params.Priority = model.PriorityNormal
	}

	task := &model.ReviewTask{
		ID:               uuid.NewString(),
		FragmentID:       params.FragmentID,
		SuggestedPath:    params.SuggestedPath.Clone(),
		AlternativePaths: params.AlternativePaths,
		Confidence:       params.Confidence,
		Priority:         params.Priority,
		Status:           model.TaskPending,
		CreatedAt:        time.Now().UTC(),
	}

	if err := q.storage.CreateReviewTask(ctx, task); err != nil {
		return "", fmt.Errorf("failed to enqueue review task: %w", err)
	}

	q.logger.Info("review task enqueued",
		"task_id", task.ID,
		"fragment_id", task.FragmentID,
		"confidence", task.Confidence,
		"priority", string(task.Priority))

	return task.ID, nil
}

// ListFilter narrows a pending-task listing.
type ListFilter struct {
	Priority      *model.Priority
	MinConfidence *float64
	MaxConfidence *float64
	Limit         int
}

// ListPending returns pending tasks, most uncertain first, FIFO within equal
// confidence.
func (q *Queue) ListPending(ctx context.Context, filter ListFilter) ([]model.ReviewTask, error) {
	return q.storage.ListPendingTasks(ctx, service.TaskFilter{
		Priority:      filter.Priority,
		MinConfidence: filter.MinConfidence,
		MaxConfidence: filter.MaxConfidence,
		Limit:         filter.Limit,
	})
}

// Get returns a single task by id.
func (q *Queue) Get(ctx context.Context, taskID string) (*model.ReviewTask, error) {
	return q.storage.GetReviewTask(ctx, taskID)
}

// Complete records a reviewer decision. A nil confidenceOverride records the
// default of 1.0. Completing an already-completed task fails with
// common.ErrTaskCompleted; an unknown task fails with common.ErrNotFound.
func (q *Queue) Complete(ctx context.Context, taskID string, approvedPath model.Path, confidenceOverride *float64) error {
	if err := q.storage.CompleteReviewTask(ctx, taskID, approvedPath, confidenceOverride); err != nil {
		return err
	}

	q.logger.Info("review task completed",
		"task_id", taskID,
		"approved_path", approvedPath.String())

	return nil
}

// Stats aggregates the pending queue.
func (q *Queue) Stats(ctx context.Context) (*model.QueueStats, error) {
	return q.storage.PendingTaskStats(ctx)
}
