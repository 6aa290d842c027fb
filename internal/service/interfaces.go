// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/curationd/taxora/internal/model"
)

// TaskFilter defines filtering options for review-task queries.
type TaskFilter struct {
	Priority      *model.Priority
	MinConfidence *float64
	MaxConfidence *float64
	Limit         int
}

// Storage defines the contract for the persistence layer.
type Storage interface {
	// Fragment operations
	SaveFragment(ctx context.Context, fragmentID, text string) error
	GetFragmentText(ctx context.Context, fragmentID string) (string, error)

	// Committed classification operations
	SaveOutcome(ctx context.Context, outcome *model.ClassificationOutcome) error
	GetOutcome(ctx context.Context, fragmentID string) (*model.ClassificationOutcome, error)

	// Review task operations
	CreateReviewTask(ctx context.Context, task *model.ReviewTask) error
	GetReviewTask(ctx context.Context, taskID string) (*model.ReviewTask, error)
	ListPendingTasks(ctx context.Context, filter TaskFilter) ([]model.ReviewTask, error)
	CompleteReviewTask(ctx context.Context, taskID string, approvedPath model.Path, confidenceOverride *float64) error
	PendingTaskStats(ctx context.Context) (*model.QueueStats, error)

	// Taxonomy leaf operations
	SaveTaxonomyLeaves(ctx context.Context, leaves []model.TaxonomyLeaf) error
	GetLeafPaths(ctx context.Context, version string) ([]model.TaxonomyLeaf, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// EmbeddingProvider produces a vector embedding for a text fragment.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// PromptContext is the bounded taxonomy context handed to the inference provider.
type PromptContext struct {
	Text           string
	CandidatePaths []model.Path
	HintPaths      []model.Path
}

// InferenceResult is the validated structured payload from the inference provider.
type InferenceResult struct {
	CanonicalPath  model.Path
	CandidatePaths []model.Path
	Reasoning      []string
	Confidence     float64
}

// InferenceProvider performs one structured classification call. Implementations
// return either a fully validated result or an error; partial payloads never
// cross this boundary.
type InferenceProvider interface {
	Infer(ctx context.Context, pc PromptContext) (*InferenceResult, error)
}

// TaxonomyStore exposes the flat leaf view of a taxonomy snapshot.
type TaxonomyStore interface {
	GetLeafPaths(ctx context.Context, version string) ([]model.TaxonomyLeaf, error)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
