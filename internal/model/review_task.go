package model

import "time"

// Priority orders review tasks for human attention.
type Priority string

// Review task priorities.
const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// ValidPriority reports whether p is one of the defined priorities.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityUrgent, PriorityHigh, PriorityNormal, PriorityLow:
		return true
	}
	return false
}

// TaskStatus is the review task lifecycle state.
type TaskStatus string

// Task status constants. The lifecycle is pending -> completed, terminal;
// tasks are never deleted, preserving the audit trail.
const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
)

// ReviewTask is an escalated classification awaiting a human decision.
type ReviewTask struct {
	ID                 string
	FragmentID         string
	SuggestedPath      Path
	AlternativePaths   []Path
	Confidence         float64
	Priority           Priority
	Status             TaskStatus
	ApprovedPath       Path
	ConfidenceOverride *float64
	CreatedAt          time.Time
	CompletedAt        *time.Time
}

// QueueStats aggregates the pending portion of the review queue.
type QueueStats struct {
	PendingCount  int
	AvgConfidence float64
	MinConfidence float64
	MaxConfidence float64
}
