package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/curationd/taxora/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrInvalidTask    = errors.New("invalid review task")
	ErrInvalidOutcome = errors.New("invalid classification outcome")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateReviewTask validates a task before insertion.
func validateReviewTask(task *model.ReviewTask) error {
	if task == nil {
		return fmt.Errorf("%w: task", ErrNilParameter)
	}
	if task.ID == "" {
		return fmt.Errorf("%w: missing task id", ErrInvalidTask)
	}
	if task.FragmentID == "" {
		return fmt.Errorf("%w: missing fragment id", ErrInvalidTask)
	}
	if len(task.SuggestedPath) == 0 {
		return fmt.Errorf("%w: missing suggested path", ErrInvalidTask)
	}
	if task.Confidence < 0 || task.Confidence > 1 {
		return fmt.Errorf("%w: confidence %.3f outside [0,1]", ErrInvalidTask, task.Confidence)
	}
	if !model.ValidPriority(task.Priority) {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidTask, task.Priority)
	}
	return nil
}

// validateOutcome validates an outcome before insertion.
func validateOutcome(outcome *model.ClassificationOutcome) error {
	if outcome == nil {
		return fmt.Errorf("%w: outcome", ErrNilParameter)
	}
	if outcome.FragmentID == "" {
		return fmt.Errorf("%w: missing fragment id", ErrInvalidOutcome)
	}
	if len(outcome.CanonicalPath) == 0 {
		return fmt.Errorf("%w: missing canonical path", ErrInvalidOutcome)
	}
	if outcome.Confidence < 0 || outcome.Confidence > 1 {
		return fmt.Errorf("%w: confidence %.3f outside [0,1]", ErrInvalidOutcome, outcome.Confidence)
	}
	return nil
}
