// Package engine implements the classification orchestrator: it sequences the
// rule, inference, and cross-validation stages and applies the escalation
// decision rule.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/curationd/taxora/internal/common"
	"github.com/curationd/taxora/internal/hitl"
	"github.com/curationd/taxora/internal/model"
	"github.com/curationd/taxora/internal/rules"
	"github.com/curationd/taxora/internal/service"
	"github.com/curationd/taxora/internal/validator"
)

// Decision thresholds. Both are deliberate design constants, not tunables:
// the early exit is a cost-control decision and the review threshold defines
// the escalation contract.
const (
	// ReviewThreshold is the confidence below which an outcome requires review.
	ReviewThreshold = 0.70
	// RuleEarlyExitConfidence is the rule confidence at or above which the
	// inference stage is skipped entirely.
	RuleEarlyExitConfidence = 0.90
)

// Inference is the model-inference stage as seen by the orchestrator. It never
// fails; provider trouble is absorbed by the semantic fallback inside.
type Inference interface {
	Classify(ctx context.Context, text string, hintPaths []model.Path, leaves []model.TaxonomyLeaf) *model.StageResult
}

// Config holds orchestrator configuration. It is passed in at construction;
// there is no ambient toggle state.
type Config struct {
	TaxonomyVersion string
	BatchWorkers    int
}

// DefaultConfig returns the default orchestrator configuration.
func DefaultConfig() Config {
	return Config{
		TaxonomyVersion: "current",
		BatchWorkers:    5,
	}
}

// Orchestrator runs the three-stage pipeline per request and escalates
// low-trust outcomes to the review queue.
type Orchestrator struct {
	rules     *rules.Engine
	inference Inference
	taxonomy  service.TaxonomyStore
	storage   service.Storage
	queue     *hitl.Queue
	logger    *slog.Logger
	config    Config
}

// New creates an orchestrator with the given dependencies.
func New(ruleEngine *rules.Engine, inference Inference, taxonomy service.TaxonomyStore, storage service.Storage, queue *hitl.Queue, config Config, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if config.TaxonomyVersion == "" {
		config.TaxonomyVersion = "current"
	}
	if config.BatchWorkers <= 0 {
		config.BatchWorkers = 5
	}

	return &Orchestrator{
		rules:     ruleEngine,
		inference: inference,
		taxonomy:  taxonomy,
		storage:   storage,
		queue:     queue,
		logger:    logger,
		config:    config,
	}
}

// Classify runs the full pipeline for one fragment. Provider failures never
// surface here; the only errors are invalid input and storage failures.
func (o *Orchestrator) Classify(ctx context.Context, req model.ClassificationRequest) (*model.ClassificationOutcome, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	if err := o.storage.SaveFragment(ctx, req.FragmentID, req.Text); err != nil {
		return nil, fmt.Errorf("failed to persist fragment: %w", err)
	}

	leaves := o.loadLeaves(ctx)

	ruleResult := o.rules.Evaluate(req.Text)

	var inferenceResult *model.StageResult
	if ruleResult != nil && ruleResult.Confidence >= RuleEarlyExitConfidence {
		// Early exit: the rule result stands in for the inference result, so
		// the cross-validator sees agreement and the provider is never called.
		o.logger.Debug("rule early exit, skipping inference",
			"fragment_id", req.FragmentID,
			"path", ruleResult.CanonicalPath.String(),
			"confidence", ruleResult.Confidence)
		inferenceResult = ruleResult
	} else {
		inferenceResult = o.inference.Classify(ctx, req.Text, hintPaths(req), leaves)
	}

	cross := validator.Combine(ruleResult, inferenceResult)

	outcome := &model.ClassificationOutcome{
		FragmentID:     req.FragmentID,
		CanonicalPath:  cross.CanonicalPath,
		CandidatePaths: cross.CandidatePaths,
		Confidence:     cross.Confidence,
		Method:         cross.Method,
		DriftDetected:  cross.DriftDetected,
		RequiresReview: cross.Confidence < ReviewThreshold || cross.DriftDetected,
		ClassifiedAt:   time.Now().UTC(),
	}

	if err := o.storage.SaveOutcome(ctx, outcome); err != nil {
		return nil, fmt.Errorf("failed to persist outcome: %w", err)
	}

	if outcome.RequiresReview {
		taskID, err := o.queue.Enqueue(ctx, hitl.EnqueueParams{
			FragmentID:       req.FragmentID,
			SuggestedPath:    outcome.CanonicalPath,
			AlternativePaths: outcome.CandidatePaths,
			Confidence:       outcome.Confidence,
			Priority:         req.Priority,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to escalate fragment %s: %w", req.FragmentID, err)
		}
		o.logger.Info("fragment escalated for review",
			"fragment_id", req.FragmentID,
			"task_id", taskID,
			"confidence", outcome.Confidence,
			"drift", outcome.DriftDetected)
	} else {
		o.logger.Info("fragment classified",
			"fragment_id", req.FragmentID,
			"path", outcome.CanonicalPath.String(),
			"confidence", outcome.Confidence,
			"method", string(outcome.Method))
	}

	return outcome, nil
}

// ClassifyBatch classifies independent requests concurrently with a bounded
// worker pool. Order of results matches the order of requests.
func (o *Orchestrator) ClassifyBatch(ctx context.Context, requests []model.ClassificationRequest) ([]*model.ClassificationOutcome, error) {
	outcomes := make([]*model.ClassificationOutcome, len(requests))
	errs := make([]error, len(requests))

	sem := make(chan struct{}, o.config.BatchWorkers)
	var wg sync.WaitGroup

	for i, req := range requests {
		wg.Add(1)
		go func(idx int, r model.ClassificationRequest) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				errs[idx] = ctx.Err()
				return
			}

			outcome, err := o.Classify(ctx, r)
			if err != nil {
				errs[idx] = err
				return
			}
			outcomes[idx] = outcome
		}(i, req)
	}

	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("failed to classify fragment %s: %w", requests[i].FragmentID, err)
		}
	}

	return outcomes, nil
}

// loadLeaves fetches the taxonomy snapshot. An unreachable or empty taxonomy
// degrades the semantic stages rather than failing the request.
func (o *Orchestrator) loadLeaves(ctx context.Context) []model.TaxonomyLeaf {
	if o.taxonomy == nil {
		return nil
	}

	leaves, err := o.taxonomy.GetLeafPaths(ctx, o.config.TaxonomyVersion)
	if err != nil {
		o.logger.Warn("taxonomy store unavailable, continuing without leaves", "error", err)
		return nil
	}
	return leaves
}

func validateRequest(req model.ClassificationRequest) error {
	if strings.TrimSpace(req.FragmentID) == "" {
		return fmt.Errorf("%w: missing fragment id", common.ErrInvalidInput)
	}
	if strings.TrimSpace(req.Text) == "" {
		return fmt.Errorf("%w: empty fragment text", common.ErrInvalidInput)
	}
	if utf8.RuneCountInString(req.Text) > model.MaxFragmentChars {
		return fmt.Errorf("%w: fragment text exceeds %d characters", common.ErrInvalidInput, model.MaxFragmentChars)
	}
	if req.Priority != "" && !model.ValidPriority(req.Priority) {
		return fmt.Errorf("%w: unknown priority %q", common.ErrInvalidInput, req.Priority)
	}
	return nil
}

func hintPaths(req model.ClassificationRequest) []model.Path {
	if len(req.HintPaths) == 0 {
		return nil
	}
	out := make([]model.Path, len(req.HintPaths))
	for i, p := range req.HintPaths {
		out[i] = p.Clone()
	}
	return out
}
