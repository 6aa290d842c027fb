package model

import "time"

// Method identifies which stage produced a classification result.
type Method string

// Classification method constants.
const (
	MethodPatternRule      Method = "pattern_rule"
	MethodLLM              Method = "llm"
	MethodCrossValidated   Method = "cross_validated"
	MethodLLMOnly          Method = "llm_only"
	MethodLLMDisagreement  Method = "llm_disagreement"
	MethodSemanticFallback Method = "semantic_fallback"
)

// MaxFragmentChars bounds the accepted fragment length. Longer fragments are
// rejected before any stage runs.
const MaxFragmentChars = 10000

// MaxCandidatePaths bounds the alternative paths carried by a stage result.
const MaxCandidatePaths = 3

// ClassificationRequest is a single fragment to classify. Immutable once created.
type ClassificationRequest struct {
	FragmentID string
	Text       string
	HintPaths  []Path
	Priority   Priority
}

// StageResult is the output of a single pipeline stage. Internal only; the
// orchestrator folds stage results into a ClassificationOutcome.
type StageResult struct {
	CanonicalPath  Path
	CandidatePaths []Path
	Confidence     float64
	Method         Method
	Reasoning      []string
}

// ClassificationOutcome is the final, caller-visible result for a fragment.
type ClassificationOutcome struct {
	FragmentID     string
	CanonicalPath  Path
	CandidatePaths []Path
	Confidence     float64
	Method         Method
	RequiresReview bool
	DriftDetected  bool
	ClassifiedAt   time.Time
}
