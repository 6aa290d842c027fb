// Package validator reconciles rule and inference classifications into one
// confidence-adjusted result and computes the structural drift signal.
package validator

import (
	"github.com/curationd/taxora/internal/model"
)

// Confidence combination constants. The three branches are mutually exclusive:
// agreement boosts the averaged confidence, a missing rule result discounts the
// single source, and a path disagreement discounts harder.
const (
	AgreementBoost       = 1.1
	SingleSourceDiscount = 0.8
	DisagreementDiscount = 0.7

	// DriftPrefixRatio is the fraction of the rule path that must be shared
	// as a common prefix to avoid the drift flag.
	DriftPrefixRatio = 0.5
)

// Result is the cross-validated classification for one fragment.
type Result struct {
	CanonicalPath  model.Path
	CandidatePaths []model.Path
	Confidence     float64
	Method         model.Method
	DriftDetected  bool
}

// Combine merges an optional rule result with a required inference result.
// The inference path always wins on disagreement; confidence reflects how the
// two sources relate. Drift is computed independently of the confidence branch
// whenever a rule result exists.
func Combine(ruleResult *model.StageResult, inferenceResult *model.StageResult) Result {
	res := Result{
		CanonicalPath:  inferenceResult.CanonicalPath.Clone(),
		CandidatePaths: clonePaths(inferenceResult.CandidatePaths),
	}

	switch {
	case ruleResult != nil && ruleResult.CanonicalPath.Equal(inferenceResult.CanonicalPath):
		boosted := (ruleResult.Confidence + inferenceResult.Confidence) / 2 * AgreementBoost
		res.Confidence = clamp01(boosted)
		res.Method = model.MethodCrossValidated
	case ruleResult == nil:
		res.Confidence = clamp01(inferenceResult.Confidence * SingleSourceDiscount)
		res.Method = model.MethodLLMOnly
	default:
		res.Confidence = clamp01(inferenceResult.Confidence * DisagreementDiscount)
		res.Method = model.MethodLLMDisagreement
	}

	if ruleResult != nil {
		res.DriftDetected = DriftDetected(ruleResult.CanonicalPath, inferenceResult.CanonicalPath)
	}

	return res
}

// DriftDetected reports structural disagreement between the rule path and the
// inference path: the shared prefix covers less than DriftPrefixRatio of the
// rule path. Confidence values play no part here.
func DriftDetected(rulePath, inferencePath model.Path) bool {
	if len(rulePath) == 0 {
		return false
	}
	common := rulePath.CommonPrefixLen(inferencePath)
	return float64(common) < float64(len(rulePath))*DriftPrefixRatio
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clonePaths(paths []model.Path) []model.Path {
	if paths == nil {
		return nil
	}
	out := make([]model.Path, len(paths))
	for i, p := range paths {
		out[i] = p.Clone()
	}
	return out
}
