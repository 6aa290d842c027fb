package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/curationd/taxora/internal/model"
)

func stageResult(path model.Path, confidence float64, method model.Method) *model.StageResult {
	return &model.StageResult{
		CanonicalPath: path,
		Confidence:    confidence,
		Method:        method,
	}
}

func TestCombine_Agreement(t *testing.T) {
	rule := stageResult(model.Path{"Technology", "AI"}, 0.85, model.MethodPatternRule)
	inf := stageResult(model.Path{"Technology", "AI"}, 0.75, model.MethodLLM)

	res := Combine(rule, inf)

	assert.Equal(t, model.MethodCrossValidated, res.Method)
	assert.InDelta(t, (0.85+0.75)/2*AgreementBoost, res.Confidence, 1e-9)
	assert.Equal(t, model.Path{"Technology", "AI"}, res.CanonicalPath)
	assert.False(t, res.DriftDetected)
}

func TestCombine_AgreementClipsAtOne(t *testing.T) {
	rule := stageResult(model.Path{"Sensitive"}, 0.95, model.MethodPatternRule)
	inf := stageResult(model.Path{"Sensitive"}, 0.95, model.MethodLLM)

	res := Combine(rule, inf)

	assert.Equal(t, model.MethodCrossValidated, res.Method)
	assert.Equal(t, 1.0, res.Confidence)
}

func TestCombine_NoRuleDiscountsSingleSource(t *testing.T) {
	inf := stageResult(model.Path{"AI", "NLP"}, 0.6, model.MethodLLM)

	res := Combine(nil, inf)

	assert.Equal(t, model.MethodLLMOnly, res.Method)
	assert.InDelta(t, 0.48, res.Confidence, 1e-9)
	assert.False(t, res.DriftDetected)
}

func TestCombine_DisagreementUsesInferencePath(t *testing.T) {
	rule := stageResult(model.Path{"Business", "Finance"}, 0.80, model.MethodPatternRule)
	inf := stageResult(model.Path{"Legal", "Contracts"}, 0.9, model.MethodLLM)

	res := Combine(rule, inf)

	assert.Equal(t, model.MethodLLMDisagreement, res.Method)
	assert.InDelta(t, 0.9*DisagreementDiscount, res.Confidence, 1e-9)
	assert.Equal(t, model.Path{"Legal", "Contracts"}, res.CanonicalPath)
	assert.True(t, res.DriftDetected)
}

func TestCombine_ConfidenceAlwaysInRange(t *testing.T) {
	paths := []model.Path{{"A"}, {"A", "B"}, {"X", "Y"}}
	confidences := []float64{0, 0.25, 0.5, 0.75, 0.95, 1}

	for _, rulePath := range paths {
		for _, infPath := range paths {
			for _, rc := range confidences {
				for _, ic := range confidences {
					rule := stageResult(rulePath, rc, model.MethodPatternRule)
					inf := stageResult(infPath, ic, model.MethodLLM)

					res := Combine(rule, inf)
					assert.GreaterOrEqual(t, res.Confidence, 0.0)
					assert.LessOrEqual(t, res.Confidence, 1.0)

					res = Combine(nil, inf)
					assert.GreaterOrEqual(t, res.Confidence, 0.0)
					assert.LessOrEqual(t, res.Confidence, 1.0)
				}
			}
		}
	}
}

func TestDriftDetected(t *testing.T) {
	tests := []struct {
		name          string
		rulePath      model.Path
		inferencePath model.Path
		want          bool
	}{
		{
			name:          "identical paths never drift",
			rulePath:      model.Path{"A", "B"},
			inferencePath: model.Path{"A", "B"},
			want:          false,
		},
		{
			name:          "full prefix of half length is not drift",
			rulePath:      model.Path{"A", "B"},
			inferencePath: model.Path{"A", "X"},
			want:          false,
		},
		{
			name:          "no shared prefix drifts",
			rulePath:      model.Path{"A", "B"},
			inferencePath: model.Path{"X", "Y"},
			want:          true,
		},
		{
			name:          "one of four shared drifts",
			rulePath:      model.Path{"A", "B", "C", "D"},
			inferencePath: model.Path{"A", "X", "Y", "Z"},
			want:          true,
		},
		{
			name:          "two of four shared is not drift",
			rulePath:      model.Path{"A", "B", "C", "D"},
			inferencePath: model.Path{"A", "B", "X", "Z"},
			want:          false,
		},
		{
			name:          "empty rule path never drifts",
			rulePath:      model.Path{},
			inferencePath: model.Path{"X"},
			want:          false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DriftDetected(tt.rulePath, tt.inferencePath))
		})
	}
}

func TestDrift_IndependentOfConfidence(t *testing.T) {
	// High confidence with a structurally divergent path must still drift.
	rule := stageResult(model.Path{"Business", "Finance"}, 0.95, model.MethodPatternRule)
	inf := stageResult(model.Path{"Healthcare", "Clinical"}, 0.99, model.MethodLLM)

	res := Combine(rule, inf)
	assert.True(t, res.DriftDetected)

	// Low confidence with an agreeing path must not drift.
	rule = stageResult(model.Path{"Business", "Finance"}, 0.80, model.MethodPatternRule)
	inf = stageResult(model.Path{"Business", "Finance"}, 0.1, model.MethodLLM)

	res = Combine(rule, inf)
	assert.False(t, res.DriftDetected)
}

func TestCombine_ThreadsCandidatePaths(t *testing.T) {
	inf := &model.StageResult{
		CanonicalPath: model.Path{"A"},
		CandidatePaths: []model.Path{
			{"B"},
			{"C", "D"},
		},
		Confidence: 0.8,
		Method:     model.MethodLLM,
	}

	res := Combine(nil, inf)
	assert.Equal(t, []model.Path{{"B"}, {"C", "D"}}, res.CandidatePaths)
}
