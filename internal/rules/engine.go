// Package rules provides deterministic pattern-based fragment classification.
package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/curationd/taxora/internal/model"
)

// Rule tier confidences. Tiers are fixed by design: a sensitivity marker always
// outranks a technical keyword set, which always outranks a generic keyword pair.
const (
	SensitivityConfidence = 0.95
	TechnicalConfidence   = 0.85
	DomainPairConfidence  = 0.80
)

// Rule matches fragments either by a single regex or by requiring every
// keyword in AllOf to appear. Exactly one of Regex/AllOf should be set.
type Rule struct {
	Name       string   `yaml:"name"`
	Regex      string   `yaml:"regex,omitempty"`
	AllOf      []string `yaml:"all_of,omitempty"`
	Path       []string `yaml:"path"`
	Priority   int      `yaml:"priority"`
	Confidence float64  `yaml:"confidence"`
}

// compiledRule holds a compiled regex rule with metadata.
type compiledRule struct {
	compiledRegex *regexp.Regexp
	allOf         []string
	Rule
}

// Engine evaluates rules in priority order; the first match wins.
type Engine struct {
	rules []compiledRule
	mu    sync.RWMutex
}

// NewEngine creates a rule engine with the given rules. An empty slice loads
// the default rule set.
func NewEngine(ruleset []Rule) (*Engine, error) {
	if len(ruleset) == 0 {
		ruleset = DefaultRules()
	}

	compiled, err := compileRules(ruleset)
	if err != nil {
		return nil, err
	}

	return &Engine{rules: compiled}, nil
}

func compileRules(ruleset []Rule) ([]compiledRule, error) {
	compiled := make([]compiledRule, 0, len(ruleset))

	for _, r := range ruleset {
		if len(r.Path) == 0 {
			return nil, fmt.Errorf("rule %s has no target path", r.Name)
		}
		if r.Confidence <= 0 || r.Confidence > 1 {
			return nil, fmt.Errorf("rule %s has confidence %.2f outside (0,1]", r.Name, r.Confidence)
		}

		cr := compiledRule{Rule: r}

		switch {
		case r.Regex != "":
			regexStr := r.Regex
			if !strings.HasPrefix(regexStr, "(?i)") {
				regexStr = "(?i)" + regexStr // Case-insensitive by default
			}
			regex, err := regexp.Compile(regexStr)
			if err != nil {
				return nil, fmt.Errorf("failed to compile rule %s: %w", r.Name, err)
			}
			cr.compiledRegex = regex
		case len(r.AllOf) > 0:
			lowered := make([]string, len(r.AllOf))
			for i, kw := range r.AllOf {
				lowered[i] = strings.ToLower(kw)
			}
			cr.allOf = lowered
		default:
			return nil, fmt.Errorf("rule %s has neither regex nor keywords", r.Name)
		}

		compiled = append(compiled, cr)
	}

	// Highest priority first; stable so same-priority rules keep file order.
	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].Priority > compiled[j].Priority
	})

	return compiled, nil
}

// Evaluate classifies a fragment against the rule set. The first matching rule
// wins; no accumulation happens across rules. A nil result with no error means
// no rule matched.
func (e *Engine) Evaluate(text string) *model.StageResult {
	e.mu.RLock()
	defer e.mu.RUnlock()

	searchText := strings.ToLower(text)

	for i := range e.rules {
		rule := &e.rules[i]
		if !rule.matches(searchText) {
			continue
		}

		return &model.StageResult{
			CanonicalPath: model.Path(rule.Path).Clone(),
			Confidence:    rule.Confidence,
			Method:        model.MethodPatternRule,
			Reasoning:     []string{fmt.Sprintf("matched rule %q", rule.Name)},
		}
	}

	return nil
}

func (r *compiledRule) matches(searchText string) bool {
	if r.compiledRegex != nil {
		return r.compiledRegex.MatchString(searchText)
	}
	for _, kw := range r.allOf {
		if !strings.Contains(searchText, kw) {
			return false
		}
	}
	return len(r.allOf) > 0
}

// UpdateRules replaces the engine's rule set.
func (e *Engine) UpdateRules(ruleset []Rule) error {
	compiled, err := compileRules(ruleset)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.rules = compiled
	e.mu.Unlock()

	return nil
}

// RuleCount returns the number of loaded rules.
func (e *Engine) RuleCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.rules)
}
