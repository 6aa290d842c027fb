package inference

import (
	"fmt"
	"strings"

	"github.com/curationd/taxora/internal/service"
)

// buildPrompt renders the classification prompt sent to either provider.
// The response contract is strict JSON so the parser can validate it at the
// boundary.
func buildPrompt(pc service.PromptContext) string {
	var candidateList strings.Builder
	for _, p := range pc.CandidatePaths {
		candidateList.WriteString("- ")
		candidateList.WriteString(p.String())
		candidateList.WriteString("\n")
	}

	var hintSection string
	if len(pc.HintPaths) > 0 {
		hints := make([]string, len(pc.HintPaths))
		for i, p := range pc.HintPaths {
			hints[i] = p.String()
		}
		hintSection = fmt.Sprintf("\nThe caller suggested these paths as likely candidates: %s\n", strings.Join(hints, ", "))
	}

	return fmt.Sprintf(`Classify this text fragment into the most appropriate taxonomy path.

Taxonomy paths (root to leaf, "/"-separated):
%s%s
Text fragment:
%s

Respond with ONLY a JSON object in exactly this shape:
{
  "canonical_path": ["label", "label"],
  "candidate_paths": [["label", "label"]],
  "reasoning": ["first observation", "second observation"],
  "confidence": 0.0
}

Rules:
1. canonical_path is the single best path, as an array of labels from root to leaf.
2. candidate_paths lists up to 3 alternative paths, best first. It may be empty.
3. reasoning must contain at least 2 short strings explaining the choice.
4. confidence is a number between 0.0 and 1.0.
5. Prefer an existing path from the list; only deviate when nothing fits.`,
		candidateList.String(),
		hintSection,
		pc.Text)
}
