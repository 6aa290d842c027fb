package inference

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/curationd/taxora/internal/common"
	"github.com/curationd/taxora/internal/model"
	"github.com/curationd/taxora/internal/service"
)

// inferencePayload is the wire shape of a structured classification response.
type inferencePayload struct {
	CanonicalPath  []string   `json:"canonical_path"`
	CandidatePaths [][]string `json:"candidate_paths"`
	Reasoning      []string   `json:"reasoning"`
	Confidence     *float64   `json:"confidence"`
}

// parseInferenceResponse validates a provider's raw text into an
// InferenceResult. Anything that fails validation is rejected here so partial
// payloads never reach the cross-validator; the caller treats rejection the
// same as a provider failure.
func parseInferenceResponse(content string) (*service.InferenceResult, error) {
	jsonText := extractJSON(content)
	if jsonText == "" {
		return nil, fmt.Errorf("%w: no JSON object in response", common.ErrMalformedResponse)
	}

	var payload inferencePayload
	if err := json.Unmarshal([]byte(jsonText), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedResponse, err)
	}

	canonical := cleanLabels(payload.CanonicalPath)
	if len(canonical) == 0 {
		return nil, fmt.Errorf("%w: empty canonical_path", common.ErrMalformedResponse)
	}

	if payload.Confidence == nil {
		return nil, fmt.Errorf("%w: missing confidence", common.ErrMalformedResponse)
	}
	confidence := *payload.Confidence
	if confidence < 0 || confidence > 1 {
		return nil, fmt.Errorf("%w: confidence %.3f outside [0,1]", common.ErrMalformedResponse, confidence)
	}

	if len(payload.Reasoning) < MinReasoningStrings {
		return nil, fmt.Errorf("%w: %d reasoning strings, need at least %d",
			common.ErrMalformedResponse, len(payload.Reasoning), MinReasoningStrings)
	}

	candidates := make([]model.Path, 0, model.MaxCandidatePaths)
	for _, raw := range payload.CandidatePaths {
		if len(candidates) == model.MaxCandidatePaths {
			break
		}
		p := cleanLabels(raw)
		if len(p) == 0 || p.Equal(canonical) {
			continue
		}
		candidates = append(candidates, p)
	}

	return &service.InferenceResult{
		CanonicalPath:  canonical,
		CandidatePaths: candidates,
		Reasoning:      payload.Reasoning,
		Confidence:     confidence,
	}, nil
}

// extractJSON pulls the first top-level JSON object out of content, tolerating
// markdown fences and surrounding prose.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	if idx := strings.Index(content, "```"); idx >= 0 {
		rest := content[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			content = rest[:end]
		} else {
			content = rest
		}
		content = strings.TrimSpace(content)
	}

	start := strings.Index(content, "{")
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		c := content[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return content[start : i+1]
			}
		}
	}

	return ""
}

func cleanLabels(labels []string) model.Path {
	path := make(model.Path, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l != "" {
			path = append(path, l)
		}
	}
	return path
}
