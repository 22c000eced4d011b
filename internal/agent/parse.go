package agent

import (
	"encoding/json"
	"errors"
	"math"
	"strings"

	"agentic-xai/internal/text"
)

// parseDecisionText turns a provider's free-text completion into a Decision.
// A strict JSON object (optionally fenced) is tried first; failing that, the
// text is split on list markers and sentence boundaries. An empty result is
// an error so the caller can engage the fallback engine.
func parseDecisionText(content string) (Decision, error) {
	block := normalizeJSONBlock(content)
	if block != "" {
		var decision Decision
		if err := json.Unmarshal([]byte(block), &decision); err == nil {
			sanitizeDecision(&decision)
			if decision.Decision != "" {
				return decision, nil
			}
		}
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return Decision{}, errors.New("empty provider response")
	}

	decision := Decision{}
	if items := text.ListItems(trimmed); len(items) > 0 {
		// Narrative before the list is the decision; list entries are steps.
		if lead := text.LeadBeforeList(trimmed); lead != "" {
			decision.Decision = firstSentence(lead)
		}
		if decision.Decision == "" {
			decision.Decision = items[0]
			items = items[1:]
		}
		decision.Reasoning = items
	} else {
		sentences := text.Sentences(trimmed)
		if len(sentences) == 0 {
			return Decision{}, errors.New("unparseable provider response")
		}
		decision.Decision = sentences[0]
		if len(sentences) > 1 {
			decision.Reasoning = sentences[1:]
		}
	}

	sanitizeDecision(&decision)
	if decision.Decision == "" {
		return Decision{}, errors.New("provider response carried no decision")
	}
	return decision, nil
}

// normalizeJSONBlock strips markdown fences and surrounding prose from a
// JSON object embedded in completion text.
func normalizeJSONBlock(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.IndexRune(trimmed, '\n'); idx >= 0 {
			trimmed = trimmed[idx+1:]
		}
		if strings.HasSuffix(trimmed, "```") {
			trimmed = trimmed[:len(trimmed)-3]
		}
	}
	trimmed = strings.TrimSpace(trimmed)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		return strings.TrimSpace(trimmed[start : end+1])
	}
	return ""
}

func sanitizeDecision(decision *Decision) {
	if decision == nil {
		return
	}
	decision.Decision = cleanDecisionText(decision.Decision)
	steps := decision.Reasoning[:0]
	for _, step := range decision.Reasoning {
		if trimmed := strings.TrimSpace(step); trimmed != "" {
			steps = append(steps, trimmed)
		}
	}
	decision.Reasoning = steps
	decision.Confidence = clampFloat(decision.Confidence, 0, 1)
}

var decisionPrefixes = []string{
	"decision:", "my decision:", "recommendation:", "my recommendation:",
	"i recommend:", "based on the analysis:", "after analyzing:",
}

// cleanDecisionText drops boilerplate prefixes and ensures terminal
// punctuation.
func cleanDecisionText(decision string) string {
	decision = strings.TrimSpace(decision)
	for _, prefix := range decisionPrefixes {
		if len(decision) > len(prefix) && strings.EqualFold(decision[:len(prefix)], prefix) {
			decision = strings.TrimSpace(decision[len(prefix):])
		}
	}
	if decision != "" && !strings.ContainsAny(decision[len(decision)-1:], ".!?") {
		decision += "."
	}
	return decision
}

func firstSentence(s string) string {
	sentences := text.Sentences(s)
	if len(sentences) == 0 {
		return strings.TrimSpace(s)
	}
	return sentences[0]
}

func clampFloat(value, min, max float64) float64 {
	if math.IsNaN(value) {
		return min
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
