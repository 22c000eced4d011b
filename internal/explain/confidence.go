package explain

import (
	"strings"

	"agentic-xai/internal/text"
)

// Confidence bounds. The floor keeps valid responses from reading as errors;
// the ceiling avoids claiming false certainty for what is a heuristic score,
// not a calibrated probability.
const (
	ConfidenceFloor   = 0.10
	ConfidenceCeiling = 0.95

	confidenceBase = 0.5
)

var decisionVerbs = []string{"should", "recommend", "choose", "decide", "compare", "evaluate", "select", "best"}

// Confidence combines task clarity, context richness, and decision
// specificity into a deterministic score clamped to
// [ConfidenceFloor, ConfidenceCeiling].
func Confidence(taskDescription string, context map[string]any, decision string) float64 {
	score := confidenceBase

	// Task clarity: a reasonably sized description phrased as a question or
	// carrying a decision verb signals a well-formed task.
	taskWords := len(text.Words(taskDescription))
	if taskWords >= 5 && taskWords <= 60 {
		score += 0.10
	}
	if strings.Contains(taskDescription, "?") || text.ContainsAny(taskDescription, decisionVerbs...) {
		score += 0.10
	}

	// Context richness: capped so a huge context cannot dominate.
	richness := float64(len(context)) * 0.03
	if richness > 0.15 {
		richness = 0.15
	}
	score += richness

	// Decision specificity: concrete numbers and substantive length beat a
	// bare yes/no.
	if strings.ContainsAny(decision, "0123456789") {
		score += 0.05
	}
	if len(text.Words(decision)) >= 8 {
		score += 0.05
	}

	return clamp(score, ConfidenceFloor, ConfidenceCeiling)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
