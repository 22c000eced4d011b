package explain

import (
	"fmt"
	"sort"
	"strings"

	"agentic-xai/internal/text"
)

// AnalysisType labels the explanation honestly: the weights and scores below
// are arithmetic heuristics over the input shape, not SHAP/LIME attributions.
const AnalysisType = "rule-based heuristics"

// ModelDetails identifies which component produced the recommendation.
type ModelDetails struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Payload is the explanation attached to every decision response. It is
// derived deterministically from the request and decision; there is no hidden
// state.
type Payload struct {
	ReasoningSteps    []string           `json:"reasoning_steps"`
	FeatureImportance map[string]float64 `json:"feature_importance"`
	ModelDetails      ModelDetails       `json:"model_details"`
	AnalysisType      string             `json:"analysis_type"`
}

var keyActionWords = []string{"analyze", "create", "decide", "recommend", "evaluate", "compare", "solve", "find", "determine", "assess", "migrate", "choose"}

// Build assembles the explanation payload for a decision. When the decision
// path supplied fewer than three reasoning steps, a heuristic narrative is
// generated from the task and context instead.
func Build(taskDescription string, context map[string]any, decision string, steps []string, model ModelDetails) Payload {
	importance := FeatureImportance(context)
	if len(steps) < 3 {
		steps = reasoningSteps(taskDescription, context, decision, importance)
	}
	return Payload{
		ReasoningSteps:    steps,
		FeatureImportance: importance,
		ModelDetails:      model,
		AnalysisType:      AnalysisType,
	}
}

func reasoningSteps(taskDescription string, context map[string]any, decision string, importance map[string]float64) []string {
	steps := make([]string, 0, 6)
	steps = append(steps, fmt.Sprintf("Analyzed the task: %q", truncate(taskDescription, 80)))

	if len(context) == 0 {
		steps = append(steps, "No additional context was provided for analysis")
	} else {
		keys := sortedKeys(context)
		desc := fmt.Sprintf("Evaluated %d context parameter%s", len(context), plural(len(context)))
		if len(keys) <= 3 {
			desc += ": " + strings.Join(keys, ", ")
		}
		steps = append(steps, desc)
	}

	words := text.Words(taskDescription)
	var actions []string
	for _, action := range keyActionWords {
		for _, word := range words {
			if word == action {
				actions = append(actions, action)
				break
			}
		}
		if len(actions) == 3 {
			break
		}
	}
	if len(actions) > 0 {
		steps = append(steps, "Identified key actions required: "+strings.Join(actions, ", "))
	}

	if top := topFeatures(importance, 3); len(top) > 0 {
		steps = append(steps, "Prioritized the most informative factors: "+strings.Join(top, ", "))
	}

	steps = append(steps, fmt.Sprintf("Formulated the recommendation: %q", truncate(decision, 60)))

	confidence := Confidence(taskDescription, context, decision)
	steps = append(steps, fmt.Sprintf("Assessed decision confidence at %.0f%% from input completeness", confidence*100))
	return steps
}

// topFeatures returns the highest-weighted keys, ties broken alphabetically
// so the output is stable.
func topFeatures(importance map[string]float64, limit int) []string {
	keys := make([]string, 0, len(importance))
	for key := range importance {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if importance[keys[i]] != importance[keys[j]] {
			return importance[keys[i]] > importance[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
