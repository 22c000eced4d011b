package explain

import "testing"

func TestBuildKeepsSuppliedSteps(t *testing.T) {
	steps := []string{"step one", "step two", "step three"}
	payload := Build("Should we proceed?", map[string]any{"a": "b"}, "Yes.", steps, ModelDetails{Name: "m", Type: "llm"})
	if len(payload.ReasoningSteps) != 3 {
		t.Fatalf("expected supplied steps to survive, got %d", len(payload.ReasoningSteps))
	}
	if payload.ReasoningSteps[0] != "step one" {
		t.Fatalf("unexpected first step %q", payload.ReasoningSteps[0])
	}
	if payload.AnalysisType != AnalysisType {
		t.Fatalf("analysis type missing: %q", payload.AnalysisType)
	}
}

func TestBuildGeneratesStepsWhenSparse(t *testing.T) {
	payload := Build(
		"Should we migrate to microservices architecture?",
		map[string]any{"team_size": float64(10), "current_system": "monolith"},
		"Yes, migrate incrementally.",
		nil,
		ModelDetails{Name: "m", Type: "llm"},
	)
	if len(payload.ReasoningSteps) < 3 {
		t.Fatalf("expected at least 3 generated steps, got %d", len(payload.ReasoningSteps))
	}
	if len(payload.FeatureImportance) != 2 {
		t.Fatalf("expected importance for both context keys, got %d", len(payload.FeatureImportance))
	}
}

func TestBuildEmptyContext(t *testing.T) {
	payload := Build("decide something", map[string]any{}, "A decision.", nil, ModelDetails{})
	if len(payload.FeatureImportance) != 0 {
		t.Fatalf("expected empty importance map, got %d entries", len(payload.FeatureImportance))
	}
	if len(payload.ReasoningSteps) < 3 {
		t.Fatalf("expected generated steps even without context, got %d", len(payload.ReasoningSteps))
	}
}
