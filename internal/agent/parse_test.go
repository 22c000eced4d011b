package agent

import (
	"strings"
	"testing"
)

func TestParseDecisionText(t *testing.T) {
	tests := []struct {
		name         string
		content      string
		wantDecision string
		wantSteps    int
	}{
		{
			"strict json",
			`{"decision": "Adopt PostgreSQL.", "confidence": 0.8, "reasoning": ["fits team skills", "proven at this scale", "managed offerings exist"]}`,
			"Adopt PostgreSQL.",
			3,
		},
		{
			"fenced json",
			"```json\n{\"decision\": \"Ship it\", \"reasoning\": [\"tests pass\", \"low blast radius\"]}\n```",
			"Ship it.",
			2,
		},
		{
			"json with surrounding prose",
			"Here is my analysis:\n{\"decision\": \"Wait a quarter.\", \"reasoning\": [\"budget is tight\"]}\nHope that helps!",
			"Wait a quarter.",
			1,
		},
		{
			"numbered list",
			"Recommend a phased rollout.\n1. Start with one region\n2. Monitor error rates\n3. Expand weekly",
			"Recommend a phased rollout.",
			3,
		},
		{
			"plain sentences",
			"Go with the managed service. It removes operational burden. The cost delta is small.",
			"Go with the managed service.",
			2,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			decision, err := parseDecisionText(tc.content)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if decision.Decision != tc.wantDecision {
				t.Fatalf("decision = %q, want %q", decision.Decision, tc.wantDecision)
			}
			if len(decision.Reasoning) != tc.wantSteps {
				t.Fatalf("steps = %d, want %d (%v)", len(decision.Reasoning), tc.wantSteps, decision.Reasoning)
			}
		})
	}
}

func TestParseDecisionTextFailures(t *testing.T) {
	for _, content := range []string{"", "   \n  ", "???"} {
		if _, err := parseDecisionText(content); err == nil {
			t.Fatalf("expected error for %q", content)
		}
	}
}

func TestCleanDecisionText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Decision: use sqlite", "use sqlite."},
		{"My recommendation: wait.", "wait."},
		{"already clean.", "already clean."},
		{"needs punctuation", "needs punctuation."},
	}
	for _, tc := range tests {
		if got := cleanDecisionText(tc.in); got != tc.want {
			t.Fatalf("cleanDecisionText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeJSONBlockNoObject(t *testing.T) {
	if got := normalizeJSONBlock("no braces here"); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
	if got := normalizeJSONBlock("{\"a\": 1}"); !strings.HasPrefix(got, "{") {
		t.Fatalf("expected object, got %q", got)
	}
}
