package explain

import (
	"strings"
	"testing"
)

func TestSummarizeContext(t *testing.T) {
	tests := []struct {
		name     string
		context  map[string]any
		expected string
	}{
		{"empty", map[string]any{}, ""},
		{"single string", map[string]any{"env": "production"}, "env: production"},
		{"sorted keys", map[string]any{"b": "two", "a": "one"}, "a: one; b: two"},
		{"mixed types", map[string]any{
			"count":   float64(3),
			"enabled": true,
			"note":    nil,
		}, "count: 3; enabled: true; note: null"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SummarizeContext(tc.context); got != tc.expected {
				t.Fatalf("expected %q got %q", tc.expected, got)
			}
		})
	}
}

func TestSummarizeContextEntryLimit(t *testing.T) {
	context := map[string]any{
		"a": "1", "b": "2", "c": "3", "d": "4", "e": "5", "f": "6", "g": "7",
	}
	summary := SummarizeContext(context)
	if parts := strings.Split(summary, "; "); len(parts) != summaryEntryLimit {
		t.Fatalf("expected %d entries got %d: %q", summaryEntryLimit, len(parts), summary)
	}
	if strings.Contains(summary, "f:") || strings.Contains(summary, "g:") {
		t.Fatalf("entries beyond the limit leaked into summary: %q", summary)
	}
}

func TestStringifyValueCollections(t *testing.T) {
	got := StringifyValue([]any{"a", float64(2)})
	if got != `["a",2]` {
		t.Fatalf("expected JSON encoding got %q", got)
	}
	got = StringifyValue(map[string]any{"k": "v"})
	if got != `{"k":"v"}` {
		t.Fatalf("expected JSON encoding got %q", got)
	}
}
