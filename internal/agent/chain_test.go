package agent

import (
	"context"
	"errors"
	"testing"
)

type stubProvider struct {
	enabled  bool
	decision Decision
	err      error
	calls    int
}

func (s *stubProvider) Enabled() bool { return s.enabled }

func (s *stubProvider) Decide(_ context.Context, _ string, _ map[string]any) (Decision, error) {
	s.calls++
	return s.decision, s.err
}

func TestChainUsesPrimaryWhenHealthy(t *testing.T) {
	primary := &stubProvider{enabled: true, decision: Decision{Decision: "from primary", Source: SourceProvider}}
	chain := WithFallback(primary, NewEngine())

	decision, err := chain.Decide(context.Background(), "Should we proceed?", nil)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if decision.Decision != "from primary" {
		t.Fatalf("expected primary decision, got %q", decision.Decision)
	}
	if primary.calls != 1 {
		t.Fatalf("primary called %d times", primary.calls)
	}
}

func TestChainFallsBackOnError(t *testing.T) {
	primary := &stubProvider{enabled: true, err: errors.New("provider timeout")}
	chain := WithFallback(primary, NewEngine())

	decision, err := chain.Decide(context.Background(), "Should we proceed?", map[string]any{"readiness": "high"})
	if err != nil {
		t.Fatalf("chain must absorb provider errors, got %v", err)
	}
	if decision.Source != SourceFallback {
		t.Fatalf("expected fallback source, got %q", decision.Source)
	}
	if decision.Decision == "" {
		t.Fatal("fallback produced empty decision")
	}
}

func TestChainFallsBackOnEmptyDecision(t *testing.T) {
	primary := &stubProvider{enabled: true, decision: Decision{Decision: "   "}}
	chain := WithFallback(primary, NewEngine())

	decision, err := chain.Decide(context.Background(), "Compare Redis vs Memcached", nil)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if decision.Source != SourceFallback {
		t.Fatalf("blank primary decision must engage fallback, got source %q", decision.Source)
	}
}

func TestChainSkipsDisabledPrimary(t *testing.T) {
	primary := &stubProvider{enabled: false}
	chain := WithFallback(primary, NewEngine())

	decision, err := chain.Decide(context.Background(), "Should we proceed?", nil)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if primary.calls != 0 {
		t.Fatalf("disabled primary should not be called, got %d calls", primary.calls)
	}
	if decision.Source != SourceFallback {
		t.Fatalf("expected fallback source, got %q", decision.Source)
	}
}

func TestChainNilPrimary(t *testing.T) {
	chain := WithFallback(nil, NewEngine())
	if !chain.Enabled() {
		t.Fatal("fallback-only chain must report enabled")
	}
}

func TestNewProviderVendorSelection(t *testing.T) {
	if _, err := NewProvider(Config{Vendor: "openai"}); !errors.Is(err, ErrDisabled) {
		t.Fatalf("blank key must yield ErrDisabled, got %v", err)
	}
	if _, err := NewProvider(Config{Vendor: "gemini"}); !errors.Is(err, ErrDisabled) {
		t.Fatalf("blank key must yield ErrDisabled, got %v", err)
	}
	if _, err := NewProvider(Config{Vendor: "nope", APIKey: "k"}); err == nil {
		t.Fatal("unknown vendor must error")
	}
	if p, err := NewProvider(Config{Vendor: "openai", APIKey: "k"}); err != nil || !p.Enabled() {
		t.Fatalf("expected enabled openai client, err=%v", err)
	}
}
