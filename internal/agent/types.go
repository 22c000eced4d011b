package agent

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Decision source labels recorded with every response.
const (
	SourceProvider = "provider"
	SourceFallback = "fallback"
)

// Decision is the normalized shape both the remote provider path and the
// deterministic fallback path produce. The JSON tags match the structured
// format requested from the LLM.
type Decision struct {
	Decision   string   `json:"decision"`
	Reasoning  []string `json:"reasoning"`
	Confidence float64  `json:"confidence,omitempty"`

	// Set by the producing provider, not parsed from the wire.
	Source    string `json:"-"`
	ModelName string `json:"-"`
}

// Provider produces a recommendation for a task. Implementations must treat
// the supplied context.Context as the cancellation boundary for any outbound
// call.
type Provider interface {
	Enabled() bool
	Decide(ctx context.Context, taskDescription string, taskContext map[string]any) (Decision, error)
}

// Config holds provider configuration parameters.
type Config struct {
	Vendor      string
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Supported vendor identifiers.
const (
	VendorOpenAI = "openai"
	VendorGemini = "gemini"
)

var ErrDisabled = errors.New("ai provider disabled")

// NewProvider constructs the vendor client selected by the configuration.
// A blank API key yields ErrDisabled so callers can run fallback-only.
func NewProvider(cfg Config) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Vendor)) {
	case "", VendorOpenAI:
		return NewOpenAIClient(cfg)
	case VendorGemini:
		return NewGeminiClient(cfg)
	default:
		return nil, errors.New("unknown ai vendor: " + cfg.Vendor)
	}
}
