package agent

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
)

type providerChain struct {
	primary  Provider
	fallback Provider
}

// WithFallback returns a provider that first tries the primary implementation
// and falls back when the primary is unavailable, errors, or produces an
// unusable response. Provider failures are logged and absorbed here; callers
// never see them.
func WithFallback(primary, fallback Provider) Provider {
	if primary == nil {
		return fallback
	}
	if fallback == nil {
		return primary
	}
	return &providerChain{primary: primary, fallback: fallback}
}

func (c *providerChain) Enabled() bool {
	if c == nil {
		return false
	}
	if c.primary != nil && c.primary.Enabled() {
		return true
	}
	return c.fallback != nil && c.fallback.Enabled()
}

func (c *providerChain) Decide(ctx context.Context, taskDescription string, taskContext map[string]any) (Decision, error) {
	if c == nil {
		return Decision{}, ErrDisabled
	}
	if c.primary != nil && c.primary.Enabled() {
		decision, err := c.primary.Decide(ctx, taskDescription, taskContext)
		if err == nil && strings.TrimSpace(decision.Decision) != "" {
			return decision, nil
		}
		if err != nil {
			logrus.WithError(err).Warn("primary provider failed, engaging fallback")
		}
	}
	if c.fallback != nil && c.fallback.Enabled() {
		return c.fallback.Decide(ctx, taskDescription, taskContext)
	}
	return Decision{}, ErrDisabled
}
