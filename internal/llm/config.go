// Package llm provides the Gemini client used for CV optimization and
// keyword extraction, with centralized model configuration.
package llm

import "time"

// ModelTier represents the capability level of a model.
type ModelTier string

const (
	// TierLite is for cheap structured tasks: keyword extraction.
	TierLite ModelTier = "lite"
	// TierStandard is for moderate reasoning tasks.
	TierStandard ModelTier = "standard"
	// TierAdvanced is for full CV rewriting.
	TierAdvanced ModelTier = "advanced"
)

// DefaultMaxTokens bounds the optimization response. A two-page CV in
// RenderCV YAML fits comfortably under this.
const DefaultMaxTokens int32 = 4000

// Call-level limits. Each attempt gets its own deadline; transient
// failures are retried with exponential backoff and jitter.
const (
	callTimeout    = 60 * time.Second
	maxAttempts    = 3
	initialBackoff = 1 * time.Second
	backoffJitter  = 500 * time.Millisecond
)

// Config holds the model selection per tier.
type Config struct {
	Models map[ModelTier]string
}

// DefaultConfig returns the default Gemini model mapping.
func DefaultConfig() *Config {
	return &Config{
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
	}
}

// GetModel returns the model name for a tier, falling back through
// standard and lite when the requested tier is not configured.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a copy of the config with one tier overridden.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	cp := &Config{Models: make(map[ModelTier]string, len(c.Models))}
	for k, v := range c.Models {
		cp.Models[k] = v
	}
	cp.Models[tier] = model
	return cp
}
