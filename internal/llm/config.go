// Package llm wraps the language model used by the screening evaluators.
// Callers pick a model tier, never a concrete model name.
package llm

import (
	"os"
	"strings"
)

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite grades answers: one short verdict per call
	TierLite ModelTier = "lite"
	// TierStandard writes interview questions from a job description
	TierStandard ModelTier = "standard"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider and the only one wired.
const ProviderGemini Provider = "gemini"

// Config holds the model configuration for the application
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	Temperature float32
}

// DefaultConfig returns the default Gemini configuration
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
		},
		Temperature: 0.2,
	}
}

// ConfigFromEnv returns DefaultConfig with per-tier overrides read from
// LLM_MODEL_LITE and LLM_MODEL_STANDARD.
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()
	if m := strings.TrimSpace(os.Getenv("LLM_MODEL_LITE")); m != "" {
		cfg = cfg.WithModel(TierLite, m)
	}
	if m := strings.TrimSpace(os.Getenv("LLM_MODEL_STANDARD")); m != "" {
		cfg = cfg.WithModel(TierStandard, m)
	}
	return cfg
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := &Config{
		Provider:    c.Provider,
		Models:      make(map[ModelTier]string, len(c.Models)+1),
		Temperature: c.Temperature,
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return newConfig
}
