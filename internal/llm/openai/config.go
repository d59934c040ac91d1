package openai

import (
	"errors"
	"strings"

	"tutor/ai/internal/config"
)

// holds OpenAI-specific configuration
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float32
}

// NewConfig takes the OpenAI settings out of the application config.
func NewConfig(cfg *config.Config) (*Config, error) {
	if cfg == nil || cfg.OpenAI.APIKey == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable is required")
	}
	if !strings.HasPrefix(cfg.OpenAI.APIKey, "sk-") {
		return nil, errors.New("OPENAI_API_KEY must start with 'sk-'")
	}

	c := &Config{
		APIKey:      cfg.OpenAI.APIKey,
		Model:       cfg.OpenAI.Model,
		BaseURL:     cfg.OpenAI.BaseURL,
		MaxTokens:   cfg.OpenAI.MaxTokens,
		Temperature: float32(cfg.OpenAI.Temperature),
	}
	if c.Model == "" {
		c.Model = "gpt-4o-mini"
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 500
	}
	return c, nil
}
