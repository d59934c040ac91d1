package gemini

import (
	"errors"

	"tutor/ai/internal/config"
)

// holds Gemini-specific configuration
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// NewConfig takes the Gemini settings out of the application config.
func NewConfig(cfg *config.Config) (*Config, error) {
	if cfg == nil || cfg.Gemini.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY environment variable is required")
	}

	model := cfg.Gemini.Model
	if model == "" {
		model = "gemini-2.5-flash" // default model
	}

	return &Config{
		APIKey:  cfg.Gemini.APIKey,
		Model:   model,
		BaseURL: cfg.Gemini.BaseURL,
	}, nil
}
