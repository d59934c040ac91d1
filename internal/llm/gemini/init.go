package gemini

import (
	"context"

	"tutor/ai/internal/config"
	"tutor/ai/internal/llm"
)

// Register Gemini provider on package import
func init() {
	llm.RegisterProvider(config.ProviderGemini, func(cfg *config.Config) (llm.Provider, error) {
		geminiConfig, err := NewConfig(cfg)
		if err != nil {
			return nil, err
		}
		return NewClient(context.Background(), geminiConfig)
	})
}
