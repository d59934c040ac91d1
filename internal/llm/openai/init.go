package openai

import (
	"tutor/ai/internal/config"
	"tutor/ai/internal/llm"
)

// Register OpenAI provider on package import
func init() {
	llm.RegisterProvider(config.ProviderOpenAI, func(cfg *config.Config) (llm.Provider, error) {
		openaiConfig, err := NewConfig(cfg)
		if err != nil {
			return nil, err
		}
		return NewClient(openaiConfig), nil
	})
}
