package openai

import (
	"context"
	"errors"
	"net/http"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"tutor/ai/internal/llm"
	"tutor/ai/internal/models"
)

const providerName = "openai"

// Client represents an OpenAI chat completion client
type Client struct {
	client *goopenai.Client
	config *Config
}

func NewClient(config *Config) *Client {
	return newClient(config, nil)
}

func newClient(config *Config, httpClient *http.Client) *Client {
	clientConfig := goopenai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	if httpClient != nil {
		clientConfig.HTTPClient = httpClient
	}

	return &Client{
		client: goopenai.NewClientWithConfig(clientConfig),
		config: config,
	}
}

// Generate sends the system and tutoring prompts as one chat completion.
func (c *Client) Generate(ctx context.Context, req *models.GenerationRequest) (*models.GenerationResponse, error) {
	startTime := time.Now()

	messages := make([]goopenai.ChatCompletionMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	messages = append(messages, goopenai.ChatCompletionMessage{
		Role:    goopenai.ChatMessageRoleUser,
		Content: req.UserPrompt,
	})

	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       c.config.Model,
		Messages:    messages,
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	})
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: providerName,
			Code:     errorCode(ctx, err),
			Message:  "Failed to create chat completion",
			Err:      err,
		}
	}

	// blank content is left for the response parser to fill in
	if len(resp.Choices) == 0 {
		return nil, &llm.ProviderError{
			Provider: providerName,
			Code:     llm.ErrCodeEmptyOutput,
			Message:  "No choices returned",
		}
	}

	model := resp.Model
	if model == "" {
		model = c.config.Model
	}

	return &models.GenerationResponse{
		Content:    resp.Choices[0].Message.Content,
		TokensUsed: resp.Usage.TotalTokens,
		Metadata: models.GenerationMetadata{
			ProcessingTime: int(time.Since(startTime).Milliseconds()),
			Provider:       providerName,
			Model:          model,
		},
	}, nil
}

func (c *Client) GetProviderName() string {
	return providerName
}

func errorCode(ctx context.Context, err error) string {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return llm.ErrCodeAPIKey
		case http.StatusTooManyRequests:
			return llm.ErrCodeRateLimit
		case http.StatusBadRequest:
			return llm.ErrCodeInvalidInput
		}
	}
	return llm.ErrorCode(ctx, err)
}
