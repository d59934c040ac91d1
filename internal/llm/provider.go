package llm

import (
	"context"
	"strings"

	"tutor/ai/internal/models"
)

// defines the interface for LLM providers
type Provider interface {
	Generate(ctx context.Context, req *models.GenerationRequest) (*models.GenerationResponse, error)
	GetProviderName() string
}

// represents an error from an LLM provider
type ProviderError struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + " error: " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + " error: " + e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Common error codes shared by all providers
const (
	ErrCodeAPIKey       = "invalid_api_key"
	ErrCodeRateLimit    = "rate_limit_exceeded"
	ErrCodeServiceDown  = "service_unavailable"
	ErrCodeInvalidInput = "invalid_input"
	ErrCodeTimeout      = "timeout"
	ErrCodeEmptyOutput  = "empty_output"
)

// IsRateLimitError matches the rate limit and quota messages both providers return.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "quota")
}

// ErrorCode classifies a raw client error.
func ErrorCode(ctx context.Context, err error) string {
	switch {
	case ctx.Err() != nil:
		return ErrCodeTimeout
	case IsRateLimitError(err):
		return ErrCodeRateLimit
	case strings.Contains(err.Error(), "401"), strings.Contains(err.Error(), "403"):
		return ErrCodeAPIKey
	default:
		return ErrCodeServiceDown
	}
}
