package models

import (
	"strings"

	"github.com/google/uuid"
)

type ChatRequest struct {
	Message   string   `json:"message"`
	Language  Language `json:"language"`
	Level     Level    `json:"level"`
	SessionID string   `json:"session_id"`
}

// implements the Validator interface
func (r *ChatRequest) Validate() error {
	if r.Message == "" {
		return &ErrorResponse{
			Code:    "missing_message",
			Message: "Message field is required",
		}
	}

	if strings.TrimSpace(string(r.Language)) == "" {
		return &ErrorResponse{
			Code:    "missing_language",
			Message: "Language field is required",
		}
	}
	lang, err := ParseLanguage(string(r.Language))
	if err != nil {
		return &ErrorResponse{
			Code:    "unsupported_language",
			Message: "Language not supported. Supported languages: " + joinCodes(SupportedLanguagesList()),
		}
	}
	r.Language = lang

	if strings.TrimSpace(string(r.Level)) == "" {
		return &ErrorResponse{
			Code:    "missing_level",
			Message: "Level field is required",
		}
	}
	level, err := ParseLevel(string(r.Level))
	if err != nil {
		return &ErrorResponse{
			Code:    "invalid_level",
			Message: "Level must be one of: " + joinCodes(ValidLevelsList()),
		}
	}
	r.Level = level

	if _, err := uuid.Parse(r.SessionID); err != nil {
		return &ErrorResponse{
			Code:    "invalid_session_id",
			Message: "session_id must be a valid UUID format",
			Details: []ValidationErrorDetail{{Field: "session_id", Reason: err.Error()}},
		}
	}

	return nil
}

// body of POST /api/v1/feedback/{request_id}
type FeedbackRequest struct {
	IsPositive *bool `json:"is_positive"`
}

func (r *FeedbackRequest) Validate() error {
	if r.IsPositive == nil {
		return &ErrorResponse{
			Code:    "missing_is_positive",
			Message: "is_positive field is required",
		}
	}
	return nil
}

// provider-agnostic input for one model call
type GenerationRequest struct {
	RequestID    string
	SystemPrompt string
	UserPrompt   string
}
