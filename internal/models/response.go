package models

import "fmt"

// public contract of POST /api/v1/chat
type ChatResponse struct {
	AIResponse  string       `json:"ai_response" validate:"required"`
	NextPhrase  string       `json:"next_phrase" validate:"required"`
	Corrections []Correction `json:"corrections"`
	SessionID   string       `json:"session_id" validate:"required"`
	TokensUsed  int          `json:"tokens_used" validate:"gt=0"`
}

// NewChatResponse builds a validated response; corrections are never nil.
func NewChatResponse(aiResponse, nextPhrase string, corrections []Correction, sessionID string, tokensUsed int) (*ChatResponse, error) {
	if corrections == nil {
		corrections = []Correction{}
	}
	resp := &ChatResponse{
		AIResponse:  aiResponse,
		NextPhrase:  nextPhrase,
		Corrections: corrections,
		SessionID:   sessionID,
		TokensUsed:  tokensUsed,
	}
	if err := validate.Struct(resp); err != nil {
		return nil, fmt.Errorf("invalid chat response: %w", err)
	}
	return resp, nil
}

// raw model output plus usage accounting
type GenerationResponse struct {
	Content    string             `json:"content"`
	TokensUsed int                `json:"tokens_used"`
	Metadata   GenerationMetadata `json:"metadata"`
}

type GenerationMetadata struct {
	ProcessingTime int    `json:"processing_time_ms"`
	Provider       string `json:"provider"`
	Model          string `json:"model"`
}

type StartMessageResponse struct {
	Message  string   `json:"message"`
	Language Language `json:"language"`
	Level    Level    `json:"level"`
}

// generic envelope used by the feedback endpoints
type Resp struct {
	OK   bool        `json:"ok"`
	Info interface{} `json:"info"`
}

// uniform error responses
type ErrorResponse struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Details []ValidationErrorDetail `json:"details,omitempty"`
}

func (e *ErrorResponse) Error() string {
	return e.Message
}

// single field validation error
type ValidationErrorDetail struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}
