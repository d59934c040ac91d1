// Package tutor runs one tutoring turn: render prompts, call the model,
// parse the reply and build the public response.
package tutor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"tutor/ai/internal/llm"
	"tutor/ai/internal/metrics"
	"tutor/ai/internal/models"
	"tutor/ai/internal/parser"
	"tutor/ai/internal/prompts"
	"tutor/ai/internal/utils"
)

// ErrLLM wraps every failure of a chat turn.
var ErrLLM = errors.New("LLM processing failed")

// shown when the model left a section empty
const (
	fallbackAIResponse = "Response received."
	fallbackNextPhrase = "Please continue."
)

// FeedbackRecorder keeps a reply so the learner can rate it later.
type FeedbackRecorder interface {
	StoreRequestContext(ctx context.Context, rc *models.RequestContext) error
}

type Service struct {
	prompts  prompts.PromptProvider
	provider llm.Provider
	feedback FeedbackRecorder
	logger   *zap.Logger
}

type Option func(*Service)

// WithFeedback records every successful reply for rating.
func WithFeedback(recorder FeedbackRecorder) Option {
	return func(s *Service) {
		s.feedback = recorder
	}
}

// NewService falls back to the global logger when logger is nil.
func NewService(promptProvider prompts.PromptProvider, provider llm.Provider, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = utils.GetLogger()
	}
	s := &Service{
		prompts:  promptProvider,
		provider: provider,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) ProviderName() string {
	return s.provider.GetProviderName()
}

// ProcessChat handles one learner message. req must already be validated.
func (s *Service) ProcessChat(ctx context.Context, requestID string, req *models.ChatRequest) (*models.ChatResponse, error) {
	start := time.Now()

	systemPrompt, err := s.prompts.RenderSystemPrompt(req.Language, req.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLLM, err)
	}
	userPrompt, err := s.prompts.RenderTutoringPrompt(req.Message, req.Language, req.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLLM, err)
	}

	generation, err := s.provider.Generate(ctx, &models.GenerationRequest{
		RequestID:    requestID,
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLLM, err)
	}
	metrics.AddTokens(generation.Metadata.Provider, generation.TokensUsed)

	parsed := parser.Parse(generation.Content)
	observeParse(generation.Content, parsed)

	aiResponse := parsed.AIResponse
	if aiResponse == "" {
		aiResponse = fallbackAIResponse
	}
	nextPhrase := parsed.NextPhrase
	if nextPhrase == "" {
		nextPhrase = fallbackNextPhrase
	}

	resp, err := models.NewChatResponse(aiResponse, nextPhrase, parsed.Corrections, req.SessionID, generation.TokensUsed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLLM, err)
	}

	s.logger.Info("Chat turn processed",
		zap.String("request_id", requestID),
		zap.String("session_id", req.SessionID),
		zap.String("language", string(req.Language)),
		zap.String("level", string(req.Level)),
		zap.String("provider", generation.Metadata.Provider),
		zap.String("model", generation.Metadata.Model),
		zap.Int("tokens_used", generation.TokensUsed),
		zap.Bool("structured", parsed.Structured),
		zap.Int("corrections", len(resp.Corrections)),
		zap.Int64("processing_time_ms", time.Since(start).Milliseconds()))
	if !parsed.Structured {
		s.logger.Warn("Model reply did not follow the section layout",
			zap.String("request_id", requestID),
			zap.String("reply", utils.Truncate(generation.Content, 200)))
	}

	s.recordContext(ctx, requestID, req, systemPrompt, userPrompt, generation)

	return resp, nil
}

// StartMessage renders the level-aware greeting for a new conversation.
func (s *Service) StartMessage(language models.Language, level models.Level) (*models.StartMessageResponse, error) {
	message, err := s.prompts.RenderStartMessage(language, level)
	if err != nil {
		return nil, err
	}
	return &models.StartMessageResponse{
		Message:  message,
		Language: language,
		Level:    level,
	}, nil
}

func (s *Service) recordContext(ctx context.Context, requestID string, req *models.ChatRequest, systemPrompt, userPrompt string, generation *models.GenerationResponse) {
	if s.feedback == nil {
		return
	}

	err := s.feedback.StoreRequestContext(ctx, &models.RequestContext{
		RequestID:    requestID,
		Language:     req.Language,
		Level:        req.Level,
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Response:     generation.Content,
		Model:        generation.Metadata.Model,
		Timestamp:    time.Now(),
	})
	if err != nil {
		// the learner still gets the reply, it just cannot be rated
		s.logger.Warn("Failed to store request context", zap.String("request_id", requestID), zap.Error(err))
	}
}

func observeParse(raw string, parsed parser.ParsedResult) {
	switch {
	case strings.TrimSpace(raw) == "":
		metrics.ObserveParse(metrics.OutcomeEmpty)
	case parsed.Structured:
		metrics.ObserveParse(metrics.OutcomeStructured)
	default:
		metrics.ObserveParse(metrics.OutcomeFallback)
	}
	for _, c := range parsed.Corrections {
		metrics.ObserveCorrection(string(c.ErrorType))
	}
}
