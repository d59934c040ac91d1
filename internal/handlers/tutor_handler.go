package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tutor/ai/internal/llm"
	"tutor/ai/internal/middleware"
	"tutor/ai/internal/models"
	"tutor/ai/internal/prompts"
	"tutor/ai/internal/utils"
)

// RequestIDHeader carries the id that later keys reply feedback.
const RequestIDHeader = "X-Request-ID"

type TutorService interface {
	ProcessChat(ctx context.Context, requestID string, req *models.ChatRequest) (*models.ChatResponse, error)
	StartMessage(language models.Language, level models.Level) (*models.StartMessageResponse, error)
}

type TutorHandler struct {
	service   TutorService
	languages []models.Language
	logger    *zap.Logger
}

func NewTutorHandler(service TutorService, languages []models.Language, logger *zap.Logger) *TutorHandler {
	return &TutorHandler{
		service:   service,
		languages: languages,
		logger:    logger,
	}
}

func generateRequestID() string {
	return uuid.New().String()
}

// ChatHandler handles POST /api/v1/chat
func (h *TutorHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.ChatRequest](r)
	requestID := generateRequestID()
	w.Header().Set(RequestIDHeader, requestID)

	resp, err := h.service.ProcessChat(r.Context(), requestID, req)
	if err != nil {
		h.writeChatError(w, requestID, err)
		return
	}

	utils.JSON(w, http.StatusOK, resp)
}

func (h *TutorHandler) writeChatError(w http.ResponseWriter, requestID string, err error) {
	code := ""
	var providerErr *llm.ProviderError
	if errors.As(err, &providerErr) {
		code = providerErr.Code
	}
	h.logger.Error("Chat turn failed",
		zap.String("request_id", requestID),
		zap.String("error_code", code),
		zap.Error(err))

	switch {
	case errors.Is(err, prompts.ErrTemplateNotFound):
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "prompt_error",
			Message: "Failed to build AI prompt",
		})
	case code == llm.ErrCodeRateLimit:
		utils.JSON(w, http.StatusTooManyRequests, models.ErrorResponse{
			Code:    "rate_limited",
			Message: "AI provider rate limit reached, try again later",
		})
	default:
		utils.JSON(w, http.StatusBadGateway, models.ErrorResponse{
			Code:    "ai_error",
			Message: "Failed to generate tutor reply",
		})
	}
}

// StartHandler handles GET /api/v1/start?language=&level=
func (h *TutorHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	rawLanguage, rawLevel := query.Get("language"), query.Get("level")
	if rawLanguage == "" {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "missing_language",
			Message: "language query parameter is required",
		})
		return
	}
	if rawLevel == "" {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "missing_level",
			Message: "level query parameter is required",
		})
		return
	}

	language, err := models.ParseLanguage(rawLanguage)
	if err != nil || !h.supports(language) {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "unsupported_language",
			Message: "Language not supported",
		})
		return
	}
	level, err := models.ParseLevel(rawLevel)
	if err != nil {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "invalid_level",
			Message: err.Error(),
		})
		return
	}

	resp, err := h.service.StartMessage(language, level)
	if err != nil {
		h.logger.Error("Failed to render start message",
			zap.String("language", string(language)),
			zap.String("level", string(level)),
			zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "prompt_error",
			Message: "Failed to build start message",
		})
		return
	}

	utils.JSON(w, http.StatusOK, resp)
}

// LanguagesHandler handles GET /api/v1/languages
func (h *TutorHandler) LanguagesHandler(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string][]models.Language{
		"languages": h.languages,
	})
}

func (h *TutorHandler) supports(language models.Language) bool {
	if len(h.languages) == 0 {
		return true
	}
	for _, l := range h.languages {
		if l == language {
			return true
		}
	}
	return false
}
