package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"tutor/ai/internal/feedback"
	"tutor/ai/internal/middleware"
	"tutor/ai/internal/models"
	"tutor/ai/internal/utils"
)

type FeedbackHandler struct {
	feedbackManager *feedback.FeedbackManager
	logger          *zap.Logger
}

// NewFeedbackHandler accepts a nil manager; every route then answers 503.
func NewFeedbackHandler(feedbackManager *feedback.FeedbackManager, logger *zap.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackManager: feedbackManager,
		logger:          logger,
	}
}

func (fh *FeedbackHandler) available(w http.ResponseWriter) bool {
	if fh.feedbackManager != nil {
		return true
	}
	utils.JSON(w, http.StatusServiceUnavailable, models.ErrorResponse{
		Code:    "feedback_disabled",
		Message: "feedback storage is not configured",
	})
	return false
}

// SubmitFeedback handles POST /api/v1/feedback/{request_id}
func (fh *FeedbackHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	if !fh.available(w) {
		return
	}

	requestID := chi.URLParam(r, "request_id")
	if requestID == "" {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "missing_request_id",
			Message: "request_id is required",
		})
		return
	}

	req := middleware.GetValidatedRequest[*models.FeedbackRequest](r)
	if err := fh.feedbackManager.SubmitFeedback(r.Context(), requestID, *req.IsPositive); err != nil {
		if errors.Is(err, feedback.ErrContextNotFound) {
			utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
				Code:    "context_not_found",
				Message: "reply not found or expired",
			})
			return
		}
		fh.logger.Error("Failed to submit feedback", zap.String("request_id", requestID), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "feedback_error",
			Message: "failed to submit feedback",
		})
		return
	}

	utils.JSON(w, http.StatusOK, models.Resp{
		OK:   true,
		Info: "feedback submitted successfully",
	})
}

// ExportFeedback handles GET /api/v1/feedback/export
// Query params:
// - days: number of days to look back (default: 7)
// - limit: maximum number of records (optional)
// - format: "jsonl" (default) or "json"
func (fh *FeedbackHandler) ExportFeedback(w http.ResponseWriter, r *http.Request) {
	if !fh.available(w) {
		return
	}

	days := positiveInt(r.URL.Query().Get("days"), 7)
	limit := positiveInt(r.URL.Query().Get("limit"), 0)
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "jsonl"
	}
	if format != "jsonl" && format != "json" {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "invalid_format",
			Message: "format must be jsonl or json",
		})
		return
	}

	since := time.Now().AddDate(0, 0, -days)
	records, err := fh.feedbackManager.GetFeedbackSince(since, limit)
	if err != nil {
		fh.logger.Error("Failed to get feedback", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "feedback_error",
			Message: "failed to export feedback",
		})
		return
	}

	examples := feedback.TrainingExamples(records)
	if format == "json" {
		utils.JSON(w, http.StatusOK, models.Resp{OK: true, Info: examples})
		return
	}

	if err := utils.WriteJSONL(w, "feedback_export.jsonl", examples); err != nil {
		fh.logger.Warn("Feedback export interrupted", zap.Error(err))
		return
	}
	fh.logger.Info("Exported feedback",
		zap.Int("records", len(records)),
		zap.Int("examples", len(examples)),
		zap.Int("days", days))
}

// GetFeedbackStats handles GET /api/v1/feedback/stats
func (fh *FeedbackHandler) GetFeedbackStats(w http.ResponseWriter, r *http.Request) {
	if !fh.available(w) {
		return
	}

	stats, err := fh.feedbackManager.GetFeedbackStats(r.Context())
	if err != nil {
		fh.logger.Error("Failed to get feedback stats", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "feedback_error",
			Message: "failed to get feedback stats",
		})
		return
	}

	utils.JSON(w, http.StatusOK, models.Resp{
		OK:   true,
		Info: stats,
	})
}

func positiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		return n
	}
	return fallback
}
