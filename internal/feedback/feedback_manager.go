package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tutor/ai/internal/models"
)

// FeedbackManager handles tutor reply feedback storage and export
type FeedbackManager struct {
	db     *gorm.DB
	store  ContextStore
	logger *zap.Logger
}

// FeedbackStats is returned by GET /api/v1/feedback/stats
type FeedbackStats struct {
	TotalCount      int64 `json:"total_count"`
	PositiveCount   int64 `json:"positive_count"`
	UnexportedCount int64 `json:"unexported_count"`
	CachedContexts  int   `json:"cached_contexts"`
}

// NewFeedbackManager creates a new feedback manager
func NewFeedbackManager(db *gorm.DB, store ContextStore, logger *zap.Logger) *FeedbackManager {
	return &FeedbackManager{
		db:     db,
		store:  store,
		logger: logger,
	}
}

// StoreRequestContext caches request context for later feedback
func (fm *FeedbackManager) StoreRequestContext(ctx context.Context, rc *models.RequestContext) error {
	if err := fm.store.Set(ctx, rc); err != nil {
		return err
	}
	fm.logger.Debug("Stored request context",
		zap.String("request_id", rc.RequestID),
		zap.String("language", string(rc.Language)),
		zap.String("level", string(rc.Level)))
	return nil
}

// SubmitFeedback stores user feedback for a request
func (fm *FeedbackManager) SubmitFeedback(ctx context.Context, requestID string, isPositive bool) error {
	rc, err := fm.store.Get(ctx, requestID)
	if err != nil {
		if errors.Is(err, ErrContextNotFound) {
			return fmt.Errorf("%w: %s", ErrContextNotFound, requestID)
		}
		return err
	}

	feedback := &models.TutorFeedback{
		RequestID:    requestID,
		Language:     string(rc.Language),
		Level:        string(rc.Level),
		SystemPrompt: rc.SystemPrompt,
		UserPrompt:   rc.UserPrompt,
		Response:     rc.Response,
		IsPositive:   isPositive,
		ModelName:    rc.Model,
		FeedbackAt:   time.Now(),
		Exported:     false,
	}

	if err := fm.db.WithContext(ctx).Create(feedback).Error; err != nil {
		return fmt.Errorf("failed to store feedback: %w", err)
	}

	// Remove from cache after successful storage
	if err := fm.store.Delete(ctx, requestID); err != nil {
		fm.logger.Warn("Failed to drop rated request context", zap.String("request_id", requestID), zap.Error(err))
	}

	fm.logger.Info("Stored feedback",
		zap.String("request_id", requestID),
		zap.Bool("is_positive", isPositive),
		zap.String("language", feedback.Language))

	return nil
}

// GetUnexportedFeedback retrieves feedback that hasn't been exported yet
func (fm *FeedbackManager) GetUnexportedFeedback(limit int) ([]models.TutorFeedback, error) {
	var feedback []models.TutorFeedback

	query := fm.db.Where("exported = ?", false).Order("feedback_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&feedback).Error; err != nil {
		return nil, fmt.Errorf("failed to get unexported feedback: %w", err)
	}

	return feedback, nil
}

// GetFeedbackSince retrieves feedback since a specific time
func (fm *FeedbackManager) GetFeedbackSince(since time.Time, limit int) ([]models.TutorFeedback, error) {
	var feedback []models.TutorFeedback

	query := fm.db.Where("feedback_at >= ?", since).Order("feedback_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&feedback).Error; err != nil {
		return nil, fmt.Errorf("failed to get feedback since %v: %w", since, err)
	}

	return feedback, nil
}

// MarkAsExported marks feedback records as exported
func (fm *FeedbackManager) MarkAsExported(feedbackIDs []uint) error {
	if len(feedbackIDs) == 0 {
		return nil
	}

	now := time.Now()
	result := fm.db.Model(&models.TutorFeedback{}).
		Where("id IN ?", feedbackIDs).
		Updates(map[string]interface{}{
			"exported":    true,
			"exported_at": now,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark feedback as exported: %w", result.Error)
	}

	fm.logger.Info("Marked feedback records as exported", zap.Int64("count", result.RowsAffected))
	return nil
}

// TrainingExamples turns positive feedback into chat-format training examples.
// Negative feedback is never used for training.
func TrainingExamples(feedback []models.TutorFeedback) []models.TrainingExample {
	examples := make([]models.TrainingExample, 0, len(feedback))
	for _, fb := range feedback {
		if !fb.IsPositive {
			continue
		}
		examples = append(examples, models.TrainingExample{
			Messages: []models.TrainingMessage{
				{Role: "system", Content: fb.SystemPrompt},
				{Role: "user", Content: fb.UserPrompt},
				{Role: "assistant", Content: fb.Response},
			},
		})
	}
	return examples
}

// ExportToJSONL exports positive feedback as one training example per line
func (fm *FeedbackManager) ExportToJSONL(feedback []models.TutorFeedback) ([]byte, error) {
	examples := TrainingExamples(feedback)

	var jsonlData []byte
	for i, example := range examples {
		line, err := json.Marshal(example)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal training data: %w", err)
		}
		jsonlData = append(jsonlData, line...)
		if i < len(examples)-1 {
			jsonlData = append(jsonlData, '\n')
		}
	}

	fm.logger.Info("Exported positive feedback to JSONL",
		zap.Int("examples", len(examples)),
		zap.Int("total_records", len(feedback)))

	return jsonlData, nil
}

// GetFeedbackStats returns statistics about stored feedback
func (fm *FeedbackManager) GetFeedbackStats(ctx context.Context) (*FeedbackStats, error) {
	stats := &FeedbackStats{}
	db := fm.db.WithContext(ctx).Model(&models.TutorFeedback{})

	if err := db.Session(&gorm.Session{}).Count(&stats.TotalCount).Error; err != nil {
		return nil, err
	}
	if err := db.Session(&gorm.Session{}).Where("is_positive = ?", true).Count(&stats.PositiveCount).Error; err != nil {
		return nil, err
	}
	if err := db.Session(&gorm.Session{}).Where("exported = ?", false).Count(&stats.UnexportedCount).Error; err != nil {
		return nil, err
	}

	cached, err := fm.store.Size(ctx)
	if err != nil {
		return nil, err
	}
	stats.CachedContexts = cached

	return stats, nil
}

// Ping checks the database connection.
func (fm *FeedbackManager) Ping(ctx context.Context) error {
	sqlDB, err := fm.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
