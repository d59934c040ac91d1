package jobs

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"tutor/ai/internal/feedback"
	"tutor/ai/internal/models"
)

// FeedbackExporterJob periodically writes rated replies to JSONL training files
type FeedbackExporterJob struct {
	feedbackManager *feedback.FeedbackManager
	config          *ExporterConfig
	cron            *cron.Cron
	logger          *zap.Logger
	now             func() time.Time
}

// ExporterConfig contains configuration for the exporter job
type ExporterConfig struct {
	Schedule      string // Cron schedule (e.g., "0 2 * * *" for 2 AM daily)
	ExportDir     string // Directory to store exported files
	ExportEnabled bool   // Whether to run exports
}

// NewFeedbackExporterJob creates a new exporter job
func NewFeedbackExporterJob(feedbackManager *feedback.FeedbackManager, config *ExporterConfig, logger *zap.Logger) *FeedbackExporterJob {
	return &FeedbackExporterJob{
		feedbackManager: feedbackManager,
		config:          config,
		cron:            cron.New(),
		logger:          logger,
		now:             time.Now,
	}
}

// Start begins the scheduled export job
func (fej *FeedbackExporterJob) Start() error {
	if !fej.config.ExportEnabled {
		fej.logger.Info("Feedback export is disabled, skipping scheduler")
		return nil
	}

	_, err := fej.cron.AddFunc(fej.config.Schedule, func() {
		if _, err := fej.RunExport(); err != nil {
			fej.logger.Error("Export job failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule export job: %w", err)
	}

	fej.cron.Start()
	fej.logger.Info("Feedback exporter started", zap.String("schedule", fej.config.Schedule))

	return nil
}

// Stop stops the scheduled export job and waits for a running export
func (fej *FeedbackExporterJob) Stop() {
	if fej.cron != nil {
		<-fej.cron.Stop().Done()
		fej.logger.Info("Feedback exporter stopped")
	}
}

// RunExport performs a single export run and returns the written file, or ""
// when there was nothing positive to export.
func (fej *FeedbackExporterJob) RunExport() (string, error) {
	records, err := fej.feedbackManager.GetUnexportedFeedback(0) // no limit
	if err != nil {
		return "", fmt.Errorf("failed to get unexported feedback: %w", err)
	}

	if len(records) == 0 {
		fej.logger.Info("No unexported feedback found")
		return "", nil
	}

	positiveCount := len(feedback.TrainingExamples(records))
	if positiveCount == 0 {
		// negative ratings are never exported, but must not be picked up again
		fej.logger.Info("No positive feedback to export, skipping file creation", zap.Int("records", len(records)))
		return "", fej.feedbackManager.MarkAsExported(feedbackIDs(records))
	}

	jsonlData, err := fej.feedbackManager.ExportToJSONL(records)
	if err != nil {
		return "", fmt.Errorf("failed to export to JSONL: %w", err)
	}

	if err := os.MkdirAll(fej.config.ExportDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	filename := fmt.Sprintf("feedback_export_%s.jsonl", fej.now().Format("20060102_150405"))
	path := filepath.Join(fej.config.ExportDir, filename)

	if err := os.WriteFile(path, append(jsonlData, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	if err := fej.feedbackManager.MarkAsExported(feedbackIDs(records)); err != nil {
		return "", fmt.Errorf("failed to mark as exported: %w", err)
	}

	fej.logger.Info("Exported positive feedback",
		zap.Int("samples", positiveCount),
		zap.Int("records", len(records)),
		zap.String("file", path))

	return path, nil
}

func feedbackIDs(records []models.TutorFeedback) []uint {
	ids := make([]uint, len(records))
	for i, fb := range records {
		ids[i] = fb.ID
	}
	return ids
}
