package models

import (
	"time"

	"gorm.io/gorm"
)

// TutorFeedback stores a learner's rating of one tutor reply.
// Note: session ids are intentionally excluded, a rating is not conversation state
type TutorFeedback struct {
	gorm.Model
	RequestID    string     `gorm:"uniqueIndex;not null" json:"request_id"`
	Language     string     `gorm:"not null" json:"language"`
	Level        string     `gorm:"not null" json:"level"`
	SystemPrompt string     `gorm:"type:text;not null" json:"system_prompt"`
	UserPrompt   string     `gorm:"type:text;not null" json:"user_prompt"`
	Response     string     `gorm:"type:text;not null" json:"response"`
	IsPositive   bool       `gorm:"not null" json:"is_positive"` // true = thumbs up, false = thumbs down
	ModelName    string     `gorm:"not null" json:"model"`
	FeedbackAt   time.Time  `gorm:"not null" json:"feedback_at"`
	Exported     bool       `gorm:"not null;default:false;index" json:"exported"`
	ExportedAt   *time.Time `json:"exported_at"`
}

func (TutorFeedback) TableName() string {
	return "tutor_feedback"
}

// TrainingExample is one JSONL line in chat fine-tuning format
type TrainingExample struct {
	Messages []TrainingMessage `json:"messages"`
}

type TrainingMessage struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// RequestContext keeps a reply around until the learner rates it.
// Stored in the context cache with a TTL, not in the database
type RequestContext struct {
	RequestID    string    `json:"request_id"`
	Language     Language  `json:"language"`
	Level        Level     `json:"level"`
	SystemPrompt string    `json:"system_prompt"`
	UserPrompt   string    `json:"user_prompt"`
	Response     string    `json:"response"`
	Model        string    `json:"model"`
	Timestamp    time.Time `json:"timestamp"`
}
