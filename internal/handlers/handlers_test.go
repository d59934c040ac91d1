package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"tutor/ai/internal/feedback"
	"tutor/ai/internal/models"
	"tutor/ai/internal/prompts"
)

type mockProvider struct {
	generateFn        func(ctx context.Context, req *models.GenerationRequest) (*models.GenerationResponse, error)
	getProviderNameFn func() string
}

func (m *mockProvider) Generate(ctx context.Context, req *models.GenerationRequest) (*models.GenerationResponse, error) {
	if m.generateFn == nil {
		return &models.GenerationResponse{Content: "Hello", TokensUsed: 1}, nil
	}
	return m.generateFn(ctx, req)
}

func (m *mockProvider) GetProviderName() string {
	if m.getProviderNameFn == nil {
		return "mock"
	}
	return m.getProviderNameFn()
}

type mockPromptManager struct {
	templateNames []string
	err           error
}

func (m *mockPromptManager) RenderSystemPrompt(models.Language, models.Level) (string, error) {
	return "system", m.err
}

func (m *mockPromptManager) RenderTutoringPrompt(string, models.Language, models.Level) (string, error) {
	return "tutoring", m.err
}

func (m *mockPromptManager) RenderStartMessage(models.Language, models.Level) (string, error) {
	return "start", m.err
}

func (m *mockPromptManager) TemplateNames() []string {
	return m.templateNames
}

type mockPinger struct {
	err error
}

func (m mockPinger) Ping(context.Context) error {
	return m.err
}

func newPromptManager(t *testing.T) *prompts.PromptManager {
	t.Helper()
	pm, err := prompts.NewPromptManager()
	if err != nil {
		t.Fatalf("failed to load prompts: %v", err)
	}
	return pm
}

func newSQLiteFeedbackManager(t *testing.T) *feedback.FeedbackManager {
	t.Helper()
	dsn := fmt.Sprintf("file:%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := feedback.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	cache := feedback.NewContextCache(time.Minute)
	t.Cleanup(cache.Close)
	return feedback.NewFeedbackManager(db, cache, zap.NewNop())
}

func performRequest(handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}
