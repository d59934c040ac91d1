package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tutor/ai/internal/config"
	"tutor/ai/internal/llm"
	"tutor/ai/internal/models"
)

func newStubClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return newClient(&Config{
		APIKey:      "sk-test",
		Model:       "gpt-test",
		BaseURL:     server.URL + "/v1",
		MaxTokens:   100,
		Temperature: 0.5,
	}, server.Client())
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"message": message, "type": "error"},
	})
}

func TestClientGenerateSuccess(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing bearer token")
		}

		var body struct {
			Model     string `json:"model"`
			MaxTokens int    `json:"max_tokens"`
			Messages  []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body.Model != "gpt-test" || body.MaxTokens != 100 {
			t.Errorf("unexpected request settings: %+v", body)
		}
		if len(body.Messages) != 2 || body.Messages[0].Role != "system" || body.Messages[1].Content != "I has a cat" {
			t.Errorf("unexpected messages: %+v", body.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":    "chatcmpl-1",
			"model": "gpt-test-2024",
			"choices": []map[string]any{
				{"index": 0, "message": map[string]any{"role": "assistant", "content": "Nice!"}, "finish_reason": "stop"},
			},
			"usage": map[string]any{"prompt_tokens": 20, "completion_tokens": 5, "total_tokens": 25},
		})
	}

	client := newStubClient(t, handler)

	resp, err := client.Generate(context.Background(), &models.GenerationRequest{
		SystemPrompt: "You are a tutor",
		UserPrompt:   "I has a cat",
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if resp.Content != "Nice!" || resp.TokensUsed != 25 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Metadata.Model != "gpt-test-2024" || resp.Metadata.Provider != "openai" {
		t.Fatalf("unexpected metadata: %+v", resp.Metadata)
	}
}

func TestClientGenerateErrors(t *testing.T) {
	cases := map[string]struct {
		status int
		code   string
	}{
		"unauthorized": {http.StatusUnauthorized, llm.ErrCodeAPIKey},
		"rate limited": {http.StatusTooManyRequests, llm.ErrCodeRateLimit},
		"bad request":  {http.StatusBadRequest, llm.ErrCodeInvalidInput},
		"server error": {http.StatusInternalServerError, llm.ErrCodeServiceDown},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeError(w, tc.status, name)
			})

			_, err := client.Generate(context.Background(), &models.GenerationRequest{UserPrompt: "hi"})
			var provErr *llm.ProviderError
			if !errors.As(err, &provErr) || provErr.Code != tc.code {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}
}

func TestClientGenerateEmptyChoices(t *testing.T) {
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	})

	_, err := client.Generate(context.Background(), &models.GenerationRequest{UserPrompt: "hi"})
	var provErr *llm.ProviderError
	if !errors.As(err, &provErr) || provErr.Code != llm.ErrCodeEmptyOutput {
		t.Fatalf("expected empty output error, got %v", err)
	}
}

func TestClientGenerateBlankContentPassesThrough(t *testing.T) {
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": "   \n"}}},
			"usage":   map[string]any{"total_tokens": 6},
		})
	})

	resp, err := client.Generate(context.Background(), &models.GenerationRequest{UserPrompt: "hi"})
	if err != nil {
		t.Fatalf("expected blank reply to pass through, got %v", err)
	}
	if resp.Content != "   \n" || resp.TokensUsed != 6 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestNewConfig(t *testing.T) {
	if _, err := NewConfig(&config.Config{}); err == nil {
		t.Fatal("expected error when API key missing")
	}
	if _, err := NewConfig(&config.Config{OpenAI: config.OpenAIConfig{APIKey: "pk-1"}}); err == nil {
		t.Fatal("expected error for malformed key")
	}

	cfg, err := NewConfig(&config.Config{OpenAI: config.OpenAIConfig{APIKey: "sk-1", Temperature: 0.7}})
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if cfg.Model != "gpt-4o-mini" || cfg.MaxTokens != 500 || cfg.Temperature != float32(0.7) {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestProviderRegistered(t *testing.T) {
	provider, err := llm.NewProvider(config.ProviderOpenAI, &config.Config{
		OpenAI: config.OpenAIConfig{APIKey: "sk-key", Model: "gpt-4o-mini", MaxTokens: 500},
	})
	if err != nil {
		t.Fatalf("NewProvider returned error: %v", err)
	}
	if provider.GetProviderName() != "openai" {
		t.Fatalf("unexpected provider %s", provider.GetProviderName())
	}
}
