package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tutor/ai/internal/models"
)

type mockRequest struct {
	Value string `json:"value"`
}

func (m *mockRequest) Validate() error {
	switch m.Value {
	case "error_response":
		return &models.ErrorResponse{Code: "invalid", Message: "invalid"}
	case "generic_error":
		return errors.New("failed")
	default:
		return nil
	}
}

func serve(t *testing.T, body string, next http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	handler := ValidateRequest[*mockRequest]()(next)

	req := httptest.NewRequest(http.MethodPost, "/test", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp.Code
}

func noop(http.ResponseWriter, *http.Request) {}

func TestValidateRequestSuccess(t *testing.T) {
	called := false
	rec := serve(t, `{"value":"ok"}`, func(w http.ResponseWriter, r *http.Request) {
		called = true
		req := GetValidatedRequest[*mockRequest](r)
		if req.Value != "ok" {
			t.Fatalf("expected value ok, got %s", req.Value)
		}
	})

	if !called {
		t.Fatal("expected handler to be called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestValidateRequestDecodeErrors(t *testing.T) {
	cases := map[string]struct {
		body   string
		status int
		code   string
	}{
		"invalid json": {`{`, http.StatusBadRequest, "invalid_json"},
		"empty body":   {``, http.StatusBadRequest, "empty_body"},
		"too large":    {`{"value":"` + strings.Repeat("a", MaxBodyBytes) + `"}`, http.StatusRequestEntityTooLarge, "body_too_large"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := serve(t, tc.body, noop)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			if code := errorCode(t, rec); code != tc.code {
				t.Fatalf("expected code %s, got %s", tc.code, code)
			}
		})
	}
}

func TestValidateRequestValidationErrors(t *testing.T) {
	t.Run("error response", func(t *testing.T) {
		rec := serve(t, `{"value":"error_response"}`, noop)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for validation error, got %d", rec.Code)
		}
		if code := errorCode(t, rec); code != "invalid" {
			t.Fatalf("expected code invalid, got %s", code)
		}
	})

	t.Run("generic error", func(t *testing.T) {
		rec := serve(t, `{"value":"generic_error"}`, noop)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for validation error, got %d", rec.Code)
		}
		if code := errorCode(t, rec); code != "validation_error" {
			t.Fatalf("expected code validation_error, got %s", code)
		}
	})
}

func TestValidateRequestWithChatRequest(t *testing.T) {
	handler := ValidateRequest[*models.ChatRequest]()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := GetValidatedRequest[*models.ChatRequest](r)
		if req.Language != models.LanguagePL || req.Level != models.LevelC1 {
			t.Fatalf("expected normalized codes, got %s/%s", req.Language, req.Level)
		}
	}))

	body := `{"message":"Dzień dobry","language":"pl","level":"c1","session_id":"3f2b8c1e-9a4d-4e6b-8f7a-2c1d0e9b8a7f"}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hi","language":"FR","level":"B1","session_id":"x"}`)))
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "unsupported_language" {
		t.Fatalf("expected unsupported_language, got %d %s", rec.Code, rec.Body.String())
	}
}
