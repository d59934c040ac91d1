package models

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

const validSessionID = "3f2b8c1e-9a4d-4e6b-8f7a-2c1d0e9b8a7f"

func expectErrCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error code %s but got nil", code)
	}
	resp, ok := err.(*ErrorResponse)
	if !ok {
		t.Fatalf("expected ErrorResponse, got %T", err)
	}
	if resp.Code != code {
		t.Fatalf("expected error code %s, got %s", code, resp.Code)
	}
}

func TestErrorResponse_Error(t *testing.T) {
	err := &ErrorResponse{Message: "failed"}
	if err.Error() != "failed" {
		t.Fatalf("expected message to be returned, got %s", err.Error())
	}
}

func TestSupportedLists(t *testing.T) {
	if got := joinCodes(SupportedLanguagesList()); got != "EN, DE, PL, UA" {
		t.Fatalf("unexpected languages list: %s", got)
	}
	if got := joinCodes(ValidLevelsList()); got != "A1, A2, B1, B2, C1, C2" {
		t.Fatalf("unexpected levels: %s", got)
	}
	if got := joinCodes(ErrorTypesList()); got != "GRAMMAR, VOCABULARY, SPELLING, PUNCTUATION" {
		t.Fatalf("unexpected error types: %s", got)
	}
}

func TestClosedSets(t *testing.T) {
	for _, lang := range SupportedLanguagesList() {
		if !lang.IsValid() {
			t.Fatalf("expected %s to be valid", lang)
		}
	}
	for _, bad := range []Language{"", "UK", "en", "FR"} {
		if bad.IsValid() {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
	for _, level := range ValidLevelsList() {
		if !level.IsValid() || level.Band() == "" {
			t.Fatalf("expected %s to be valid with a band", level)
		}
	}
	if Level("D1").IsValid() || Level("D1").Band() != "" {
		t.Fatal("expected D1 to be rejected")
	}
	if ErrorType("STYLE").IsValid() {
		t.Fatal("expected STYLE to be rejected")
	}
}

func TestParseLanguageAndLevel(t *testing.T) {
	lang, err := ParseLanguage(" pl ")
	if err != nil || lang != LanguagePL {
		t.Fatalf("expected PL, got %q (%v)", lang, err)
	}
	if _, err := ParseLanguage("klingon"); err == nil {
		t.Fatal("expected error for unknown language")
	}

	level, err := ParseLevel("b2")
	if err != nil || level != LevelB2 {
		t.Fatalf("expected B2, got %q (%v)", level, err)
	}
	if _, err := ParseLevel("C3"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestLevelBands(t *testing.T) {
	cases := map[Level]string{
		LevelA1: "beginner", LevelA2: "beginner",
		LevelB1: "intermediate", LevelB2: "intermediate",
		LevelC1: "advanced", LevelC2: "advanced",
	}
	for level, band := range cases {
		if got := level.Band(); got != band {
			t.Fatalf("%s: expected band %s, got %s", level, band, got)
		}
	}
}

func TestChatRequestValidate(t *testing.T) {
	t.Run("missing message", func(t *testing.T) {
		req := &ChatRequest{Language: "EN", Level: "B1", SessionID: validSessionID}
		expectErrCode(t, req.Validate(), "missing_message")
	})

	t.Run("missing language", func(t *testing.T) {
		req := &ChatRequest{Message: "hi", Level: "B1", SessionID: validSessionID}
		expectErrCode(t, req.Validate(), "missing_language")
	})

	t.Run("unsupported language", func(t *testing.T) {
		req := &ChatRequest{Message: "hi", Language: "FR", Level: "B1", SessionID: validSessionID}
		expectErrCode(t, req.Validate(), "unsupported_language")
	})

	t.Run("missing level", func(t *testing.T) {
		req := &ChatRequest{Message: "hi", Language: "EN", SessionID: validSessionID}
		expectErrCode(t, req.Validate(), "missing_level")
	})

	t.Run("invalid level", func(t *testing.T) {
		req := &ChatRequest{Message: "hi", Language: "EN", Level: "Z9", SessionID: validSessionID}
		expectErrCode(t, req.Validate(), "invalid_level")
	})

	t.Run("invalid session id", func(t *testing.T) {
		req := &ChatRequest{Message: "hi", Language: "EN", Level: "B1", SessionID: "not-a-uuid"}
		expectErrCode(t, req.Validate(), "invalid_session_id")
	})

	t.Run("valid request normalizes codes", func(t *testing.T) {
		req := &ChatRequest{Message: "I has a cat", Language: " de ", Level: "a2", SessionID: validSessionID}
		if err := req.Validate(); err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if req.Language != LanguageDE || req.Level != LevelA2 {
			t.Fatalf("codes not normalized: %s %s", req.Language, req.Level)
		}
		if req.Message != "I has a cat" {
			t.Fatalf("message must not be altered, got %q", req.Message)
		}
	})
}

func TestFeedbackRequestValidate(t *testing.T) {
	expectErrCode(t, (&FeedbackRequest{}).Validate(), "missing_is_positive")

	yes := true
	if err := (&FeedbackRequest{IsPositive: &yes}).Validate(); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}

func TestCorrectionValidate(t *testing.T) {
	valid := Correction{
		Original:    "I has",
		Corrected:   "I have",
		Explanation: []string{"Grammar", "Subject-verb agreement"},
		ErrorType:   ErrorTypeGrammar,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid correction, got %v", err)
	}

	cases := map[string]func(c *Correction){
		"empty original":    func(c *Correction) { c.Original = "" },
		"empty corrected":   func(c *Correction) { c.Corrected = "" },
		"short explanation": func(c *Correction) { c.Explanation = []string{"only"} },
		"long explanation":  func(c *Correction) { c.Explanation = []string{"a", "b", "c"} },
		"nil explanation":   func(c *Correction) { c.Explanation = nil },
		"unknown type":      func(c *Correction) { c.ErrorType = "STYLE" },
		"lowercase type":    func(c *Correction) { c.ErrorType = "grammar" },
		"empty type":        func(c *Correction) { c.ErrorType = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := valid
			c.Explanation = append([]string(nil), valid.Explanation...)
			mutate(&c)
			err := c.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected validator errors, got %T", err)
			}
		})
	}
}

func TestNewChatResponse(t *testing.T) {
	resp, err := NewChatResponse("Nice!", "And then?", nil, validSessionID, 42)
	if err != nil {
		t.Fatalf("NewChatResponse error: %v", err)
	}
	if resp.Corrections == nil || len(resp.Corrections) != 0 {
		t.Fatalf("expected empty non-nil corrections, got %#v", resp.Corrections)
	}

	if _, err := NewChatResponse("Nice!", "And then?", nil, validSessionID, 0); err == nil {
		t.Fatal("expected error for zero tokens")
	}
	if _, err := NewChatResponse("", "And then?", nil, validSessionID, 1); err == nil {
		t.Fatal("expected error for empty ai_response")
	}
	if _, err := NewChatResponse("Nice!", "", nil, validSessionID, 1); err == nil || !strings.Contains(err.Error(), "NextPhrase") {
		t.Fatalf("expected NextPhrase error, got %v", err)
	}
}

func TestNewValidatorRegistersErrorType(t *testing.T) {
	v := newValidator()
	for _, et := range ErrorTypesList() {
		if err := v.Var(et, "error_type"); err != nil {
			t.Fatalf("expected %s to be accepted, got %v", et, err)
		}
	}
	for _, et := range []ErrorType{"grammar", "UNKNOWN"} {
		if err := v.Var(et, "error_type"); err == nil {
			t.Fatalf("expected %s to be rejected", et)
		}
	}
}
