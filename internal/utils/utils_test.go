package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	if got := Truncate("  short  ", 10); got != "short" {
		t.Fatalf("Truncate: expected short, got %q", got)
	}

	if got := Truncate("Привіт, світе", 6); got != "Привіт..." {
		t.Fatalf("Truncate: expected rune-safe cut, got %q", got)
	}

	if got := Truncate("unchanged", 0); got != "unchanged" {
		t.Fatalf("Truncate with no limit: got %q", got)
	}
}

func TestNewLogger(t *testing.T) {
	for _, env := range []string{"dev", "prod", "ci"} {
		logger, err := NewLogger(env, "debug")
		if err != nil {
			t.Fatalf("NewLogger(%s) error: %v", env, err)
		}
		if !logger.Core().Enabled(-1) {
			t.Fatalf("NewLogger(%s): debug level not enabled", env)
		}
	}

	if _, err := NewLogger("dev", "loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestGetLogger(t *testing.T) {
	SetLogger(nil)
	if GetLogger() == nil {
		t.Fatal("GetLogger: expected lazily initialised logger")
	}
}

func TestJSONHelpers(t *testing.T) {
	rec := httptest.NewRecorder()
	payload := map[string]string{"hello": "world"}

	JSON(rec, http.StatusCreated, payload)

	if rec.Code != http.StatusCreated {
		t.Fatalf("JSON: expected status %d, got %d", http.StatusCreated, rec.Code)
	}
	if contentType := rec.Header().Get("Content-Type"); contentType != "application/json" {
		t.Fatalf("JSON: expected content-type application/json, got %s", contentType)
	}

	var got map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("JSON decode failed: %v", err)
	}
	if got["hello"] != "world" {
		t.Fatalf("JSON body mismatch: %+v", got)
	}
}

func TestWriteJSONL(t *testing.T) {
	rec := httptest.NewRecorder()
	items := []map[string]int{{"n": 1}, {"n": 2}}

	if err := WriteJSONL(rec, "export.jsonl", items); err != nil {
		t.Fatalf("WriteJSONL error: %v", err)
	}

	if rec.Header().Get("Content-Type") != "application/x-ndjson" {
		t.Fatalf("unexpected content type %s", rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "export.jsonl") {
		t.Fatalf("missing filename header")
	}
	if rec.Body.String() != "{\"n\":1}\n{\"n\":2}\n" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}
