// Package parser turns a tutor model's free-text reply into a ParsedResult.
//
// The model is asked (see internal/prompts) to answer in three headed
// sections:
//
//	## 1. NEXT_PHRASE
//	## 2. AI_RESPONSE
//	## 3. CORRECTIONS
//
// Parse never fails. Replies that do not carry all three markers are
// returned as plain feedback text, malformed correction data yields an empty
// correction list, and individual invalid corrections are dropped.
package parser

import (
	"errors"
	"strings"

	"tutor/ai/internal/models"
)

var errMissingMarkers = errors.New("reply does not contain every section marker")

// ParsedResult is the structured form of one model reply.
type ParsedResult struct {
	AIResponse  string              `json:"ai_response"`
	NextPhrase  string              `json:"next_phrase"`
	Corrections []models.Correction `json:"corrections"`

	// Structured reports whether the canonical section layout was recognised.
	Structured bool `json:"-"`
}

// Parse extracts next phrase, feedback and corrections from raw. It is safe
// for concurrent use and never panics.
func Parse(raw string) (result ParsedResult) {
	if strings.TrimSpace(raw) == "" {
		return ParsedResult{Corrections: []models.Correction{}}
	}

	defer func() {
		if r := recover(); r != nil {
			result = fallback(raw)
		}
	}()

	parsed, err := parseStructured(raw)
	if err != nil {
		return fallback(raw)
	}
	return parsed
}

// fallback treats the whole reply as feedback text.
func fallback(raw string) ParsedResult {
	return ParsedResult{
		AIResponse:  strings.TrimSpace(raw),
		NextPhrase:  "",
		Corrections: []models.Correction{},
	}
}

func parseStructured(raw string) (ParsedResult, error) {
	sections := locateSections(raw)
	if !sections.complete() {
		return ParsedResult{}, errMissingMarkers
	}

	corrections, err := extractCorrections(sections)
	if err != nil {
		corrections = []models.Correction{}
	}

	return ParsedResult{
		AIResponse:  extractAIResponse(sections),
		NextPhrase:  extractNextPhrase(sections),
		Corrections: corrections,
		Structured:  true,
	}, nil
}

func extractNextPhrase(s sectionSet) string {
	content, ok := s.content(sectionNextPhrase)
	if !ok {
		return ""
	}
	return unquote(strings.TrimSpace(content))
}

func extractAIResponse(s sectionSet) string {
	if content, ok := s.content(sectionAIResponse); ok {
		return strings.TrimSpace(content)
	}

	// unreachable once the marker gate passed
	trimmed := strings.TrimSpace(s.text)
	for _, line := range strings.Split(trimmed, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return trimmed
}

// quote pairs seen in replies for the supported target languages
var quotePairs = []struct{ open, close string }{
	{`"`, `"`},
	{"'", "'"},
	{"“", "”"},
	{"„", "“"},
	{"„", "”"},
	{"«", "»"},
}

// unquote removes one layer of matching surrounding quotes.
func unquote(s string) string {
	for _, q := range quotePairs {
		if len(s) >= len(q.open)+len(q.close) && strings.HasPrefix(s, q.open) && strings.HasSuffix(s, q.close) {
			return strings.TrimSpace(s[len(q.open) : len(s)-len(q.close)])
		}
	}
	return s
}
