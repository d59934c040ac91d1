package models

import (
	"fmt"
	"strings"
)

// target language of a tutoring session
type Language string

const (
	LanguageEN Language = "EN"
	LanguageDE Language = "DE"
	LanguagePL Language = "PL"
	LanguageUA Language = "UA"
)

// CEFR proficiency level
type Level string

const (
	LevelA1 Level = "A1"
	LevelA2 Level = "A2"
	LevelB1 Level = "B1"
	LevelB2 Level = "B2"
	LevelC1 Level = "C1"
	LevelC2 Level = "C2"
)

// category of a single correction
type ErrorType string

const (
	ErrorTypeGrammar     ErrorType = "GRAMMAR"
	ErrorTypeVocabulary  ErrorType = "VOCABULARY"
	ErrorTypeSpelling    ErrorType = "SPELLING"
	ErrorTypePunctuation ErrorType = "PUNCTUATION"
)

func (l Language) IsValid() bool {
	switch l {
	case LanguageEN, LanguageDE, LanguagePL, LanguageUA:
		return true
	}
	return false
}

func (l Level) IsValid() bool {
	switch l {
	case LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2:
		return true
	}
	return false
}

func (e ErrorType) IsValid() bool {
	switch e {
	case ErrorTypeGrammar, ErrorTypeVocabulary, ErrorTypeSpelling, ErrorTypePunctuation:
		return true
	}
	return false
}

// Band groups CEFR levels the way the prompt templates vary their wording.
func (l Level) Band() string {
	switch l {
	case LevelA1, LevelA2:
		return "beginner"
	case LevelB1, LevelB2:
		return "intermediate"
	case LevelC1, LevelC2:
		return "advanced"
	}
	return ""
}

func ParseLanguage(value string) (Language, error) {
	lang := Language(strings.ToUpper(strings.TrimSpace(value)))
	if !lang.IsValid() {
		return "", fmt.Errorf("unsupported language %q", value)
	}
	return lang, nil
}

func ParseLevel(value string) (Level, error) {
	level := Level(strings.ToUpper(strings.TrimSpace(value)))
	if !level.IsValid() {
		return "", fmt.Errorf("unsupported level %q", value)
	}
	return level, nil
}

func SupportedLanguagesList() []Language {
	return []Language{LanguageEN, LanguageDE, LanguagePL, LanguageUA}
}

func ValidLevelsList() []Level {
	return []Level{LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2}
}

func ErrorTypesList() []ErrorType {
	return []ErrorType{ErrorTypeGrammar, ErrorTypeVocabulary, ErrorTypeSpelling, ErrorTypePunctuation}
}

func joinCodes[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
