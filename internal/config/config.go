package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	"tutor/ai/internal/models"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// app config, loaded from the environment and an optional .env file
type Config struct {
	Environment    string        `mapstructure:"environment" validate:"oneof=dev prod ci"`
	Port           int           `mapstructure:"port" validate:"gt=0,lt=65536"`
	LogLevel       string        `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	Provider       string        `mapstructure:"ai_provider" validate:"oneof=openai gemini"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
	DatabaseURL    string        `mapstructure:"database_url"`
	RedisURL       string        `mapstructure:"redis_url"`

	OpenAI   OpenAIConfig   `mapstructure:",squash"`
	Gemini   GeminiConfig   `mapstructure:",squash"`
	Feedback FeedbackConfig `mapstructure:",squash"`

	// list values accept a JSON array or a comma separated string
	CORSOrigins        []string          `mapstructure:"-" validate:"min=1,dive,startswith=http://|startswith=https://"`
	SupportedLanguages []models.Language `mapstructure:"-" validate:"min=1"`
}

type OpenAIConfig struct {
	APIKey      string  `mapstructure:"openai_api_key"`
	Model       string  `mapstructure:"openai_model" validate:"required"`
	BaseURL     string  `mapstructure:"openai_base_url" validate:"omitempty,url"`
	MaxTokens   int     `mapstructure:"openai_max_tokens" validate:"gt=0"`
	Temperature float64 `mapstructure:"openai_temperature" validate:"gte=0,lte=2"`
}

type GeminiConfig struct {
	APIKey  string `mapstructure:"gemini_api_key"`
	Model   string `mapstructure:"gemini_model" validate:"required"`
	BaseURL string `mapstructure:"gemini_base_url" validate:"omitempty,url"`
}

type FeedbackConfig struct {
	CacheTTL       time.Duration `mapstructure:"feedback_cache_ttl" validate:"gt=0"`
	ExportEnabled  bool          `mapstructure:"feedback_export_enabled"`
	ExportSchedule string        `mapstructure:"feedback_export_schedule"`
	ExportDir      string        `mapstructure:"feedback_export_dir" validate:"required"`
}

var defaults = map[string]any{
	"environment":              "dev",
	"port":                     8080,
	"log_level":                "info",
	"ai_provider":              ProviderOpenAI,
	"request_timeout":          "60s",
	"database_url":             "",
	"redis_url":                "",
	"cors_origins":             "http://localhost:8080",
	"supported_languages":      "EN,UA,PL,DE",
	"openai_api_key":           "",
	"openai_model":             "gpt-4o-mini",
	"openai_base_url":          "",
	"openai_max_tokens":        500,
	"openai_temperature":       0.7,
	"gemini_api_key":           "",
	"gemini_model":             "gemini-2.5-flash",
	"gemini_base_url":          "",
	"feedback_cache_ttl":       "15m",
	"feedback_export_enabled":  false,
	"feedback_export_schedule": "0 2 * * *",
	"feedback_export_dir":      "./exports",
}

// loads configuration from environment variables and ./.env
func LoadConfig() (*Config, error) {
	return LoadConfigFile(".env")
}

// LoadConfigFile reads envFile (if it exists) underneath the environment;
// environment variables take precedence.
func LoadConfigFile(envFile string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("error binding environment variable %s: %w", strings.ToUpper(key), err)
		}
	}

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			v.SetConfigFile(envFile)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))

	origins, err := parseList(v.GetString("cors_origins"))
	if err != nil {
		return nil, fmt.Errorf("invalid CORS_ORIGINS: %w", err)
	}
	cfg.CORSOrigins = origins

	languages, err := parseLanguages(v.GetString("supported_languages"))
	if err != nil {
		return nil, fmt.Errorf("invalid SUPPORTED_LANGUAGES: %w", err)
	}
	cfg.SupportedLanguages = languages

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validateConfig(config *Config) error {
	if err := validator.New().Struct(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	switch config.Provider {
	case ProviderOpenAI:
		if config.OpenAI.APIKey == "" {
			return errors.New("OPENAI_API_KEY is required when AI_PROVIDER=openai")
		}
		if !strings.HasPrefix(config.OpenAI.APIKey, "sk-") {
			return errors.New("OPENAI_API_KEY must start with 'sk-'")
		}
	case ProviderGemini:
		if config.Gemini.APIKey == "" {
			return errors.New("GEMINI_API_KEY is required when AI_PROVIDER=gemini")
		}
	}

	if config.Feedback.ExportEnabled {
		if _, err := cron.ParseStandard(config.Feedback.ExportSchedule); err != nil {
			return fmt.Errorf("invalid FEEDBACK_EXPORT_SCHEDULE %q: %w", config.Feedback.ExportSchedule, err)
		}
	}
	return nil
}

// FeedbackEnabled reports whether a database is configured for reply feedback.
func (c *Config) FeedbackEnabled() bool {
	return c.DatabaseURL != ""
}

// ModelName is the model of the active provider.
func (c *Config) ModelName() string {
	if c.Provider == ProviderGemini {
		return c.Gemini.Model
	}
	return c.OpenAI.Model
}

// parseList accepts `["a","b"]` or `a, b`.
func parseList(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	if strings.HasPrefix(raw, "[") {
		var items []string
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return nil, err
		}
		return trimAll(items), nil
	}
	return trimAll(strings.Split(raw, ",")), nil
}

func trimAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseLanguages(raw string) ([]models.Language, error) {
	codes, err := parseList(raw)
	if err != nil {
		return nil, err
	}

	languages := make([]models.Language, 0, len(codes))
	seen := make(map[models.Language]bool, len(codes))
	for _, code := range codes {
		lang, err := models.ParseLanguage(code)
		if err != nil {
			return nil, err
		}
		if !seen[lang] {
			seen[lang] = true
			languages = append(languages, lang)
		}
	}
	return languages, nil
}
